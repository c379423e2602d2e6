// internal/domain/reference.go
package domain

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewReference returns the caller-supplied reference when present,
// otherwise synthesizes a kind-prefixed ULID. The ULID carries a
// millisecond timestamp plus 80 random bits behind a locked entropy
// source, so concurrent generation is collision-free for any realistic
// request rate.
func NewReference(kind TransactionKind, external string) string {
	if ref := strings.TrimSpace(external); ref != "" {
		return ref
	}

	prefix := "DEP"
	if kind == KindB2C {
		prefix = "WDL"
	}

	return prefix + "-" + ulid.Make().String()
}

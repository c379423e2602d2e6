package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBounds() AmountBounds {
	return AmountBounds{
		Min: decimal.NewFromInt(1),
		Max: decimal.NewFromInt(150000),
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "json number", raw: `100`, want: "100"},
		{name: "json string", raw: `"100"`, want: "100"},
		{name: "decimal places", raw: `99.99`, want: "99.99"},
		{name: "minimum", raw: `1`, want: "1"},
		{name: "maximum", raw: `150000`, want: "150000"},
		{name: "below minimum", raw: `0.5`, wantErr: true},
		{name: "above maximum", raw: `150001`, wantErr: true},
		{name: "zero", raw: `0`, wantErr: true},
		{name: "negative", raw: `-10`, wantErr: true},
		{name: "negative string", raw: `"-10"`, wantErr: true},
		{name: "not a number", raw: `"abc"`, wantErr: true},
		{name: "empty string", raw: `""`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "missing", raw: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(json.RawMessage(tt.raw), testBounds())
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestParseAmountReturnsValueUnchanged(t *testing.T) {
	// String-vs-number drift was a recurring integration defect; the
	// parsed value must be numerically identical to the input.
	got, err := ParseAmount(json.RawMessage(`"1234.56"`), testBounds())
	require.NoError(t, err)
	assert.Equal(t, "1234.56", got.String())
}

func TestCheckAmountNoUpperBound(t *testing.T) {
	bounds := AmountBounds{Min: decimal.NewFromInt(1)}
	got, err := CheckAmount(decimal.NewFromInt(10_000_000), bounds)
	require.NoError(t, err)
	assert.Equal(t, "10000000", got.String())
}

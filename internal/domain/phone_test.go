package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "local format with leading zero", input: "0712345678", want: "254712345678"},
		{name: "local format 01 prefix", input: "0112299271", want: "254112299271"},
		{name: "already canonical", input: "254712345678", want: "254712345678"},
		{name: "international with plus", input: "+254712345678", want: "254712345678"},
		{name: "surrounding whitespace", input: "  0712345678  ", want: "254712345678"},
		{name: "internal spaces", input: "0712 345 678", want: "254712345678"},
		{name: "bare nine digits mobile", input: "712345678", want: "254712345678"},
		{name: "bare nine digits 1 prefix", input: "112299271", want: "254112299271"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "too short", input: "07123", wantErr: true},
		{name: "too long", input: "2547123456789", wantErr: true},
		{name: "wrong country code", input: "255712345678", wantErr: true},
		{name: "bare nine digits wrong prefix", input: "912345678", wantErr: true},
		{name: "bare eight digits", input: "71234567", wantErr: true},
		{name: "letters", input: "07one234567", wantErr: true},
		{name: "non-digit after normalization", input: "25471234567a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 12)
		})
	}
}

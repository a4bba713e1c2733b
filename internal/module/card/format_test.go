package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain digits", "4111111111111111", "4111 1111 1111 1111"},
		{"already formatted is idempotent", "4111 1111 1111 1111", "4111 1111 1111 1111"},
		{"partial entry", "41111", "4111 1"},
		{"dashes stripped", "4111-1111-1111-1111", "4111 1111 1111 1111"},
		{"truncated to 19 digits", "41111111111111111119999", "4111 1111 1111 1111 111"},
		{"amex grouping", "371449635398431", "3714 4963 5398 431"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.raw))
		})
	}
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"single digit passes through", "0", "0"},
		{"two digits no separator yet", "09", "09"},
		{"three digits", "092", "09 / 2"},
		{"four digits", "0927", "09 / 27"},
		{"already formatted is idempotent", "09 / 27", "09 / 27"},
		{"truncated past four digits", "092789", "09 / 27"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExpiry(tt.raw))
		})
	}
}

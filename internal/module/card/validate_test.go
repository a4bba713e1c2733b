package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectBrand(t *testing.T) {
	tests := []struct {
		name   string
		digits string
		want   Brand
	}{
		{"visa", "4111111111111111", BrandVisa},
		{"visa 13 digits", "4222222222222", BrandVisa},
		{"mastercard 5x", "5500005555555559", BrandMastercard},
		{"mastercard 2-series", "2221000000000009", BrandMastercard},
		{"amex 34", "340000000000009", BrandAmex},
		{"amex 37", "371449635398431", BrandAmex},
		{"diners 30", "30569309025904", BrandDiners},
		{"diners 36", "36227206271667", BrandDiners},
		{"jcb", "3530111333300000", BrandJCB},
		{"unknown", "6011000990139424", BrandUnknown},
		{"empty", "", BrandUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectBrand(tt.digits))
		})
	}
}

func TestDetectBrandOrderIndependentOfValidity(t *testing.T) {
	// Detection only looks at leading digits, not length or checksum.
	assert.Equal(t, BrandVisa, DetectBrand("4"))
	assert.Equal(t, BrandAmex, DetectBrand("37"))
	assert.Equal(t, BrandJCB, DetectBrand("35"))
}

func TestValidateNumber(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantBrand Brand
		wantErr   error
	}{
		{"valid visa", "4111 1111 1111 1111", BrandVisa, nil},
		{"valid visa unformatted", "4111111111111111", BrandVisa, nil},
		{"valid amex", "371449635398431", BrandAmex, nil},
		{"valid mastercard", "5555555555554444", BrandMastercard, nil},
		{"valid diners", "30569309025904", BrandDiners, nil},
		{"valid jcb", "3530111333300000", BrandJCB, nil},
		{"luhn failure", "4111 1111 1111 1112", BrandVisa, ErrLuhnCheckFailed},
		{"empty", "", BrandUnknown, ErrEmptyInput},
		{"separators only", " - ", BrandUnknown, ErrEmptyInput},
		{"too short", "411111111111", BrandVisa, ErrTooShort},
		{"too long", "41111111111111111111", BrandVisa, ErrTooLong},
		{"unknown brand", "6011000990139424", BrandUnknown, ErrUnknownBrand},
		{"wrong length for mastercard", "55555555555544440", BrandMastercard, ErrWrongLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brand, err := ValidateNumber(tt.raw)
			assert.Equal(t, tt.wantBrand, brand)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLuhn(t *testing.T) {
	assert.True(t, luhn("4111111111111111"))
	assert.True(t, luhn("371449635398431"))
	assert.False(t, luhn("4111111111111112"))
	// Flipping any single digit breaks the checksum.
	assert.False(t, luhn("4121111111111111"))
}

func TestValidateExpiryAt(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		month   int
		year    int
		wantErr error
	}{
		{"future year", 1, 27, nil},
		{"current month is still valid", 6, 25, nil},
		{"later month same year", 12, 25, nil},
		{"previous month same year", 5, 25, ErrExpired},
		{"past year", 1, 20, ErrExpired},
		{"month zero", 0, 27, ErrInvalidMonth},
		{"month thirteen", 13, 27, ErrInvalidMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpiryAt(tt.month, tt.year, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseExpiry(t *testing.T) {
	month, year, err := ParseExpiry("09 / 27")
	require.NoError(t, err)
	assert.Equal(t, 9, month)
	assert.Equal(t, 27, year)

	month, year, err = ParseExpiry("1230")
	require.NoError(t, err)
	assert.Equal(t, 12, month)
	assert.Equal(t, 30, year)

	_, _, err = ParseExpiry("9")
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, _, err = ParseExpiry("13 / 27")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestValidateCVC(t *testing.T) {
	tests := []struct {
		name    string
		cvc     string
		brand   Brand
		wantErr error
	}{
		{"visa three digits", "123", BrandVisa, nil},
		{"visa four digits", "1234", BrandVisa, ErrWrongCVCLength},
		{"amex four digits", "1234", BrandAmex, nil},
		{"amex three digits", "123", BrandAmex, ErrWrongCVCLength},
		{"unknown brand three", "123", BrandUnknown, nil},
		{"unknown brand four", "1234", BrandUnknown, nil},
		{"unknown brand five", "12345", BrandUnknown, ErrWrongCVCLength},
		{"empty", "", BrandVisa, ErrWrongCVCLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCVC(tt.cvc, tt.brand)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

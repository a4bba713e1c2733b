package card

import (
	"strings"
	"time"
)

const (
	minNumberLength = 13
	maxNumberLength = 19
)

// Digits strips every non-digit rune from user input.
func Digits(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateNumber checks a raw card number: strips separators, bounds the
// length, detects the brand, checks the brand's length rule and the Luhn
// checksum. Returns the detected brand alongside any failure so the form
// can still show the brand icon while the number is incomplete.
func ValidateNumber(raw string) (Brand, error) {
	digits := Digits(raw)
	if digits == "" {
		return BrandUnknown, ErrEmptyInput
	}
	if len(digits) < minNumberLength {
		return DetectBrand(digits), ErrTooShort
	}
	if len(digits) > maxNumberLength {
		return DetectBrand(digits), ErrTooLong
	}

	brand := DetectBrand(digits)
	if brand == BrandUnknown {
		return BrandUnknown, ErrUnknownBrand
	}

	if !containsInt(brand.ValidLengths(), len(digits)) {
		return brand, ErrWrongLength
	}

	if !luhn(digits) {
		return brand, ErrLuhnCheckFailed
	}

	return brand, nil
}

// luhn reports whether digits pass the mod-10 checksum: doubling every
// second digit from the right, subtracting 9 from products above 9.
func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateExpiry checks a month (1-12) and two-digit year against the
// current time. Comparison is month-granular: a card expiring this month
// is still valid.
func ValidateExpiry(month, year int) error {
	return ValidateExpiryAt(month, year, time.Now())
}

// ValidateExpiryAt is ValidateExpiry evaluated at a given instant.
// The two-digit year is interpreted as 2000+year.
func ValidateExpiryAt(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}

	expYear := 2000 + year
	nowYear, nowMonth := now.Year(), int(now.Month())

	if expYear < nowYear || (expYear == nowYear && month < nowMonth) {
		return ErrExpired
	}
	return nil
}

// ParseExpiry extracts (month, two-digit year) from user input such as
// "09 / 27" or "0927". Anything without four digits and a month in range
// fails with ErrInvalidMonth.
func ParseExpiry(raw string) (month, year int, err error) {
	digits := Digits(raw)
	if len(digits) != 4 {
		return 0, 0, ErrInvalidMonth
	}
	month = int(digits[0]-'0')*10 + int(digits[1]-'0')
	year = int(digits[2]-'0')*10 + int(digits[3]-'0')
	if month < 1 || month > 12 {
		return 0, 0, ErrInvalidMonth
	}
	return month, year, nil
}

// ValidateCVC checks the security code length against the brand's rule.
// Unknown brands accept 3 or 4 digits.
func ValidateCVC(raw string, brand Brand) error {
	digits := Digits(raw)
	if !containsInt(brand.CVCLengths(), len(digits)) {
		return ErrWrongCVCLength
	}
	return nil
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

package card

import "strings"

// FormatNumber regroups a card number into blocks of four digits
// separated by single spaces, truncated to 19 digits. Formatting an
// already formatted number is a no-op.
func FormatNumber(raw string) string {
	digits := Digits(raw)
	if len(digits) > maxNumberLength {
		digits = digits[:maxNumberLength]
	}

	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// FormatExpiry renders expiry input as "MM / YY" while the user types,
// truncated to four digits. Fewer than two digits pass through as-is.
func FormatExpiry(raw string) string {
	digits := Digits(raw)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) < 2 {
		return digits
	}
	if len(digits) == 2 {
		return digits
	}
	return digits[:2] + " / " + digits[2:]
}

package card

import "errors"

// Validation failure kinds. Callers distinguish them with errors.Is; the
// HTTP handler maps each to a stable error code for the checkout form.
var (
	ErrEmptyInput      = errors.New("card number is empty")
	ErrTooShort        = errors.New("card number is too short")
	ErrTooLong         = errors.New("card number is too long")
	ErrUnknownBrand    = errors.New("card brand not recognized")
	ErrWrongLength     = errors.New("card number length invalid for brand")
	ErrLuhnCheckFailed = errors.New("card number failed checksum")
	ErrInvalidMonth    = errors.New("expiry month must be between 1 and 12")
	ErrExpired         = errors.New("card is expired")
	ErrWrongCVCLength  = errors.New("security code length invalid for brand")
)

// ErrorCode returns the stable API code for a validation error, or
// "INVALID" for anything unrecognized.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "EMPTY_INPUT"
	case errors.Is(err, ErrTooShort):
		return "TOO_SHORT"
	case errors.Is(err, ErrTooLong):
		return "TOO_LONG"
	case errors.Is(err, ErrUnknownBrand):
		return "UNKNOWN_BRAND"
	case errors.Is(err, ErrWrongLength):
		return "WRONG_LENGTH"
	case errors.Is(err, ErrLuhnCheckFailed):
		return "LUHN_CHECK_FAILED"
	case errors.Is(err, ErrInvalidMonth):
		return "INVALID_MONTH"
	case errors.Is(err, ErrExpired):
		return "EXPIRED"
	case errors.Is(err, ErrWrongCVCLength):
		return "WRONG_CVC_LENGTH"
	default:
		return "INVALID"
	}
}

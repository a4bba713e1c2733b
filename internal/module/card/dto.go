package card

// ValidateRequest is the checkout form's card validation payload.
type ValidateRequest struct {
	Number string `json:"number" binding:"required"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// FieldResult is a per-field validation outcome.
type FieldResult struct {
	Valid bool   `json:"valid"`
	Code  string `json:"code,omitempty"`
}

// ValidateResponse reports per-field results plus display formatting.
type ValidateResponse struct {
	Brand           string      `json:"brand,omitempty"`
	Number          FieldResult `json:"number"`
	Expiry          FieldResult `json:"expiry"`
	CVC             FieldResult `json:"cvc"`
	FormattedNumber string      `json:"formatted_number"`
	FormattedExpiry string      `json:"formatted_expiry"`
}

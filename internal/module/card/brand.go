// Package card classifies and validates payment card input from the
// checkout form: brand detection by leading digits, Luhn checksum,
// expiry and CVC checks, and as-you-type display formatting.
package card

import "regexp"

// Brand identifies a payment card network.
type Brand string

const (
	BrandVisa       Brand = "visa"
	BrandMastercard Brand = "mastercard"
	BrandAmex       Brand = "amex"
	BrandDiners     Brand = "diners"
	BrandJCB        Brand = "jcb"
	// BrandUnknown means no pattern matched the number.
	BrandUnknown Brand = ""
)

// descriptor is an immutable brand rule. Patterns are anchored at the
// start of the digit string and evaluated in order, first match wins.
type descriptor struct {
	brand        Brand
	pattern      *regexp.Regexp
	validLengths []int
	cvcLengths   []int
}

// brands is the ordered catalog of recognized card networks.
var brands = []descriptor{
	{
		brand:        BrandVisa,
		pattern:      regexp.MustCompile(`^4`),
		validLengths: []int{13, 16, 19},
		cvcLengths:   []int{3},
	},
	{
		brand:        BrandMastercard,
		pattern:      regexp.MustCompile(`^(5[1-5]|2[2-7])`),
		validLengths: []int{16},
		cvcLengths:   []int{3},
	},
	{
		brand:        BrandAmex,
		pattern:      regexp.MustCompile(`^3[47]`),
		validLengths: []int{15},
		cvcLengths:   []int{4},
	},
	{
		brand:        BrandDiners,
		pattern:      regexp.MustCompile(`^3[068]`),
		validLengths: []int{14},
		cvcLengths:   []int{3},
	},
	{
		brand:        BrandJCB,
		pattern:      regexp.MustCompile(`^35`),
		validLengths: []int{16},
		cvcLengths:   []int{3},
	},
}

// DetectBrand returns the brand whose pattern first matches the digit
// string, or BrandUnknown. Detection is independent of length and
// checksum validity.
func DetectBrand(digits string) Brand {
	for _, d := range brands {
		if d.pattern.MatchString(digits) {
			return d.brand
		}
	}
	return BrandUnknown
}

// lookup returns the descriptor for a brand, or nil for BrandUnknown.
func lookup(b Brand) *descriptor {
	for i := range brands {
		if brands[i].brand == b {
			return &brands[i]
		}
	}
	return nil
}

// ValidLengths returns the acceptable digit counts for a brand.
func (b Brand) ValidLengths() []int {
	if d := lookup(b); d != nil {
		return d.validLengths
	}
	return nil
}

// CVCLengths returns the acceptable CVC digit counts for a brand.
// Unknown brands accept 3 or 4 digits.
func (b Brand) CVCLengths() []int {
	if d := lookup(b); d != nil {
		return d.cvcLengths
	}
	return []int{3, 4}
}

package pricing

// PricePerCounty is the flat fee charged per targeted county, in cents.
const PricePerCounty int64 = 500

// Sales tax is a fixed 6.25%, applied with round-half-up cent rounding.
// Expressed as a ratio of integers so the math stays in exact cents.
const (
	taxRateNumerator   int64 = 625
	taxRateDenominator int64 = 10000
)

// Pricing is the cost breakdown for one ad submission, in cents.
type Pricing struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Calculate computes the cost of targeting countyCount counties.
// countyCount must be >= 1; the caller validates before invoking.
func Calculate(countyCount int) Pricing {
	subtotal := int64(countyCount) * PricePerCounty
	tax := (subtotal*taxRateNumerator + taxRateDenominator/2) / taxRateDenominator
	return Pricing{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

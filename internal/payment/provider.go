package payment

import "strings"

// Provider identifies a payment gateway configured in the commerce backend.
type Provider string

const (
	// ProviderStripe is the card-network gateway used for foreign-currency orders.
	ProviderStripe Provider = "stripe"
	// ProviderRazorpay is the regional gateway used for domestic orders.
	ProviderRazorpay Provider = "razorpay"
)

var labels = map[Provider]string{
	ProviderStripe:   "Stripe",
	ProviderRazorpay: "Razorpay",
}

// Resolve maps a commerce payment provider identifier such as
// "pp_stripe_stripe" onto a known gateway. Unknown and empty identifiers
// resolve to the regional gateway.
func Resolve(providerID string) Provider {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if strings.HasPrefix(id, "pp_stripe") || id == string(ProviderStripe) {
		return ProviderStripe
	}
	return ProviderRazorpay
}

// Label returns the display label of the gateway behind providerID.
func Label(providerID string) string {
	return labels[Resolve(providerID)]
}

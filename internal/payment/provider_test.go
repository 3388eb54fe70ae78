package payment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/payment"
)

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"pp_stripe_stripe":     "Stripe",
		"PP_STRIPE_STRIPE":     "Stripe",
		"stripe":               "Stripe",
		"pp_razorpay_razorpay": "Razorpay",
		"pp_system_default":    "Razorpay",
		"":                     "Razorpay",
	}
	for id, want := range cases {
		require.Equal(t, want, payment.Label(id), "provider=%q", id)
	}
}

package order

import (
	"strings"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/money"
	"github.com/noah-isme/toko-storefront/internal/payment"
)

// Summary is the list representation of an order. Amounts are major units.
type Summary struct {
	ID                string `json:"id"`
	Number            string `json:"number"`
	Stage             Stage  `json:"stage"`
	PaymentStatus     string `json:"paymentStatus"`
	FulfillmentStatus string `json:"fulfillmentStatus"`
	Currency          string `json:"currency"`
	Total             int64  `json:"total"`
	TotalDisplay      string `json:"totalDisplay"`
	ItemCount         int64  `json:"itemCount"`
	Email             string `json:"email,omitempty"`
	CreatedAt         string `json:"createdAt"`
	PlacedOn          string `json:"placedOn"`
}

// Item is one line of an order detail.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Quantity  int64  `json:"qty"`
	UnitPrice int64  `json:"unitPrice"`
	Total     int64  `json:"total"`
}

// Detail is the full representation of an order.
type Detail struct {
	Summary
	Subtotal        int64             `json:"subtotal"`
	Shipping        int64             `json:"shipping"`
	Tax             int64             `json:"tax"`
	Items           []Item            `json:"items"`
	ShippingAddress *commerce.Address `json:"shippingAddress,omitempty"`
	PaymentMethod   string            `json:"paymentMethod"`
	InvoicePath     string            `json:"invoicePath"`
}

// Summarize converts an order into its list representation.
func Summarize(o commerce.Order) Summary {
	currency := strings.ToUpper(o.CurrencyCode)
	total := money.ToMajorUnits(o.Total)
	return Summary{
		ID:                o.ID,
		Number:            o.Number(),
		Stage:             ResolveStage(o.Status, o.PaymentStatus, o.FulfillmentStatus),
		PaymentStatus:     PaymentLabel(o.PaymentStatus),
		FulfillmentStatus: FulfillmentLabel(o.FulfillmentStatus),
		Currency:          currency,
		Total:             total,
		TotalDisplay:      money.Format(currency, total),
		ItemCount:         o.ItemCount(),
		Email:             o.ContactEmail(),
		CreatedAt:         money.FormatDateTime(o.CreatedAt),
		PlacedOn:          money.FormatDate(o.CreatedAt),
	}
}

// Describe converts an order into its detail representation. invoicePrefix
// is the route prefix under which the invoice download is served.
func Describe(o commerce.Order, invoicePrefix string) Detail {
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, Item{
			ID:        it.ID,
			Title:     it.Title,
			Thumbnail: it.Thumbnail,
			Quantity:  it.Quantity,
			UnitPrice: money.ToMajorUnits(it.UnitPrice),
			Total:     money.ToMajorUnits(it.Total),
		})
	}
	provider := ""
	if len(o.Payments) > 0 {
		provider = o.Payments[0].ProviderID
	}
	return Detail{
		Summary:         Summarize(o),
		Subtotal:        money.ToMajorUnits(o.Subtotal),
		Shipping:        money.ToMajorUnits(o.ShippingTotal),
		Tax:             money.ToMajorUnits(o.TaxTotal),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   payment.Label(provider),
		InvoicePath:     strings.TrimRight(invoicePrefix, "/") + "/" + o.ID + "/invoice",
	}
}

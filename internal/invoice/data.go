package invoice

import "time"

// Item is one invoice line. Amounts are in major currency units.
type Item struct {
	Name     string
	Quantity int64
	Price    int64
	Total    int64
}

// Data is the flat, render-ready view of one order. It is built per download
// and never stored. Amounts are whole major currency units.
type Data struct {
	InvoiceNumber   string
	OrderNumber     string
	OrderDate       string
	IssuedAt        time.Time
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	Items           []Item

	Subtotal         int64
	ShippingFee      int64
	CODFee           int64
	CouponDiscount   int64
	GiftCardDiscount int64
	PrepaidDiscount  int64
	TaxableAmount    int64
	CGST             int64
	SGST             int64
	IGST             int64
	TotalTax         int64
	GrandTotal       int64

	Currency      string
	PaymentMethod string
	// GST is set for orders billed in the domestic currency.
	GST bool
}

// Options carries the seller's home market.
type Options struct {
	DomesticCurrency string
	DomesticCountry  string
}

// DerivedTotal recomputes the grand total from the summary fields.
func (d Data) DerivedTotal() int64 {
	return d.TaxableAmount + d.TotalTax - (d.CouponDiscount + d.GiftCardDiscount + d.PrepaidDiscount) + d.CODFee
}

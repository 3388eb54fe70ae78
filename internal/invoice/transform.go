package invoice

import (
	"strings"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/money"
	"github.com/noah-isme/toko-storefront/internal/payment"
)

const (
	fallbackCustomer = "Customer"
	fallbackAddress  = "Address not provided"
	fallbackItem     = "Product"
)

// FromOrder maps a validated order onto invoice data. It performs no I/O and
// never fails; missing optional fields degrade to placeholder text.
//
// Totals are taken from the order independently rather than re-derived, so
// GrandTotal can disagree with DerivedTotal. See Reconcile.
func FromOrder(o commerce.Order, opts Options) Data {
	opts = opts.withDefaults()
	number := o.Number()

	data := Data{
		InvoiceNumber:   "INV-" + number,
		OrderNumber:     number,
		OrderDate:       money.FormatDate(o.CreatedAt),
		IssuedAt:        o.CreatedAt,
		CustomerName:    customerName(o.ShippingAddress),
		CustomerEmail:   o.ContactEmail(),
		ShippingAddress: formatAddress(o.ShippingAddress),
		Items:           make([]Item, 0, len(o.Items)),

		Subtotal:    money.ToMajorUnits(o.Subtotal),
		ShippingFee: money.ToMajorUnits(o.ShippingTotal),
		TotalTax:    money.ToMajorUnits(o.TaxTotal),
		GrandTotal:  money.ToMajorUnits(o.Total),

		Currency:      strings.ToUpper(o.CurrencyCode),
		PaymentMethod: payment.Label(firstProvider(o.Payments)),
	}
	if o.ShippingAddress != nil {
		data.CustomerPhone = o.ShippingAddress.Phone
	}
	data.TaxableAmount = data.Subtotal + data.ShippingFee

	for _, it := range o.Items {
		data.Items = append(data.Items, Item{
			Name:     itemName(it),
			Quantity: it.Quantity,
			Price:    money.ToMajorUnits(it.UnitPrice),
			Total:    money.ToMajorUnits(it.Total),
		})
	}

	if strings.EqualFold(o.CurrencyCode, opts.DomesticCurrency) {
		data.GST = true
		if shipsDomestic(o.ShippingAddress, opts.DomesticCountry) {
			split := money.SplitDomesticTax(data.TotalTax, true)
			data.CGST, data.SGST = split.CGST, split.SGST
		} else {
			data.IGST = data.TotalTax
		}
	}
	return data
}

// Drift describes a mismatch between the order's own total and the total
// implied by the invoice summary fields.
type Drift struct {
	OrderTotal   int64
	DerivedTotal int64
}

// Delta is derived minus order total.
func (d Drift) Delta() int64 { return d.DerivedTotal - d.OrderTotal }

// Reconcile compares the independently populated grand total against the
// summary identity. It reports drift and leaves data untouched.
func Reconcile(data Data) (Drift, bool) {
	drift := Drift{OrderTotal: data.GrandTotal, DerivedTotal: data.DerivedTotal()}
	return drift, drift.Delta() != 0
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.DomesticCurrency) == "" {
		o.DomesticCurrency = money.DomesticCurrency
	}
	if strings.TrimSpace(o.DomesticCountry) == "" {
		o.DomesticCountry = money.DomesticCountry
	}
	return o
}

// shipsDomestic treats a missing address or country as domestic.
func shipsDomestic(addr *commerce.Address, country string) bool {
	if addr == nil || strings.TrimSpace(addr.CountryCode) == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(addr.CountryCode), country)
}

func customerName(addr *commerce.Address) string {
	if addr == nil {
		return fallbackCustomer
	}
	name := strings.TrimSpace(addr.FirstName + " " + addr.LastName)
	if name == "" {
		return fallbackCustomer
	}
	return name
}

func formatAddress(addr *commerce.Address) string {
	if addr == nil {
		return fallbackAddress
	}
	var b strings.Builder
	b.WriteString(addr.Address1)
	if addr.Address2 != "" {
		b.WriteString(", ")
		b.WriteString(addr.Address2)
	}
	b.WriteString(", ")
	b.WriteString(addr.City)
	b.WriteString(", ")
	b.WriteString(addr.Province)
	b.WriteString(" - ")
	b.WriteString(addr.PostalCode)
	return b.String()
}

func itemName(it commerce.LineItem) string {
	switch {
	case strings.TrimSpace(it.Title) != "":
		return it.Title
	case strings.TrimSpace(it.Description) != "":
		return it.Description
	default:
		return fallbackItem
	}
}

func firstProvider(payments []commerce.Payment) string {
	if len(payments) == 0 {
		return ""
	}
	return payments[0].ProviderID
}

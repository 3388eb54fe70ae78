package commerce

import "time"

// Order is the commerce backend's "retrieve order" document. Amounts are in
// minor currency units. Pointer fields are optional in the upstream payload.
type Order struct {
	ID                string     `json:"id" validate:"required"`
	DisplayID         *int64     `json:"display_id,omitempty"`
	Status            string     `json:"status,omitempty"`
	PaymentStatus     string     `json:"payment_status,omitempty"`
	FulfillmentStatus string     `json:"fulfillment_status,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CurrencyCode      string     `json:"currency_code" validate:"required,len=3"`
	Email             string     `json:"email,omitempty"`
	Customer          *Customer  `json:"customer,omitempty"`
	Subtotal          int64      `json:"subtotal"`
	ShippingTotal     int64      `json:"shipping_total"`
	TaxTotal          int64      `json:"tax_total"`
	Total             int64      `json:"total"`
	Items             []LineItem `json:"items" validate:"dive"`
	ShippingAddress   *Address   `json:"shipping_address,omitempty"`
	Payments          []Payment  `json:"payments,omitempty"`
}

// LineItem is a single order line.
type LineItem struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Quantity    int64  `json:"quantity" validate:"gte=0"`
	UnitPrice   int64  `json:"unit_price"`
	Total       int64  `json:"total"`
}

// Address is a postal address attached to an order.
type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Customer is the account that placed the order.
type Customer struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Payment records the provider that handled an order payment.
type Payment struct {
	ID         string `json:"id,omitempty"`
	ProviderID string `json:"provider_id,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
}

// OrderList is a page of orders.
type OrderList struct {
	Orders []Order `json:"orders"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// Number returns the human-facing order number: the display id when present,
// otherwise the backend identifier.
func (o Order) Number() string {
	if o.DisplayID != nil {
		return formatInt(*o.DisplayID)
	}
	return o.ID
}

// ContactEmail returns the order email, falling back to the customer's.
func (o Order) ContactEmail() string {
	if o.Email != "" {
		return o.Email
	}
	if o.Customer != nil {
		return o.Customer.Email
	}
	return ""
}

// ItemCount sums the quantities of all line items.
func (o Order) ItemCount() int64 {
	var n int64
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

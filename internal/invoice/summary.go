package invoice

import "strings"

// RowKind distinguishes amount rows from separator rules.
type RowKind int

const (
	RowAmount RowKind = iota
	RowRule
)

// Row is one line of the invoice summary block.
type Row struct {
	Kind     RowKind
	Label    string
	Amount   int64
	Negative bool
	Bold     bool
}

// Display returns the signed amount shown on the document.
func (r Row) Display() int64 {
	if r.Negative {
		return -r.Amount
	}
	return r.Amount
}

type rowSpec struct {
	label    string
	value    func(Data) int64
	visible  func(Data) bool
	negative bool
	bold     bool
	rule     bool
}

func always(Data) bool { return true }

func positive(value func(Data) int64) func(Data) bool {
	return func(d Data) bool { return value(d) > 0 }
}

var (
	subtotal   = func(d Data) int64 { return d.Subtotal }
	shipping   = func(d Data) int64 { return d.ShippingFee }
	codFee     = func(d Data) int64 { return d.CODFee }
	coupon     = func(d Data) int64 { return d.CouponDiscount }
	giftCard   = func(d Data) int64 { return d.GiftCardDiscount }
	prepaid    = func(d Data) int64 { return d.PrepaidDiscount }
	cgst       = func(d Data) int64 { return d.CGST }
	sgst       = func(d Data) int64 { return d.SGST }
	igst       = func(d Data) int64 { return d.IGST }
	totalTax   = func(d Data) int64 { return d.TotalTax }
	grandTotal = func(d Data) int64 { return d.GrandTotal }
)

func splitGST(d Data) bool { return d.CGST > 0 && d.SGST > 0 }

func integratedGST(d Data) bool { return !splitGST(d) && d.IGST > 0 }

// plainTax covers foreign-currency orders, which carry no GST breakdown.
func plainTax(d Data) bool { return !d.GST }

var summaryLayout = []rowSpec{
	{label: "Subtotal:", value: subtotal, visible: always},
	{label: "Shipping:", value: shipping, visible: positive(shipping)},
	{label: "COD Fee:", value: codFee, visible: positive(codFee)},
	{label: "Coupon Discount:", value: coupon, visible: positive(coupon), negative: true},
	{label: "Gift Card:", value: giftCard, visible: positive(giftCard), negative: true},
	{label: "Prepaid Discount:", value: prepaid, visible: positive(prepaid), negative: true},
	{rule: true, visible: always},
	{label: "CGST (9%):", value: cgst, visible: splitGST},
	{label: "SGST (9%):", value: sgst, visible: splitGST},
	{label: "IGST (18%):", value: igst, visible: integratedGST},
	{label: "Tax:", value: totalTax, visible: plainTax},
	{rule: true, visible: always},
	{label: "Total Amount:", value: grandTotal, visible: always, bold: true},
}

// SummaryRows returns the summary block rows for data in display order.
// Rows whose predicate fails are omitted rather than shown as zero.
func SummaryRows(data Data) []Row {
	rows := make([]Row, 0, len(summaryLayout))
	for _, entry := range summaryLayout {
		if !entry.visible(data) {
			continue
		}
		if entry.rule {
			rows = append(rows, Row{Kind: RowRule})
			continue
		}
		rows = append(rows, Row{
			Kind:     RowAmount,
			Label:    entry.label,
			Amount:   entry.value(data),
			Negative: entry.negative,
			Bold:     entry.bold,
		})
	}
	return rows
}

// Labels lists the labels of the amount rows, mostly for assertions and logs.
func Labels(rows []Row) []string {
	labels := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Kind == RowAmount {
			labels = append(labels, strings.TrimSuffix(r.Label, ":"))
		}
	}
	return labels
}

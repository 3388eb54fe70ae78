package money

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DomesticCurrency is the seller's home currency code.
	DomesticCurrency = "INR"
	// DomesticCountry is the seller's home two-letter country code.
	DomesticCountry = "in"
)

var half = decimal.New(5, -1)

// TaxSplit holds the GST components of a tax amount in major units.
type TaxSplit struct {
	CGST int64
	SGST int64
	IGST int64
}

// ToMajorUnits converts a minor-unit amount (paise, cents) into whole major
// units. Halves round up toward positive infinity.
func ToMajorUnits(minor int64) int64 {
	return roundHalfUp(decimal.New(minor, -2))
}

// SplitDomesticTax splits a tax total evenly into CGST and SGST for a domestic
// shipment. Both halves are rounded independently, so an odd total may not be
// reproduced exactly by their sum. Non-domestic shipments carry no GST split.
func SplitDomesticTax(totalTaxMajor int64, domestic bool) TaxSplit {
	if !domestic {
		return TaxSplit{}
	}
	halfTax := roundHalfUp(decimal.NewFromInt(totalTaxMajor).Div(decimal.NewFromInt(2)))
	return TaxSplit{CGST: halfTax, SGST: halfTax}
}

// IsDomesticCurrency reports whether the currency code is the home currency.
func IsDomesticCurrency(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), DomesticCurrency)
}

// Symbol returns the display prefix for a currency code. The standard PDF
// fonts have no rupee glyph so the domestic currency uses "Rs.".
func Symbol(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "INR":
		return "Rs. "
	case "USD":
		return "$"
	case "EUR":
		return "EUR "
	case "GBP":
		return "GBP "
	case "":
		return ""
	default:
		return strings.ToUpper(strings.TrimSpace(code)) + " "
	}
}

// Format renders a major-unit amount with the currency symbol, thousands
// separators and a fixed two-decimal mask, e.g. "Rs. 1,180.00".
func Format(code string, amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + Symbol(code) + group(decimal.NewFromInt(amount).StringFixed(2))
}

// FormatMinor formats a minor-unit amount after converting it to major units.
func FormatMinor(code string, minor int64) string {
	return Format(code, ToMajorUnits(minor))
}

// FormatDate renders a calendar date for invoices and order lists.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// FormatDateTime renders a timestamp for admin listings.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006, 15:04")
}

func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

func group(fixed string) string {
	intPart, frac, _ := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		return fixed
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

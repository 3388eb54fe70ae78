package invoice

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/toko-storefront/internal/money"
)

// Company is the seller profile printed in the header and footer.
type Company struct {
	Name   string
	Lines  []string
	Footer []string
}

var defaultFooter = []string{
	"This is a computer generated invoice and does not require a signature.",
	"Thank you for shopping with us!",
}

// Page geometry in millimetres for A4 portrait.
const (
	margin      = 15.0
	lineHeight  = 5.0
	rowHeight   = 7.0
	footerSpace = 30.0
	wrapWidth   = 90.0
	fontFamily  = "Helvetica"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 10, "C"},
	{"Item Description", 90, "L"},
	{"Qty", 20, "C"},
	{"Rate", 30, "R"},
	{"Amount", 30, "R"},
}

// Generator lays out invoice documents.
type Generator struct {
	Company Company
	// Compress toggles stream compression. Tests turn it off to inspect text.
	Compress bool
}

// NewGenerator returns a generator with compression enabled.
func NewGenerator(company Company) *Generator {
	return &Generator{Company: company, Compress: true}
}

type layout struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	data    Data
	company Company
	pageW   float64
	pageH   float64
}

// Generate renders data into a new document. The document depends only on
// data and the company profile.
func (g *Generator) Generate(data Data) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.Compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(data.InvoiceNumber, true)
	pdf.SetCreator(g.Company.Name, true)
	if !data.IssuedAt.IsZero() {
		pdf.SetCreationDate(data.IssuedAt)
	}

	w, h := pdf.GetPageSize()
	l := &layout{
		pdf:     pdf,
		tr:      pdf.UnicodeTranslatorFromDescriptor(""),
		data:    data,
		company: g.Company,
		pageW:   w,
		pageH:   h,
	}
	pdf.AddPage()
	l.header()
	l.title()
	l.meta()
	l.billTo()
	l.items()
	l.summary()
	l.payment()
	l.footer()

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("invoice: render %s: %w", data.InvoiceNumber, err)
	}
	return pdf, nil
}

// Write renders data and writes the document to w.
func (g *Generator) Write(w io.Writer, data Data) error {
	pdf, err := g.Generate(data)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("invoice: write %s: %w", data.InvoiceNumber, err)
	}
	return nil
}

func (l *layout) contentWidth() float64 { return l.pageW - 2*margin }

func (l *layout) header() {
	pdf := l.pdf
	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 9, l.tr(l.company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 9)
	for _, line := range l.company.Lines {
		pdf.CellFormat(0, 4.5, l.tr(line), "", 1, "L", false, 0, "")
	}
	y := pdf.GetY() + 2
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(margin, y, l.pageW-margin, y)
	pdf.SetY(y + 4)
}

func (l *layout) title() {
	l.pdf.SetFont(fontFamily, "B", 14)
	l.pdf.CellFormat(0, 8, "TAX INVOICE", "", 1, "C", false, 0, "")
	l.pdf.Ln(2)
}

func (l *layout) meta() {
	pdf := l.pdf
	third := l.contentWidth() / 3
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(third, 6, l.tr("Invoice No: "+l.data.InvoiceNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(third, 6, l.tr("Order No: "+l.data.OrderNumber), "", 0, "C", false, 0, "")
	pdf.CellFormat(third, 6, l.tr("Date: "+l.data.OrderDate), "", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func (l *layout) billTo() {
	pdf := l.pdf
	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(0, 6, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	pdf.CellFormat(0, lineHeight, l.tr(l.data.CustomerName), "", 1, "L", false, 0, "")
	for _, line := range pdf.SplitLines([]byte(l.tr(l.data.ShippingAddress)), wrapWidth) {
		pdf.CellFormat(0, lineHeight, string(line), "", 1, "L", false, 0, "")
	}
	if l.data.CustomerEmail != "" {
		pdf.CellFormat(0, lineHeight, l.tr("Email: "+l.data.CustomerEmail), "", 1, "L", false, 0, "")
	}
	if l.data.CustomerPhone != "" {
		pdf.CellFormat(0, lineHeight, l.tr("Phone: "+l.data.CustomerPhone), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (l *layout) tableHeader() {
	pdf := l.pdf
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetDrawColor(180, 180, 180)
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(col.width, 8, col.title, "1", ln, col.align, true, 0, "")
	}
	pdf.SetFont(fontFamily, "", 10)
}

// pageBreakY is the lowest cursor position body content may reach.
func (l *layout) pageBreakY() float64 { return l.pageH - margin - footerSpace }

func (l *layout) items() {
	pdf := l.pdf
	l.tableHeader()
	descWidth := columns[1].width
	for i, item := range l.data.Items {
		lines := pdf.SplitLines([]byte(l.tr(item.Name)), descWidth-2)
		if len(lines) == 0 {
			lines = [][]byte{nil}
		}
		height := float64(len(lines)) * lineHeight
		if height < rowHeight {
			height = rowHeight
		}
		if pdf.GetY()+height > l.pageBreakY() {
			pdf.AddPage()
			l.tableHeader()
		}

		x, y := pdf.GetXY()
		cells := []string{
			strconv.Itoa(i + 1),
			"",
			strconv.FormatInt(item.Quantity, 10),
			money.Format(l.data.Currency, item.Price),
			money.Format(l.data.Currency, item.Total),
		}
		for c, col := range columns {
			ln := 0
			if c == len(columns)-1 {
				ln = 1
			}
			pdf.CellFormat(col.width, height, l.tr(cells[c]), "1", ln, col.align, false, 0, "")
		}
		textX := x + columns[0].width + 1
		textY := y + (height-float64(len(lines))*lineHeight)/2 + lineHeight - 1.4
		for n, line := range lines {
			pdf.Text(textX, textY+float64(n)*lineHeight, string(line))
		}
	}
	pdf.Ln(4)
}

func (l *layout) summary() {
	pdf := l.pdf
	rows := SummaryRows(l.data)
	if pdf.GetY()+float64(len(rows))*6+12 > l.pageBreakY() {
		pdf.AddPage()
	}
	const labelWidth, amountWidth = 45.0, 30.0
	left := l.pageW - margin - labelWidth - amountWidth
	for _, row := range rows {
		if row.Kind == RowRule {
			y := pdf.GetY() + 1
			pdf.Line(left, y, l.pageW-margin, y)
			pdf.SetY(y + 1)
			continue
		}
		style := ""
		size := 10.0
		if row.Bold {
			style = "B"
			size = 11
		}
		pdf.SetFont(fontFamily, style, size)
		pdf.SetX(left)
		pdf.CellFormat(labelWidth, 6, row.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, 6, l.tr(money.Format(l.data.Currency, row.Display())), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

func (l *layout) payment() {
	l.pdf.SetFont(fontFamily, "", 10)
	l.pdf.CellFormat(0, 6, l.tr("Payment Method: "+l.data.PaymentMethod), "", 1, "L", false, 0, "")
}

func (l *layout) footer() {
	lines := l.company.Footer
	if len(lines) == 0 {
		lines = defaultFooter
	}
	pdf := l.pdf
	pdf.SetY(l.pageH - footerSpace)
	pdf.SetFont(fontFamily, "I", 8)
	pdf.SetTextColor(110, 110, 110)
	for _, line := range lines {
		pdf.CellFormat(0, 4, l.tr(line), "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

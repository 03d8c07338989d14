package infra

// pdf.go renders client-facing quote and invoice documents with go-pdf/fpdf.
// Files are written to storagePath/{number}.pdf. Cost figures never appear.

import (
	"fmt"
	"os"
	"path/filepath"

	"attendance/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type pdfLine struct {
	description string
	quantity    decimal.Decimal
	unitPrice   decimal.Decimal
	total       decimal.Decimal
}

type pdfTotal struct {
	label  string
	amount decimal.Decimal
	bold   bool
}

type pdfDocument struct {
	company string
	title   string
	number  string
	meta    [][2]string
	lines   []pdfLine
	totals  []pdfTotal
	footer  string
}

// RenderQuotePDF writes the quote document and returns its path.
func RenderQuotePDF(q *model.Quote, company, storagePath string) (string, error) {
	doc := pdfDocument{
		company: company,
		title:   "QUOTE",
		number:  q.QuoteNumber,
		meta: [][2]string{
			{"Date", q.CreatedAt.Format("2006-01-02")},
			{"Valid until", q.ValidUntil.Format("2006-01-02")},
			{"Status", string(q.Status)},
		},
		totals: []pdfTotal{{label: "Total", amount: q.Amount, bold: true}},
		footer: "This quote is subject to client approval.",
	}
	if q.JobOrder != nil {
		doc.meta = append(doc.meta,
			[2]string{"Job order", q.JobOrder.OrderNumber},
			[2]string{"Event", q.JobOrder.EventName},
			[2]string{"Site", q.JobOrder.SiteName})
	}
	for _, li := range q.LineItems {
		doc.lines = append(doc.lines, pdfLine{li.Description, li.Quantity, li.UnitPrice, li.TotalPrice})
	}
	return doc.write(storagePath)
}

// RenderInvoicePDF writes the invoice document and returns its path.
func RenderInvoicePDF(inv *model.Invoice, company, storagePath string) (string, error) {
	doc := pdfDocument{
		company: company,
		title:   "INVOICE",
		number:  inv.InvoiceNumber,
		meta: [][2]string{
			{"Invoice date", inv.InvoiceDate.Format("2006-01-02")},
			{"Due date", inv.DueDate.Format("2006-01-02")},
			{"Status", string(inv.Status)},
		},
		totals: []pdfTotal{
			{label: "Subtotal", amount: inv.SubTotal},
			{label: "Tax", amount: inv.TaxAmount},
			{label: "Total", amount: inv.TotalAmount, bold: true},
		},
		footer: "Payment is due by the date shown above.",
	}
	for _, li := range inv.LineItems {
		doc.lines = append(doc.lines, pdfLine{li.Description, li.Quantity, li.UnitPrice, li.TotalPrice})
	}
	return doc.write(storagePath)
}

func (d pdfDocument) write(storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, d.number+".pdf")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW/2, 10, d.company, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 10, d.title, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "No. "+d.number, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	for _, m := range d.meta {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(35, 5, m[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-35, 5, m[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1, col2, col3, col4 := contentW*0.52, contentW*0.12, contentW*0.18, contentW*0.18
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(col1, 7, "Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(col2, 7, "Qty", "B", 0, "R", true, 0, "")
	pdf.CellFormat(col3, 7, "Unit price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(col4, 7, "Amount", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, l := range d.lines {
		desc := l.description
		if len(desc) > 60 {
			desc = desc[:59] + "..."
		}
		pdf.CellFormat(col1, 6, tr(desc), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, l.quantity.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 6, l.unitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, l.total.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(d.lines) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 6, "No line items", "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	for _, t := range d.totals {
		style := ""
		if t.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(col1+col2+col3, 6, t.label+":", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, t.amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, d.footer, "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

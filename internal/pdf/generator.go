package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/nurpe/sales-crm/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Quote renders a single quote as a printable document with its line
// items and the monetary derivation.
func (g *Generator) Quote(quote *model.Quote, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "QUOTATION", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Quote No. %s, dated %s", quote.QuoteNumber, formatDate(quote.QuoteDate)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Valid until %s", formatDate(quote.ValidUntil)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	labelLine(pdf, g.fontName, "Title", quote.Title)
	labelLine(pdf, g.fontName, "Customer", customerName(quote.Customer))
	labelLine(pdf, g.fontName, "Sales Rep", salesName(quote.SalesUser))
	labelLine(pdf, g.fontName, "Status", string(quote.EffectiveStatus(now)))
	pdf.Ln(4)

	headers := []string{"Product", "Spec", "Unit", "Qty", "Unit Price", "Total"}
	colWidths := []float64{60, 35, 15, 20, 25, 25}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	for _, item := range quote.Items {
		if item.IsDeleted {
			continue
		}
		row := []string{
			item.ProductName,
			item.Specification,
			item.Unit,
			item.Quantity.String(),
			formatAmount(item.UnitPrice),
			formatAmount(item.TotalPrice),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(g.fontName, "", 11)
	totalLine(pdf, "Subtotal", quote.Currency, quote.Subtotal)
	totalLine(pdf, fmt.Sprintf("Discount (%s%%)", quote.DiscountRate), quote.Currency, quote.DiscountAmount.Neg())
	totalLine(pdf, fmt.Sprintf("Tax (%s%%)", quote.TaxRate), quote.Currency, quote.TaxAmount)
	pdf.SetFont(g.fontName, "B", 11)
	totalLine(pdf, "Total", quote.Currency, quote.TotalAmount)

	if quote.TermsConditions != "" {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Terms and Conditions", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, quote.TermsConditions, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Contract renders a single contract summary with its payment state and
// signature blocks.
func (g *Generator) Contract(contract *model.Contract) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "SALES CONTRACT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Contract No. %s, dated %s", contract.ContractNumber, formatDate(contract.ContractDate)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Term: %s to %s", formatDatePtr(contract.StartDate), formatDatePtr(contract.EndDate)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	labelLine(pdf, g.fontName, "Title", contract.Title)
	labelLine(pdf, g.fontName, "Customer", customerName(contract.Customer))
	labelLine(pdf, g.fontName, "Sales Rep", salesName(contract.SalesUser))
	labelLine(pdf, g.fontName, "Status", string(contract.Status))
	if contract.Quote != nil {
		labelLine(pdf, g.fontName, "Quote Ref", contract.Quote.QuoteNumber)
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Payment", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	totalLine(pdf, "Contract Amount", contract.Currency, contract.ContractAmount)
	totalLine(pdf, "Paid", contract.Currency, contract.PaidAmount)
	totalLine(pdf, "Remaining", contract.Currency, contract.RemainingAmount)
	pdf.CellFormat(0, 6, fmt.Sprintf("Payment progress: %d%%", contract.PaymentProgress()), "", 1, "R", false, 0, "")

	if contract.PaymentTerms != "" {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Payment Terms", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, contract.PaymentTerms, "", "L", false)
	}
	if contract.DeliveryTerms != "" {
		pdf.Ln(2)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Delivery Terms", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		pdf.MultiCell(0, 5, contract.DeliveryTerms, "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Signatures", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	signatureBlock(pdf, g.fontName, "Customer", contract.CustomerSigner)
	signatureBlock(pdf, g.fontName, "Company", contract.CompanySigner)
	if contract.SignedDate != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Signed on %s", formatDate(*contract.SignedDate)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func labelLine(pdf *gofpdf.Fpdf, fontName, label, value string) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(35, 6, label+":", "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, safeValue(value), "", 1, "L", false, 0, "")
}

func totalLine(pdf *gofpdf.Fpdf, label, currency string, amount decimal.Decimal) {
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s %s", label, formatAmount(amount), currency), "", 1, "R", false, 0, "")
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 2 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label, signer string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: ______________________ /%s/", label, safeValue(signer)), "", 1, "L", false, 0, "")
}

func customerName(c *model.Customer) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func salesName(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.DisplayName()
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

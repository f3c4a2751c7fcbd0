package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/sales-crm/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// QuoteRegister renders a listing of quotes as a single-sheet workbook.
func (g *Generator) QuoteRegister(quotes []model.Quote, now time.Time) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Quotes"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Quote Number",
		"Title",
		"Customer",
		"Sales Rep",
		"Quote Date",
		"Valid Until",
		"Currency",
		"Subtotal",
		"Discount",
		"Tax",
		"Total",
		"Status",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, quote := range quotes {
		row := i + 2
		set(fmt.Sprintf("A%d", row), quote.QuoteNumber)
		set(fmt.Sprintf("B%d", row), quote.Title)
		set(fmt.Sprintf("C%d", row), relatedName(quote.Customer))
		set(fmt.Sprintf("D%d", row), userName(quote.SalesUser))
		set(fmt.Sprintf("E%d", row), formatDate(quote.QuoteDate))
		set(fmt.Sprintf("F%d", row), formatDate(quote.ValidUntil))
		set(fmt.Sprintf("G%d", row), quote.Currency)
		set(fmt.Sprintf("H%d", row), formatAmount(quote.Subtotal))
		set(fmt.Sprintf("I%d", row), formatAmount(quote.DiscountAmount))
		set(fmt.Sprintf("J%d", row), formatAmount(quote.TaxAmount))
		set(fmt.Sprintf("K%d", row), formatAmount(quote.TotalAmount))
		set(fmt.Sprintf("L%d", row), string(quote.EffectiveStatus(now)))
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "C", 32)
	_ = file.SetColWidth(sheet, "D", "D", 18)
	_ = file.SetColWidth(sheet, "E", "F", 14)
	_ = file.SetColWidth(sheet, "G", "L", 12)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// OrderRegister renders a listing of orders as a single-sheet workbook.
func (g *Generator) OrderRegister(orders []model.Order) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Orders"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Order Number",
		"Customer",
		"Sales Rep",
		"Order Date",
		"Required Date",
		"Currency",
		"Subtotal",
		"Shipping",
		"Total",
		"Status",
		"Delivery %",
		"Tracking Number",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, order := range orders {
		row := i + 2
		set(fmt.Sprintf("A%d", row), order.OrderNumber)
		set(fmt.Sprintf("B%d", row), relatedName(order.Customer))
		set(fmt.Sprintf("C%d", row), userName(order.SalesUser))
		set(fmt.Sprintf("D%d", row), formatDate(order.OrderDate))
		set(fmt.Sprintf("E%d", row), formatDatePtr(order.RequiredDate))
		set(fmt.Sprintf("F%d", row), order.Currency)
		set(fmt.Sprintf("G%d", row), formatAmount(order.Subtotal))
		set(fmt.Sprintf("H%d", row), formatAmount(order.ShippingCost))
		set(fmt.Sprintf("I%d", row), formatAmount(order.TotalAmount))
		set(fmt.Sprintf("J%d", row), string(order.Status))
		set(fmt.Sprintf("K%d", row), order.DeliveryProgress())
		set(fmt.Sprintf("L%d", row), order.TrackingNumber)
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "C", 18)
	_ = file.SetColWidth(sheet, "D", "E", 14)
	_ = file.SetColWidth(sheet, "F", "K", 12)
	_ = file.SetColWidth(sheet, "L", "L", 20)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func relatedName(c *model.Customer) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func userName(u *model.User) string {
	if u == nil {
		return ""
	}
	return u.DisplayName()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

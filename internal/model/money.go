package model

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// Amounts is the monetary derivation shared by quotes and orders:
//
//	discount = subtotal × discount_rate / 100
//	taxable  = subtotal − discount
//	tax      = taxable × tax_rate / 100
//	total    = taxable + tax + shipping
//
// Rates are percentages in [0, 100]. Every field is rounded to two decimal
// places at the end of the derivation, never in between.
type Amounts struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// DeriveAmounts computes the stored monetary fields from a subtotal and the
// configured rates. Quotes pass decimal.Zero for shippingCost.
func DeriveAmounts(subtotal, discountRate, taxRate, shippingCost decimal.Decimal) Amounts {
	discount := decimal.Zero
	if discountRate.IsPositive() {
		discount = subtotal.Mul(discountRate).Div(oneHundred)
	}

	taxable := subtotal.Sub(discount)

	tax := decimal.Zero
	if taxRate.IsPositive() {
		tax = taxable.Mul(taxRate).Div(oneHundred)
	}

	total := taxable.Add(tax).Add(shippingCost)

	return Amounts{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discount.Round(2),
		TaxAmount:      tax.Round(2),
		TotalAmount:    total.Round(2),
	}
}

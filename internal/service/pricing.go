package service

import "github.com/shopspring/decimal"

type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.03"),
		ShippingFee:           decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(1000),
	}
}

// Quote applies flat-rate shipping and tax. Tax is rounded to whole units.
func (p Pricing) Quote(subtotal decimal.Decimal) (shipping, tax, total decimal.Decimal) {
	if !subtotal.IsPositive() {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	shipping = p.ShippingFee
	if subtotal.GreaterThanOrEqual(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax = subtotal.Mul(p.TaxRate).Round(0)
	total = subtotal.Add(shipping).Add(tax)
	return shipping, tax, total
}

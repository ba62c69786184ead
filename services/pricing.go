package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// PricedLine is one priced order line handed to a PricingPolicy.
type PricedLine struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// PricingPolicy computes order level taxes and discounts from the priced
// lines.
type PricingPolicy interface {
	Adjust(ctx context.Context, placement TablePlacement, subtotal decimal.Decimal, lines []PricedLine) (taxes, discounts decimal.Decimal, err error)
}

// NoAdjustments charges neither taxes nor discounts.
type NoAdjustments struct{}

func (NoAdjustments) Adjust(context.Context, TablePlacement, decimal.Decimal, []PricedLine) (decimal.Decimal, decimal.Decimal, error) {
	return decimal.Zero, decimal.Zero, nil
}

// TaxRate applies a flat tax rate to the subtotal.
type TaxRate struct {
	Rate decimal.Decimal
}

func (t TaxRate) Adjust(_ context.Context, _ TablePlacement, subtotal decimal.Decimal, _ []PricedLine) (decimal.Decimal, decimal.Decimal, error) {
	return utils.RoundMoney(subtotal.Mul(t.Rate)), decimal.Zero, nil
}

func lineTotal(quantity int, unit decimal.Decimal, adjustments []decimal.Decimal) decimal.Decimal {
	perUnit := unit
	for _, adj := range adjustments {
		perUnit = perUnit.Add(adj)
	}
	return utils.RoundMoney(perUnit.Mul(decimal.NewFromInt(int64(quantity))))
}

func orderTotal(subtotal, taxes, discounts decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(subtotal.Add(taxes).Sub(discounts))
}

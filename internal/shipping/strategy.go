package shipping

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidSubtotal is returned when a shipping fee is requested for a
// zero or negative subtotal.
var ErrInvalidSubtotal = errors.New("subtotal must be greater than zero")

// Strategy computes a shipping fee for an order subtotal. Each strategy is
// identified by a stable method code used on the wire and stored on orders.
type Strategy interface {
	Code() string
	Description() string
	Fee(subtotal decimal.Decimal) (decimal.Decimal, error)
}

// percentFee applies a flat percentage rate and rounds to 2 decimal
// places, half-up.
func percentFee(subtotal, rate decimal.Decimal) (decimal.Decimal, error) {
	if subtotal.Sign() <= 0 {
		return decimal.Zero, ErrInvalidSubtotal
	}
	return subtotal.Mul(rate).Round(2), nil
}

type groundStrategy struct{}

func (groundStrategy) Code() string        { return "GROUND" }
func (groundStrategy) Description() string { return "Ground shipping (5% of order subtotal)" }

func (groundStrategy) Fee(subtotal decimal.Decimal) (decimal.Decimal, error) {
	return percentFee(subtotal, decimal.NewFromFloat(0.05))
}

type airStrategy struct{}

func (airStrategy) Code() string        { return "AIR" }
func (airStrategy) Description() string { return "Air shipping (10% of order subtotal)" }

func (airStrategy) Fee(subtotal decimal.Decimal) (decimal.Decimal, error) {
	return percentFee(subtotal, decimal.NewFromFloat(0.10))
}

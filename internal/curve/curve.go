// internal/curve/curve.go
package curve

import (
	"errors"

	"github.com/holiman/uint256"
)

// PriceScale is the fixed-point scale for curve parameters: a price of one
// reserve unit per token unit is represented as 1e18. Sub-unit initial
// prices (e.g. 1e-8 reserve units) therefore stay exact integers.
var PriceScale = uint256.NewInt(1e18)

var (
	ErrZeroPayment    = errors.New("payment amount must be positive")
	ErrZeroAmount     = errors.New("token amount must be positive")
	ErrExceedsSupply  = errors.New("token amount exceeds sold supply")
	ErrOverflow       = errors.New("curve arithmetic overflow")
	ErrDegenerateZero = errors.New("curve has zero initial price and zero slope")
)

// Linear is the pre-committed price function price(s) = initialPrice + slope*s,
// with both parameters scaled by PriceScale and fixed at instrument creation.
type Linear struct {
	InitialPrice *uint256.Int
	Slope        *uint256.Int
}

// NewLinear copies the parameters so the curve cannot alias caller state.
func NewLinear(initialPrice, slope *uint256.Int) (Linear, error) {
	if initialPrice.IsZero() && slope.IsZero() {
		return Linear{}, ErrDegenerateZero
	}
	return Linear{
		InitialPrice: new(uint256.Int).Set(initialPrice),
		Slope:        new(uint256.Int).Set(slope),
	}, nil
}

// Price returns the scaled unit price at the given sold supply.
func (c Linear) Price(soldSupply *uint256.Int) (*uint256.Int, error) {
	term, overflow := new(uint256.Int).MulOverflow(c.Slope, soldSupply)
	if overflow {
		return nil, ErrOverflow
	}
	price, overflow := term.AddOverflow(term, c.InitialPrice)
	if overflow {
		return nil, ErrOverflow
	}
	return price, nil
}

// PaymentForBuy returns the reserve cost of buying tokenAmount starting at
// currentSupply: the area under the price line from currentSupply to
// currentSupply+tokenAmount, floor-divided so the ledger keeps the dust.
//
//	cost = (2*n*p0 + m*n*(2s+n)) / (2*PriceScale)
func (c Linear) PaymentForBuy(currentSupply, tokenAmount *uint256.Int) (*uint256.Int, error) {
	if tokenAmount.IsZero() {
		return nil, ErrZeroAmount
	}
	doubled, overflow := new(uint256.Int).AddOverflow(currentSupply, currentSupply)
	if overflow {
		return nil, ErrOverflow
	}
	span, overflow := doubled.AddOverflow(doubled, tokenAmount)
	if overflow {
		return nil, ErrOverflow
	}
	return c.integral(tokenAmount, span)
}

// PaymentForTokens returns the gross reserve proceeds of selling tokenAmount
// back into the curve at currentSupply: the area under the price line from
// currentSupply-tokenAmount to currentSupply, floored in the ledger's favor.
func (c Linear) PaymentForTokens(currentSupply, tokenAmount *uint256.Int) (*uint256.Int, error) {
	if tokenAmount.IsZero() {
		return nil, ErrZeroAmount
	}
	if tokenAmount.Gt(currentSupply) {
		return nil, ErrExceedsSupply
	}
	// 2s - n never underflows because n <= s.
	doubled := new(uint256.Int).Add(currentSupply, currentSupply)
	span := doubled.Sub(doubled, tokenAmount)
	return c.integral(tokenAmount, span)
}

// integral evaluates (2*n*p0 + m*n*span) / (2*PriceScale) with overflow checks.
func (c Linear) integral(n, span *uint256.Int) (*uint256.Int, error) {
	base, overflow := new(uint256.Int).MulOverflow(n, c.InitialPrice)
	if overflow {
		return nil, ErrOverflow
	}
	base, overflow = base.AddOverflow(base, base)
	if overflow {
		return nil, ErrOverflow
	}
	slopePart, overflow := new(uint256.Int).MulOverflow(c.Slope, n)
	if overflow {
		return nil, ErrOverflow
	}
	slopePart, overflow = slopePart.MulOverflow(slopePart, span)
	if overflow {
		return nil, ErrOverflow
	}
	sum, overflow := base.AddOverflow(base, slopePart)
	if overflow {
		return nil, ErrOverflow
	}
	denom := new(uint256.Int).Add(PriceScale, PriceScale)
	return sum.Div(sum, denom), nil
}

// TokensForPayment inverts the buy integral: the largest whole token amount n
// whose cost at currentSupply does not exceed netPayment. Solved from
//
//	m*n^2 + 2*(p0 + m*s)*n - 2*PriceScale*pay = 0
//	n = (sqrt(b^2 + 2*m*PriceScale*pay) - b) / m,  b = p0 + m*s
//
// using a floor integer square root, so rounding always favors the ledger.
func (c Linear) TokensForPayment(currentSupply, netPayment *uint256.Int) (*uint256.Int, error) {
	if netPayment.IsZero() {
		return nil, ErrZeroPayment
	}
	scaledPay, overflow := new(uint256.Int).MulOverflow(netPayment, PriceScale)
	if overflow {
		return nil, ErrOverflow
	}
	if c.Slope.IsZero() {
		// Flat curve: n = PriceScale*pay / p0.
		return scaledPay.Div(scaledPay, c.InitialPrice), nil
	}
	b, err := c.Price(currentSupply)
	if err != nil {
		return nil, err
	}
	bSquared, overflow := new(uint256.Int).MulOverflow(b, b)
	if overflow {
		return nil, ErrOverflow
	}
	payTerm, overflow := new(uint256.Int).MulOverflow(c.Slope, scaledPay)
	if overflow {
		return nil, ErrOverflow
	}
	payTerm, overflow = payTerm.AddOverflow(payTerm, payTerm)
	if overflow {
		return nil, ErrOverflow
	}
	disc, overflow := bSquared.AddOverflow(bSquared, payTerm)
	if overflow {
		return nil, ErrOverflow
	}
	root := new(uint256.Int).Sqrt(disc)
	if root.Lt(b) {
		// Floor sqrt can land one below b when the payment is tiny.
		return uint256.NewInt(0), nil
	}
	root.Sub(root, b)
	return root.Div(root, c.Slope), nil
}

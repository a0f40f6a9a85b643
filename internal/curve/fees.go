// internal/curve/fees.go
package curve

import (
	"errors"

	"github.com/holiman/uint256"
)

// BpDenominator is the basis-point denominator: 10000bp = 100%.
const BpDenominator = 10000

var ErrFeeRates = errors.New("fee rates exceed 10000 basis points")

// FeeSplit is the three-way division of a gross trade amount. The parts
// always sum exactly to the gross input.
type FeeSplit struct {
	Net         *uint256.Int
	PlatformFee *uint256.Int
	CreatorFee  *uint256.Int
}

// Split divides gross into net trade amount, platform fee and creator fee.
// Fees truncate toward zero, so any dust from integer division stays in the
// net amount rather than leaking.
func Split(gross *uint256.Int, platformBp, creatorBp uint64) (FeeSplit, error) {
	if platformBp+creatorBp > BpDenominator {
		return FeeSplit{}, ErrFeeRates
	}
	denom := uint256.NewInt(BpDenominator)

	platformFee, overflow := new(uint256.Int).MulDivOverflow(gross, uint256.NewInt(platformBp), denom)
	if overflow {
		return FeeSplit{}, ErrOverflow
	}
	creatorFee, overflow := new(uint256.Int).MulDivOverflow(gross, uint256.NewInt(creatorBp), denom)
	if overflow {
		return FeeSplit{}, ErrOverflow
	}

	net := new(uint256.Int).Sub(gross, platformFee)
	net.Sub(net, creatorFee)

	return FeeSplit{Net: net, PlatformFee: platformFee, CreatorFee: creatorFee}, nil
}

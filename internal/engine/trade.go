// internal/engine/trade.go
package engine

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/curve"
	"github.com/rabbit-labs/launchpad/internal/events"
	"github.com/rabbit-labs/launchpad/internal/ledger"
)

// BuyResult reports a settled buy.
type BuyResult struct {
	TokenAmount *uint256.Int
	NetPayment  *uint256.Int
	PlatformFee *uint256.Int
	CreatorFee  *uint256.Int
	Graduated   bool
}

// Buy purchases curve tokens for grossPayment attached to the call. The
// whole call is one atomic unit: any failure leaves supply, reserve and
// balances exactly as they were.
func (e *Engine) Buy(ctx context.Context, instrumentID string, grossPayment, minTokensOut *uint256.Int, buyer string) (*BuyResult, error) {
	if buyer == "" {
		return nil, ErrInvalidIdentity
	}
	if err := e.guard.RequireTradable(); err != nil {
		return nil, err
	}
	if grossPayment == nil || grossPayment.IsZero() {
		return nil, ErrZeroPayment
	}
	if minTokensOut == nil {
		minTokensOut = uint256.NewInt(0)
	}

	inst, release, err := e.registry.Acquire(instrumentID)
	if err != nil {
		return nil, err
	}
	defer release()

	if inst.Graduated {
		return nil, ErrGraduated
	}

	split, err := curve.Split(grossPayment, e.params.PlatformFeeBp, e.params.CreatorFeeBp)
	if err != nil {
		return nil, err
	}

	tokenAmount, err := inst.Curve().TokensForPayment(inst.SoldSupply, split.Net)
	if err != nil {
		return nil, err
	}
	if tokenAmount.IsZero() {
		return nil, ErrPaymentTooSmall
	}

	newSupply, overflow := new(uint256.Int).AddOverflow(inst.SoldSupply, tokenAmount)
	if overflow {
		return nil, curve.ErrOverflow
	}
	if newSupply.Gt(e.params.MaxCurveSupply) {
		return nil, ErrMaxSupplyExceeded
	}
	if tokenAmount.Lt(minTokensOut) {
		return nil, ErrSlippage
	}

	// Effects: all ledger mutations happen before any external transfer.
	snap := inst.Snapshot()
	inst.SoldSupply.Set(newSupply)
	inst.NetReserve.Add(inst.NetReserve, split.Net)
	e.book.CreditTokens(inst.ID, buyer, tokenAmount)

	// Interactions: fee payouts. A failing recipient aborts the whole trade.
	if err := runTransfers(ctx, e.port, []transfer{
		{to: e.guard.Treasury(), amount: split.PlatformFee},
		{to: inst.Creator, amount: split.CreatorFee},
	}); err != nil {
		inst.Restore(snap)
		if debitErr := e.book.DebitTokens(inst.ID, buyer, tokenAmount); debitErr != nil {
			e.logger.Error("Buy rollback failed to reclaim tokens",
				zap.String("instrument_id", inst.ID),
				zap.Error(debitErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrFeeTransfer, err)
	}

	e.logger.Info("Buy settled",
		zap.String("instrument_id", inst.ID),
		zap.String("buyer", buyer),
		zap.String("gross_payment", grossPayment.Dec()),
		zap.String("token_amount", tokenAmount.Dec()),
		zap.String("sold_supply", inst.SoldSupply.Dec()),
		zap.String("net_reserve", inst.NetReserve.Dec()))

	e.emit(events.TradeCompletedEvent{
		BaseEvent:    e.base(events.TradeCompleted),
		InstrumentID: inst.ID,
		Side:         events.SideBuy,
		Actor:        buyer,
		GrossPayment: new(uint256.Int).Set(grossPayment),
		NetPayment:   new(uint256.Int).Set(split.Net),
		PlatformFee:  new(uint256.Int).Set(split.PlatformFee),
		CreatorFee:   new(uint256.Int).Set(split.CreatorFee),
		TokenAmount:  new(uint256.Int).Set(tokenAmount),
		SoldSupply:   new(uint256.Int).Set(inst.SoldSupply),
		NetReserve:   new(uint256.Int).Set(inst.NetReserve),
	})

	result := &BuyResult{
		TokenAmount: new(uint256.Int).Set(tokenAmount),
		NetPayment:  new(uint256.Int).Set(split.Net),
		PlatformFee: split.PlatformFee,
		CreatorFee:  split.CreatorFee,
	}

	// The trade is final; a graduation failure here must not unwind it.
	if !inst.NetReserve.Lt(e.params.RaiseTarget) {
		if err := e.graduateLocked(ctx, inst, buyer); err != nil {
			e.logger.Error("Automatic graduation failed",
				zap.String("instrument_id", inst.ID),
				zap.Error(err))
		} else {
			result.Graduated = true
		}
	}
	return result, nil
}

// SellResult reports a settled sell.
type SellResult struct {
	GrossProceeds *uint256.Int
	NetPayment    *uint256.Int
	PlatformFee   *uint256.Int
	CreatorFee    *uint256.Int
}

// Sell returns tokenAmount to the curve for the seller's share of the gross
// proceeds, symmetric to Buy.
func (e *Engine) Sell(ctx context.Context, instrumentID string, tokenAmount, minPaymentOut *uint256.Int, seller string) (*SellResult, error) {
	if seller == "" {
		return nil, ErrInvalidIdentity
	}
	if err := e.guard.RequireTradable(); err != nil {
		return nil, err
	}
	if tokenAmount == nil || tokenAmount.IsZero() {
		return nil, curve.ErrZeroAmount
	}
	if minPaymentOut == nil {
		minPaymentOut = uint256.NewInt(0)
	}

	inst, release, err := e.registry.Acquire(instrumentID)
	if err != nil {
		return nil, err
	}
	defer release()

	if inst.Graduated {
		return nil, ErrGraduated
	}

	if e.book.TokenBalance(inst.ID, seller).Lt(tokenAmount) {
		return nil, fmt.Errorf("%w: seller %s", ledger.ErrInsufficientTokens, seller)
	}

	gross, err := inst.Curve().PaymentForTokens(inst.SoldSupply, tokenAmount)
	if err != nil {
		return nil, err
	}
	if gross.Gt(inst.NetReserve) {
		return nil, ErrReserveShortfall
	}

	split, err := curve.Split(gross, e.params.PlatformFeeBp, e.params.CreatorFeeBp)
	if err != nil {
		return nil, err
	}
	if split.Net.Lt(minPaymentOut) {
		return nil, ErrSlippage
	}

	// Effects before interactions, same discipline as Buy.
	snap := inst.Snapshot()
	if err := e.book.DebitTokens(inst.ID, seller, tokenAmount); err != nil {
		return nil, err
	}
	inst.SoldSupply.Sub(inst.SoldSupply, tokenAmount)
	inst.NetReserve.Sub(inst.NetReserve, gross)

	if err := runTransfers(ctx, e.port, []transfer{
		{to: seller, amount: split.Net},
		{to: e.guard.Treasury(), amount: split.PlatformFee},
		{to: inst.Creator, amount: split.CreatorFee},
	}); err != nil {
		inst.Restore(snap)
		e.book.CreditTokens(inst.ID, seller, tokenAmount)
		return nil, fmt.Errorf("%w: %v", ErrFeeTransfer, err)
	}

	e.logger.Info("Sell settled",
		zap.String("instrument_id", inst.ID),
		zap.String("seller", seller),
		zap.String("token_amount", tokenAmount.Dec()),
		zap.String("net_payment", split.Net.Dec()),
		zap.String("sold_supply", inst.SoldSupply.Dec()),
		zap.String("net_reserve", inst.NetReserve.Dec()))

	e.emit(events.TradeCompletedEvent{
		BaseEvent:    e.base(events.TradeCompleted),
		InstrumentID: inst.ID,
		Side:         events.SideSell,
		Actor:        seller,
		GrossPayment: new(uint256.Int).Set(gross),
		NetPayment:   new(uint256.Int).Set(split.Net),
		PlatformFee:  new(uint256.Int).Set(split.PlatformFee),
		CreatorFee:   new(uint256.Int).Set(split.CreatorFee),
		TokenAmount:  new(uint256.Int).Set(tokenAmount),
		SoldSupply:   new(uint256.Int).Set(inst.SoldSupply),
		NetReserve:   new(uint256.Int).Set(inst.NetReserve),
	})

	return &SellResult{
		GrossProceeds: gross,
		NetPayment:    new(uint256.Int).Set(split.Net),
		PlatformFee:   split.PlatformFee,
		CreatorFee:    split.CreatorFee,
	}, nil
}

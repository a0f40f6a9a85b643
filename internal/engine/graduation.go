// internal/engine/graduation.go
package engine

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/events"
	"github.com/rabbit-labs/launchpad/internal/ledger"
)

// Graduate is the explicit, privileged graduation trigger. It enforces the
// same threshold the automatic path uses.
func (e *Engine) Graduate(ctx context.Context, instrumentID, caller string) error {
	if err := e.guard.RequireOwner(caller); err != nil {
		return err
	}

	inst, release, err := e.registry.Acquire(instrumentID)
	if err != nil {
		return err
	}
	defer release()

	if inst.Graduated {
		return ErrGraduated
	}
	if inst.NetReserve.Lt(e.params.RaiseTarget) {
		return ErrNotReadyToGraduate
	}
	return e.graduateLocked(ctx, inst, caller)
}

// graduateLocked performs the one-way transition. The caller must hold the
// instrument's busy lock. On any failure the instrument is left ungraduated
// so a later attempt can retry; once it succeeds it can never run again.
func (e *Engine) graduateLocked(ctx context.Context, inst *ledger.Instrument, actor string) error {
	if inst.Graduated {
		return ErrGraduated
	}

	reserveMoved := new(uint256.Int).Set(inst.NetReserve)

	// Venue allocation: the configured slice of unsold curve supply, capped
	// at whatever the curve has left.
	allocation := new(uint256.Int).Set(e.params.VenueAllocation)
	unsold := new(uint256.Int).Sub(e.params.MaxCurveSupply, inst.SoldSupply)
	if allocation.Gt(unsold) {
		allocation.Set(unsold)
	}

	snap := inst.Snapshot()
	inst.Graduated = true
	inst.GraduatedAt = e.now().UTC()
	inst.NetReserve.Clear()
	e.book.CreditTokens(inst.ID, e.params.Venue, allocation)

	if err := runTransfers(ctx, e.port, []transfer{
		{to: e.params.Venue, amount: reserveMoved},
	}); err != nil {
		inst.Restore(snap)
		if debitErr := e.book.DebitTokens(inst.ID, e.params.Venue, allocation); debitErr != nil {
			e.logger.Error("Graduation rollback failed to reclaim venue allocation",
				zap.String("instrument_id", inst.ID),
				zap.Error(debitErr))
		}
		return fmt.Errorf("%w: %v", ErrFeeTransfer, err)
	}

	e.logger.Info("Instrument graduated",
		zap.String("instrument_id", inst.ID),
		zap.String("actor", actor),
		zap.String("reserve_moved", reserveMoved.Dec()),
		zap.String("tokens_allocated", allocation.Dec()),
		zap.String("venue", e.params.Venue))

	e.emit(events.InstrumentGraduatedEvent{
		BaseEvent:       e.base(events.InstrumentGraduated),
		InstrumentID:    inst.ID,
		Actor:           actor,
		ReserveMoved:    reserveMoved,
		TokensAllocated: allocation,
		FinalSoldSupply: new(uint256.Int).Set(inst.SoldSupply),
		Venue:           e.params.Venue,
	})
	return nil
}

// internal/storage/recorder.go
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/events"
	"github.com/rabbit-labs/launchpad/internal/storage/models"
)

// Recorder subscribes to engine records and mirrors them into storage.
type Recorder struct {
	store  Storage
	logger *zap.Logger
	subs   []events.Subscription
}

func NewRecorder(store Storage, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.Named("recorder"),
	}
}

// Attach wires the recorder to the bus.
func (r *Recorder) Attach(bus *events.Bus) {
	r.subs = append(r.subs,
		bus.SubscribeFunc(events.TradeCompleted, r.onTrade),
		bus.SubscribeFunc(events.InstrumentCreated, r.onInstrumentCreated),
		bus.SubscribeFunc(events.InstrumentGraduated, r.onGraduated),
	)
}

// Detach unsubscribes from the bus.
func (r *Recorder) Detach() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}

func (r *Recorder) onTrade(ctx context.Context, event events.Event) error {
	trade, ok := event.(events.TradeCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	row := &models.Trade{
		InstrumentID: trade.InstrumentID,
		Side:         string(trade.Side),
		Actor:        trade.Actor,
		GrossPayment: trade.GrossPayment.Dec(),
		NetPayment:   trade.NetPayment.Dec(),
		PlatformFee:  trade.PlatformFee.Dec(),
		CreatorFee:   trade.CreatorFee.Dec(),
		TokenAmount:  trade.TokenAmount.Dec(),
		SoldSupply:   trade.SoldSupply.Dec(),
		NetReserve:   trade.NetReserve.Dec(),
		OccurredAt:   trade.Timestamp(),
	}
	if err := r.store.SaveTrade(ctx, row); err != nil {
		r.logger.Error("Failed to persist trade record",
			zap.String("instrument_id", trade.InstrumentID),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *Recorder) onInstrumentCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.InstrumentCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	row := &models.InstrumentRow{
		InstrumentID: created.InstrumentID,
		Creator:      created.Creator,
		Name:         created.Name,
		Symbol:       created.Symbol,
		MetadataRef:  created.MetadataRef,
		InitialPrice: created.InitialPrice.Dec(),
		Slope:        created.Slope.Dec(),
		CreateFee:    created.CreateFee.Dec(),
		MintedAt:     created.Timestamp(),
	}
	if err := r.store.SaveInstrument(ctx, row); err != nil {
		r.logger.Error("Failed to persist instrument record",
			zap.String("instrument_id", created.InstrumentID),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *Recorder) onGraduated(ctx context.Context, event events.Event) error {
	grad, ok := event.(events.InstrumentGraduatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	row := &models.Graduation{
		InstrumentID:    grad.InstrumentID,
		Actor:           grad.Actor,
		ReserveMoved:    grad.ReserveMoved.Dec(),
		TokensAllocated: grad.TokensAllocated.Dec(),
		FinalSoldSupply: grad.FinalSoldSupply.Dec(),
		Venue:           grad.Venue,
		OccurredAt:      grad.Timestamp(),
	}
	if err := r.store.SaveGraduation(ctx, row); err != nil {
		r.logger.Error("Failed to persist graduation record",
			zap.String("instrument_id", grad.InstrumentID),
			zap.Error(err))
		return err
	}
	return nil
}

// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/curve"
	"github.com/rabbit-labs/launchpad/internal/events"
	"github.com/rabbit-labs/launchpad/internal/guard"
	"github.com/rabbit-labs/launchpad/internal/ledger"
)

const (
	maxNameLen   = 32
	maxSymbolLen = 10
)

// Params are the global trading parameters, captured once at startup and
// never mutated afterwards.
type Params struct {
	PlatformFeeBp uint64
	CreatorFeeBp  uint64

	// CreateFee is the flat reserve-unit fee charged per instrument creation.
	CreateFee *uint256.Int

	// RaiseTarget is the net reserve at which an instrument graduates.
	RaiseTarget *uint256.Int

	// MaxCurveSupply bounds the tokens issuable through the curve.
	MaxCurveSupply *uint256.Int

	// VenueAllocation is the unsold supply handed to the venue on graduation,
	// capped at whatever the curve has left.
	VenueAllocation *uint256.Int
	Venue           string

	// Default curve parameters for newly created instruments, scaled by
	// curve.PriceScale.
	InitialPrice *uint256.Int
	Slope        *uint256.Int
}

func (p Params) validate() error {
	if p.PlatformFeeBp+p.CreatorFeeBp > curve.BpDenominator {
		return curve.ErrFeeRates
	}
	if p.Venue == "" {
		return ErrInvalidIdentity
	}
	if p.RaiseTarget == nil || p.RaiseTarget.IsZero() {
		return fmt.Errorf("raise target must be positive")
	}
	if p.MaxCurveSupply == nil || p.MaxCurveSupply.IsZero() {
		return fmt.Errorf("max curve supply must be positive")
	}
	if _, err := curve.NewLinear(p.InitialPrice, p.Slope); err != nil {
		return err
	}
	return nil
}

// Engine orchestrates the price curve and fee split against the instrument
// ledger. Every externally invoked operation is all-or-nothing: validation
// first, then ledger effects, then external transfers, with a rollback path
// if a transfer fails.
type Engine struct {
	params   Params
	registry *ledger.Registry
	book     *ledger.Book
	guard    *guard.Guard
	port     ReservePort
	bus      *events.Bus
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithPort replaces the default book-backed settlement port.
func WithPort(port ReservePort) Option {
	return func(e *Engine) { e.port = port }
}

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(params Params, reg *ledger.Registry, book *ledger.Book, g *guard.Guard, bus *events.Bus, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine params: %w", err)
	}
	e := &Engine{
		params:   params,
		registry: reg,
		book:     book,
		guard:    g,
		port:     NewBookPort(book),
		bus:      bus,
		logger:   logger.Named("engine"),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Book exposes the balance book for read-only balance queries.
func (e *Engine) Book() *ledger.Book {
	return e.book
}

// Guard exposes the access guard for governance calls.
func (e *Engine) Guard() *guard.Guard {
	return e.guard
}

// CreateRequest carries the creation parameters and the attached fee payment.
type CreateRequest struct {
	Name        string
	Symbol      string
	MetadataRef string
	Creator     string
	FeePayment  *uint256.Int
}

// CreateInstrument mints a new instrument with the engine's configured curve
// parameters and forwards the attached payment to the treasury.
func (e *Engine) CreateInstrument(ctx context.Context, req CreateRequest) (string, error) {
	if err := e.guard.RequireTradable(); err != nil {
		return "", err
	}
	if req.Creator == "" {
		return "", ErrInvalidIdentity
	}
	if len(req.Name) == 0 || len(req.Name) > maxNameLen {
		return "", ErrNameLength
	}
	if len(req.Symbol) == 0 || len(req.Symbol) > maxSymbolLen {
		return "", ErrSymbolLength
	}
	if req.FeePayment == nil || req.FeePayment.Lt(e.params.CreateFee) {
		return "", ErrInsufficientCreateFee
	}

	inst := &ledger.Instrument{
		ID:           e.newID(),
		Creator:      req.Creator,
		Name:         req.Name,
		Symbol:       req.Symbol,
		MetadataRef:  req.MetadataRef,
		InitialPrice: new(uint256.Int).Set(e.params.InitialPrice),
		Slope:        new(uint256.Int).Set(e.params.Slope),
		SoldSupply:   uint256.NewInt(0),
		NetReserve:   uint256.NewInt(0),
		CreatedAt:    e.now().UTC(),
	}
	treasury := e.guard.Treasury()
	if err := runTransfers(ctx, e.port, []transfer{
		{to: treasury, amount: req.FeePayment},
	}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFeeTransfer, err)
	}
	if err := e.registry.Add(inst); err != nil {
		if reclaimErr := e.port.Reclaim(ctx, treasury, req.FeePayment); reclaimErr != nil {
			e.logger.Error("Create rollback failed to reclaim fee",
				zap.String("instrument_id", inst.ID),
				zap.Error(reclaimErr))
		}
		return "", err
	}

	e.logger.Info("Instrument created",
		zap.String("instrument_id", inst.ID),
		zap.String("creator", inst.Creator),
		zap.String("symbol", inst.Symbol))

	e.emit(events.InstrumentCreatedEvent{
		BaseEvent:    e.base(events.InstrumentCreated),
		InstrumentID: inst.ID,
		Creator:      inst.Creator,
		Name:         inst.Name,
		Symbol:       inst.Symbol,
		MetadataRef:  inst.MetadataRef,
		InitialPrice: new(uint256.Int).Set(inst.InitialPrice),
		Slope:        new(uint256.Int).Set(inst.Slope),
		CreateFee:    new(uint256.Int).Set(req.FeePayment),
	})
	return inst.ID, nil
}

// InstrumentInfo returns a detached copy of the instrument record.
func (e *Engine) InstrumentInfo(id string) (*ledger.Instrument, error) {
	return e.registry.Get(id)
}

// AllInstrumentIDs lists every registered instrument id.
func (e *Engine) AllInstrumentIDs() []string {
	return e.registry.IDs()
}

// CurveStats is the read-model for price-quoting callers.
type CurveStats struct {
	CurrentPrice *uint256.Int // scaled by curve.PriceScale
	MarketCap    *uint256.Int // reserve units
	ProgressBp   uint64       // 0..10000 toward the raise target
	Graduated    bool
}

// Stats computes the live curve statistics for one instrument.
func (e *Engine) Stats(id string) (*CurveStats, error) {
	inst, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}

	price, err := inst.Curve().Price(inst.SoldSupply)
	if err != nil {
		return nil, err
	}
	marketCap, overflow := new(uint256.Int).MulOverflow(price, inst.SoldSupply)
	if overflow {
		return nil, curve.ErrOverflow
	}
	marketCap.Div(marketCap, curve.PriceScale)

	progress := uint64(curve.BpDenominator)
	if !inst.Graduated {
		scaled, overflow := new(uint256.Int).MulOverflow(inst.NetReserve, uint256.NewInt(curve.BpDenominator))
		if overflow {
			return nil, curve.ErrOverflow
		}
		scaled.Div(scaled, e.params.RaiseTarget)
		if scaled.LtUint64(curve.BpDenominator) {
			progress = scaled.Uint64()
		}
	}

	return &CurveStats{
		CurrentPrice: price,
		MarketCap:    marketCap,
		ProgressBp:   progress,
		Graduated:    inst.Graduated,
	}, nil
}

func (e *Engine) base(t events.EventType) events.BaseEvent {
	return events.BaseEvent{EventType: t, EventTime: e.now().UTC()}
}

func (e *Engine) emit(event events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.Publish(event); err != nil {
		e.logger.Warn("Dropped engine event",
			zap.String("event_type", string(event.Type())),
			zap.Error(err))
	}
}

// internal/events/types.go
package events

import (
	"time"

	"github.com/holiman/uint256"
)

// EventType represents the type of event.
type EventType string

const (
	InstrumentCreated   EventType = "instrument.created"
	TradeCompleted      EventType = "trade.completed"
	InstrumentGraduated EventType = "instrument.graduated"
	AccessStateChanged  EventType = "access.state_changed"
)

// TradeSide distinguishes buy and sell records.
type TradeSide string

const (
	SideBuy  TradeSide = "buy"
	SideSell TradeSide = "sell"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// InstrumentCreatedEvent is emitted once per created instrument. It carries
// enough to reconstruct the initial ledger row without re-querying.
type InstrumentCreatedEvent struct {
	BaseEvent
	InstrumentID string
	Creator      string
	Name         string
	Symbol       string
	MetadataRef  string
	InitialPrice *uint256.Int
	Slope        *uint256.Int
	CreateFee    *uint256.Int
}

// TradeCompletedEvent is emitted after every settled buy or sell.
type TradeCompletedEvent struct {
	BaseEvent
	InstrumentID string
	Side         TradeSide
	Actor        string
	GrossPayment *uint256.Int
	NetPayment   *uint256.Int
	PlatformFee  *uint256.Int
	CreatorFee   *uint256.Int
	TokenAmount  *uint256.Int
	SoldSupply   *uint256.Int // resulting supply after the trade
	NetReserve   *uint256.Int // resulting reserve after the trade
}

// InstrumentGraduatedEvent is emitted on the one-way graduation transition.
type InstrumentGraduatedEvent struct {
	BaseEvent
	InstrumentID    string
	Actor           string
	ReserveMoved    *uint256.Int
	TokensAllocated *uint256.Int
	FinalSoldSupply *uint256.Int
	Venue           string
}

// AccessStateChangedEvent is emitted on pause/unpause, emergency transitions
// and treasury governance steps.
type AccessStateChangedEvent struct {
	BaseEvent
	Actor     string
	Change    string // "paused", "unpaused", "emergency_activated", ...
	Paused    bool
	Emergency bool
	Treasury  string
}

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rabbit-labs/launchpad/internal/events"
)

func tradeEvent(side events.TradeSide) events.TradeCompletedEvent {
	return events.TradeCompletedEvent{
		BaseEvent:    events.BaseEvent{EventType: events.TradeCompleted, EventTime: time.Now()},
		InstrumentID: "inst-1",
		Side:         side,
		Actor:        "alice",
		GrossPayment: uint256.NewInt(100),
		NetPayment:   uint256.NewInt(98),
		PlatformFee:  uint256.NewInt(1),
		CreatorFee:   uint256.NewInt(1),
		TokenAmount:  uint256.NewInt(5),
		SoldSupply:   uint256.NewInt(5),
		NetReserve:   uint256.NewInt(98),
	}
}

func TestTradeCountersBySide(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 16)
	defer bus.Shutdown(context.Background())

	m := New(bus)
	defer m.Detach()

	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(events.SideBuy)))
	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(events.SideBuy)))
	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(events.SideSell)))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.tradesTotal.WithLabelValues("buy")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.tradesTotal.WithLabelValues("sell")))
}

func TestLifecycleCounters(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 16)
	defer bus.Shutdown(context.Background())

	m := New(bus)
	defer m.Detach()

	require.NoError(t, bus.PublishSync(context.Background(), events.InstrumentCreatedEvent{
		BaseEvent:    events.BaseEvent{EventType: events.InstrumentCreated, EventTime: time.Now()},
		InstrumentID: "inst-1",
		Creator:      "carol",
		InitialPrice: uint256.NewInt(1),
		Slope:        uint256.NewInt(1),
		CreateFee:    uint256.NewInt(0),
	}))
	require.NoError(t, bus.PublishSync(context.Background(), events.InstrumentGraduatedEvent{
		BaseEvent:       events.BaseEvent{EventType: events.InstrumentGraduated, EventTime: time.Now()},
		InstrumentID:    "inst-1",
		ReserveMoved:    uint256.NewInt(100),
		TokensAllocated: uint256.NewInt(10),
		FinalSoldSupply: uint256.NewInt(10),
		Venue:           "venue-1",
	}))
	require.NoError(t, bus.PublishSync(context.Background(), events.AccessStateChangedEvent{
		BaseEvent: events.BaseEvent{EventType: events.AccessStateChanged, EventTime: time.Now()},
		Actor:     "owner",
		Change:    "paused",
		Paused:    true,
	}))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.instrumentsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.graduationsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.accessChanges.WithLabelValues("paused")))
}

func TestRecordFailure(t *testing.T) {
	bus := events.NewBus(zaptest.NewLogger(t), 16)
	defer bus.Shutdown(context.Background())

	m := New(bus)
	defer m.Detach()

	m.RecordFailure("buy")
	m.RecordFailure("buy")
	m.RecordFailure("sell")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.failuresTotal.WithLabelValues("buy")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.failuresTotal.WithLabelValues("sell")))
}

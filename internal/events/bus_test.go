package events

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func tradeEvent(id string) TradeCompletedEvent {
	return TradeCompletedEvent{
		BaseEvent:    BaseEvent{EventType: TradeCompleted, EventTime: time.Now().UTC()},
		InstrumentID: id,
		Side:         SideBuy,
		Actor:        "buyer-1",
		GrossPayment: uint256.NewInt(1_000_000_000),
		TokenAmount:  uint256.NewInt(42),
		SoldSupply:   uint256.NewInt(42),
		NetReserve:   uint256.NewInt(987_500_000),
	}
}

func TestBusPublishSync(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var seen atomic.Int32
	bus.SubscribeFunc(TradeCompleted, func(_ context.Context, e Event) error {
		trade, ok := e.(TradeCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, "inst-1", trade.InstrumentID)
		seen.Add(1)
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent("inst-1")))
	assert.Equal(t, int32(1), seen.Load())
}

func TestBusAsyncDelivery(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)

	done := make(chan struct{})
	bus.SubscribeFunc(TradeCompleted, func(_ context.Context, _ Event) error {
		close(done)
		return nil
	})

	require.NoError(t, bus.Publish(tradeEvent("inst-1")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async event was not delivered")
	}
	require.NoError(t, bus.Shutdown(context.Background()))
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var seen atomic.Int32
	sub := bus.SubscribeFunc(TradeCompleted, func(_ context.Context, _ Event) error {
		seen.Add(1)
		return nil
	})
	sub.Unsubscribe()

	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent("inst-1")))
	assert.Equal(t, int32(0), seen.Load())
}

func TestBusTypeIsolation(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var trades, graduations atomic.Int32
	bus.SubscribeFunc(TradeCompleted, func(_ context.Context, _ Event) error {
		trades.Add(1)
		return nil
	})
	bus.SubscribeFunc(InstrumentGraduated, func(_ context.Context, _ Event) error {
		graduations.Add(1)
		return nil
	})

	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent("inst-1")))
	assert.Equal(t, int32(1), trades.Load())
	assert.Equal(t, int32(0), graduations.Load())
}

func TestBusRejectsAfterShutdown(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)
	require.NoError(t, bus.Shutdown(context.Background()))

	assert.Error(t, bus.Publish(tradeEvent("inst-1")))
}

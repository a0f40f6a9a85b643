// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/rabbit-labs/launchpad/internal/storage/models"
)

// Storage is the engine's durable audit trail. Rows are written from bus
// events after settlement, so a storage failure can never affect a trade.
type Storage interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	ListTrades(ctx context.Context, instrumentID string, limit, offset int) ([]*models.Trade, error)
	ListTradesByActor(ctx context.Context, actor string, limit, offset int) ([]*models.Trade, error)

	// Instruments
	SaveInstrument(ctx context.Context, row *models.InstrumentRow) error
	GetInstrument(ctx context.Context, instrumentID string) (*models.InstrumentRow, error)

	// Graduations
	SaveGraduation(ctx context.Context, grad *models.Graduation) error

	// Schema
	RunMigrations() error
	Close() error
}

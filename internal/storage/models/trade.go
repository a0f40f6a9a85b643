// internal/storage/models/trade.go
package models

import "time"

// Trade is the durable record of one settled buy or sell. Amount columns are
// decimal strings because 256-bit values do not fit any native type.
type Trade struct {
	BaseModel
	InstrumentID string    `gorm:"index;not null;type:varchar(64)"`
	Side         string    `gorm:"not null;type:varchar(4)"`
	Actor        string    `gorm:"index;not null;type:varchar(128)"`
	GrossPayment string    `gorm:"not null;type:numeric(78,0)"`
	NetPayment   string    `gorm:"not null;type:numeric(78,0)"`
	PlatformFee  string    `gorm:"not null;type:numeric(78,0)"`
	CreatorFee   string    `gorm:"not null;type:numeric(78,0)"`
	TokenAmount  string    `gorm:"not null;type:numeric(78,0)"`
	SoldSupply   string    `gorm:"not null;type:numeric(78,0)"`
	NetReserve   string    `gorm:"not null;type:numeric(78,0)"`
	OccurredAt   time.Time `gorm:"index;not null"`
}

// internal/storage/models/instrument.go
package models

import "time"

// InstrumentRow mirrors the instrument-created record.
type InstrumentRow struct {
	BaseModel
	InstrumentID string    `gorm:"unique;not null;type:varchar(64)"`
	Creator      string    `gorm:"index;not null;type:varchar(128)"`
	Name         string    `gorm:"not null;type:varchar(32)"`
	Symbol       string    `gorm:"not null;type:varchar(10)"`
	MetadataRef  string    `gorm:"type:text"`
	InitialPrice string    `gorm:"not null;type:numeric(78,0)"`
	Slope        string    `gorm:"not null;type:numeric(78,0)"`
	CreateFee    string    `gorm:"not null;type:numeric(78,0)"`
	MintedAt     time.Time `gorm:"index;not null"`
}

// Graduation is the one graduation record an instrument ever gets.
type Graduation struct {
	BaseModel
	InstrumentID    string    `gorm:"unique;not null;type:varchar(64)"`
	Actor           string    `gorm:"not null;type:varchar(128)"`
	ReserveMoved    string    `gorm:"not null;type:numeric(78,0)"`
	TokensAllocated string    `gorm:"not null;type:numeric(78,0)"`
	FinalSoldSupply string    `gorm:"not null;type:numeric(78,0)"`
	Venue           string    `gorm:"not null;type:varchar(128)"`
	OccurredAt      time.Time `gorm:"index;not null"`
}

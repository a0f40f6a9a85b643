// internal/ledger/instrument.go
package ledger

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/rabbit-labs/launchpad/internal/curve"
)

// Instrument is the durable per-token record. Identity and curve parameters
// are fixed at creation; SoldSupply and NetReserve move only through the
// trade executor and the graduation controller.
type Instrument struct {
	ID          string
	Creator     string
	Name        string
	Symbol      string
	MetadataRef string

	InitialPrice *uint256.Int
	Slope        *uint256.Int

	SoldSupply *uint256.Int
	NetReserve *uint256.Int

	Graduated   bool
	CreatedAt   time.Time
	GraduatedAt time.Time
}

// Curve returns the price function captured at creation.
func (i *Instrument) Curve() curve.Linear {
	return curve.Linear{InitialPrice: i.InitialPrice, Slope: i.Slope}
}

// Snapshot deep-copies the mutable fields so a failed trade can be unwound.
type Snapshot struct {
	SoldSupply  *uint256.Int
	NetReserve  *uint256.Int
	Graduated   bool
	GraduatedAt time.Time
}

func (i *Instrument) Snapshot() Snapshot {
	return Snapshot{
		SoldSupply:  new(uint256.Int).Set(i.SoldSupply),
		NetReserve:  new(uint256.Int).Set(i.NetReserve),
		Graduated:   i.Graduated,
		GraduatedAt: i.GraduatedAt,
	}
}

func (i *Instrument) Restore(s Snapshot) {
	i.SoldSupply.Set(s.SoldSupply)
	i.NetReserve.Set(s.NetReserve)
	i.Graduated = s.Graduated
	i.GraduatedAt = s.GraduatedAt
}

// Clone returns a detached copy safe to hand to read-only callers.
func (i *Instrument) Clone() *Instrument {
	c := *i
	c.InitialPrice = new(uint256.Int).Set(i.InitialPrice)
	c.Slope = new(uint256.Int).Set(i.Slope)
	c.SoldSupply = new(uint256.Int).Set(i.SoldSupply)
	c.NetReserve = new(uint256.Int).Set(i.NetReserve)
	return &c
}

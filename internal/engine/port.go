// internal/engine/port.go
package engine

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/rabbit-labs/launchpad/internal/ledger"
)

// ReservePort is the engine's only outward interaction: pushing reserve
// asset to creators, the treasury, sellers and the graduation venue. It runs
// strictly after all ledger mutations of a call ("effects before external
// interaction"), and a hostile implementation that calls back into the
// engine hits the per-instrument lock.
type ReservePort interface {
	// Transfer pushes amount of the reserve asset to a recipient.
	Transfer(ctx context.Context, to string, amount *uint256.Int) error
	// Reclaim reverses an earlier Transfer of the same operation when a
	// later step fails, keeping settlement all-or-nothing.
	Reclaim(ctx context.Context, from string, amount *uint256.Int) error
}

// BookPort settles transfers against the in-process balance book.
type BookPort struct {
	book *ledger.Book
}

func NewBookPort(book *ledger.Book) *BookPort {
	return &BookPort{book: book}
}

func (p *BookPort) Transfer(_ context.Context, to string, amount *uint256.Int) error {
	p.book.CreditReserve(to, amount)
	return nil
}

func (p *BookPort) Reclaim(_ context.Context, from string, amount *uint256.Int) error {
	return p.book.DebitReserve(from, amount)
}

// transfer is one queued external payout.
type transfer struct {
	to     string
	amount *uint256.Int
}

// runTransfers executes payouts in order. On failure it reclaims the ones
// already made so the caller can restore ledger state and abort cleanly.
func runTransfers(ctx context.Context, port ReservePort, outs []transfer) error {
	done := make([]transfer, 0, len(outs))
	for _, out := range outs {
		if out.amount.IsZero() {
			continue
		}
		if err := port.Transfer(ctx, out.to, out.amount); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				// Reclaim failures are unrecoverable here; the port contract
				// requires Reclaim of a completed Transfer to succeed.
				_ = port.Reclaim(ctx, done[i].to, done[i].amount)
			}
			return err
		}
		done = append(done, out)
	}
	return nil
}

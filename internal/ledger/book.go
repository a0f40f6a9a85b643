// internal/ledger/book.go
package ledger

import (
	"errors"
	"sync"

	"github.com/holiman/uint256"
)

var (
	ErrInsufficientTokens  = errors.New("insufficient token balance")
	ErrInsufficientReserve = errors.New("insufficient reserve balance")
)

// Book tracks reserve-asset credits per identity and curve-token holdings
// per instrument per identity. It is the settlement layer behind the trade
// executor's transfer port.
type Book struct {
	mu      sync.Mutex
	reserve map[string]*uint256.Int
	tokens  map[string]map[string]*uint256.Int
}

func NewBook() *Book {
	return &Book{
		reserve: make(map[string]*uint256.Int),
		tokens:  make(map[string]map[string]*uint256.Int),
	}
}

// ReserveBalance returns the accumulated reserve credits of an identity.
func (b *Book) ReserveBalance(identity string) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bal, ok := b.reserve[identity]; ok {
		return new(uint256.Int).Set(bal)
	}
	return uint256.NewInt(0)
}

func (b *Book) CreditReserve(identity string, amount *uint256.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.reserve[identity]
	if !ok {
		bal = uint256.NewInt(0)
		b.reserve[identity] = bal
	}
	bal.Add(bal, amount)
}

func (b *Book) DebitReserve(identity string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.reserve[identity]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientReserve
	}
	bal.Sub(bal, amount)
	return nil
}

// TokenBalance returns an identity's holding of one instrument's tokens.
func (b *Book) TokenBalance(instrumentID, identity string) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if holders, ok := b.tokens[instrumentID]; ok {
		if bal, ok := holders[identity]; ok {
			return new(uint256.Int).Set(bal)
		}
	}
	return uint256.NewInt(0)
}

func (b *Book) CreditTokens(instrumentID, identity string, amount *uint256.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	holders, ok := b.tokens[instrumentID]
	if !ok {
		holders = make(map[string]*uint256.Int)
		b.tokens[instrumentID] = holders
	}
	bal, ok := holders[identity]
	if !ok {
		bal = uint256.NewInt(0)
		holders[identity] = bal
	}
	bal.Add(bal, amount)
}

func (b *Book) DebitTokens(instrumentID, identity string, amount *uint256.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	holders, ok := b.tokens[instrumentID]
	if !ok {
		return ErrInsufficientTokens
	}
	bal, ok := holders[identity]
	if !ok || bal.Lt(amount) {
		return ErrInsufficientTokens
	}
	bal.Sub(bal, amount)
	return nil
}

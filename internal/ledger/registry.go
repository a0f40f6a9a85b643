// internal/ledger/registry.go
package ledger

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrUnknownInstrument   = errors.New("unknown instrument")
	ErrDuplicateInstrument = errors.New("instrument already registered")
	ErrInstrumentBusy      = errors.New("instrument is locked by an in-flight trade")
)

// Registry is the arena holding every instrument, keyed by id. All mutation
// happens through Acquire, which also carries the per-instrument reentrancy
// lock: while a trade is in flight the instrument is tagged busy and any
// nested or concurrent call on the same id is rejected, not queued.
type Registry struct {
	mu          sync.Mutex
	instruments map[string]*Instrument
	order       []string
	busy        map[string]bool
	logger      *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		instruments: make(map[string]*Instrument),
		busy:        make(map[string]bool),
		logger:      logger.Named("registry"),
	}
}

// Add registers a freshly created instrument.
func (r *Registry) Add(inst *Instrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instruments[inst.ID]; ok {
		return ErrDuplicateInstrument
	}
	r.instruments[inst.ID] = inst
	r.order = append(r.order, inst.ID)

	r.logger.Debug("Instrument registered",
		zap.String("instrument_id", inst.ID),
		zap.String("symbol", inst.Symbol))
	return nil
}

// Get returns a detached copy for read-only callers.
func (r *Registry) Get(id string) (*Instrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instruments[id]
	if !ok {
		return nil, ErrUnknownInstrument
	}
	return inst.Clone(), nil
}

// IDs returns every instrument id in creation order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Acquire hands out the live instrument under its busy flag. The returned
// release must be called exactly once; until then every other Acquire on the
// same id fails with ErrInstrumentBusy. Different instruments are independent.
func (r *Registry) Acquire(id string) (*Instrument, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instruments[id]
	if !ok {
		return nil, nil, ErrUnknownInstrument
	}
	if r.busy[id] {
		r.logger.Warn("Rejected nested call on busy instrument",
			zap.String("instrument_id", id))
		return nil, nil, ErrInstrumentBusy
	}
	r.busy[id] = true

	release := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.busy, id)
	}
	return inst, release, nil
}

// Len reports the number of registered instruments.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instruments)
}

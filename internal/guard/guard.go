// internal/guard/guard.go
package guard

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rabbit-labs/launchpad/internal/events"
)

var (
	ErrNotOwner        = errors.New("caller is not the owner")
	ErrPaused          = errors.New("trading is paused")
	ErrEmergency       = errors.New("emergency mode is active")
	ErrAlreadyPaused   = errors.New("already paused")
	ErrNotPaused       = errors.New("not paused")
	ErrNoEmergency     = errors.New("emergency mode is not active")
	ErrCooldownActive  = errors.New("emergency cool-down has not elapsed")
	ErrNoPendingChange = errors.New("no pending treasury change")
	ErrDelayNotElapsed = errors.New("governance delay has not elapsed")
	ErrInvalidIdentity = errors.New("invalid identity")
)

// pendingChange is a staged governance value awaiting its mandatory delay.
type pendingChange struct {
	value       string
	requestedAt time.Time
}

// Guard holds the process-wide circuit breakers and the two-step delayed
// treasury change. Every trade-mutating entry point consults it before
// touching any ledger state; read-only queries never do.
type Guard struct {
	mu          sync.Mutex
	owner       string
	treasury    string
	paused      bool
	emergency   bool
	emergencyAt time.Time
	pending     *pendingChange

	emergencyCooldown time.Duration
	treasuryDelay     time.Duration

	now     func() time.Time
	logger  *zap.Logger
	publish func(events.Event)
}

// Config carries the immutable guard parameters.
type Config struct {
	Owner             string
	Treasury          string
	EmergencyCooldown time.Duration
	TreasuryDelay     time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
	// Publish receives access-state-changed records; may be nil.
	Publish func(events.Event)
}

func New(cfg Config, logger *zap.Logger) (*Guard, error) {
	if cfg.Owner == "" || cfg.Treasury == "" {
		return nil, ErrInvalidIdentity
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	publish := cfg.Publish
	if publish == nil {
		publish = func(events.Event) {}
	}
	return &Guard{
		owner:             cfg.Owner,
		treasury:          cfg.Treasury,
		emergencyCooldown: cfg.EmergencyCooldown,
		treasuryDelay:     cfg.TreasuryDelay,
		now:               now,
		logger:            logger.Named("guard"),
		publish:           publish,
	}, nil
}

// RequireTradable rejects the call if any circuit breaker is engaged.
func (g *Guard) RequireTradable() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.emergency {
		return ErrEmergency
	}
	if g.paused {
		return ErrPaused
	}
	return nil
}

// Treasury returns the current fee recipient.
func (g *Guard) Treasury() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.treasury
}

// Paused reports whether trading is blocked.
func (g *Guard) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// EmergencyMode reports whether emergency mode is engaged.
func (g *Guard) EmergencyMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emergency
}

func (g *Guard) requireOwner(caller string) error {
	if caller != g.owner {
		return ErrNotOwner
	}
	return nil
}

// RequireOwner rejects callers other than the configured owner.
func (g *Guard) RequireOwner(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requireOwner(caller)
}

// Pause blocks all trade-mutating entry points.
func (g *Guard) Pause(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if g.paused {
		return ErrAlreadyPaused
	}
	g.paused = true
	g.logger.Warn("Trading paused", zap.String("caller", caller))
	g.emitLocked(caller, "paused")
	return nil
}

// Unpause re-enables trading. It does not clear emergency mode.
func (g *Guard) Unpause(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if !g.paused {
		return ErrNotPaused
	}
	if g.emergency {
		return ErrEmergency
	}
	g.paused = false
	g.logger.Info("Trading unpaused", zap.String("caller", caller))
	g.emitLocked(caller, "unpaused")
	return nil
}

// ActivateEmergencyMode pauses trading and records the activation time for
// the mandatory cool-down.
func (g *Guard) ActivateEmergencyMode(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if g.emergency {
		return ErrEmergency
	}
	g.emergency = true
	g.paused = true
	g.emergencyAt = g.now()
	g.logger.Error("Emergency mode activated",
		zap.String("caller", caller),
		zap.Time("activated_at", g.emergencyAt))
	g.emitLocked(caller, "emergency_activated")
	return nil
}

// DeactivateEmergencyMode clears emergency mode once the cool-down has
// elapsed. The delay is a deliberate brake against rushed recovery from a
// compromised owner. Trading stays paused until an explicit Unpause.
func (g *Guard) DeactivateEmergencyMode(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if !g.emergency {
		return ErrNoEmergency
	}
	if !delayElapsed(g.now(), g.emergencyAt, g.emergencyCooldown) {
		return ErrCooldownActive
	}
	g.emergency = false
	g.logger.Warn("Emergency mode deactivated", zap.String("caller", caller))
	g.emitLocked(caller, "emergency_deactivated")
	return nil
}

// InitiateTreasuryChange stages a new treasury identity. A second initiation
// before completion overwrites the staged value and restarts the delay.
func (g *Guard) InitiateTreasuryChange(caller, newTreasury string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if newTreasury == "" {
		return ErrInvalidIdentity
	}
	g.pending = &pendingChange{value: newTreasury, requestedAt: g.now()}
	g.logger.Info("Treasury change initiated",
		zap.String("caller", caller),
		zap.String("pending_treasury", newTreasury))
	g.emitLocked(caller, "treasury_change_initiated")
	return nil
}

// CompleteTreasuryChange applies the staged treasury once the delay has
// elapsed. The staged record is consumed, so completion happens at most once.
func (g *Guard) CompleteTreasuryChange(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if g.pending == nil {
		return ErrNoPendingChange
	}
	if !delayElapsed(g.now(), g.pending.requestedAt, g.treasuryDelay) {
		return ErrDelayNotElapsed
	}
	g.treasury = g.pending.value
	g.pending = nil
	g.logger.Info("Treasury change completed",
		zap.String("caller", caller),
		zap.String("treasury", g.treasury))
	g.emitLocked(caller, "treasury_changed")
	return nil
}

// delayElapsed is the pure delay check behind both governance brakes.
func delayElapsed(now, since time.Time, delay time.Duration) bool {
	return !now.Before(since.Add(delay))
}

func (g *Guard) emitLocked(actor, change string) {
	g.publish(events.AccessStateChangedEvent{
		BaseEvent: events.BaseEvent{EventType: events.AccessStateChanged, EventTime: g.now()},
		Actor:     actor,
		Change:    change,
		Paused:    g.paused,
		Emergency: g.emergency,
		Treasury:  g.treasury,
	})
}

package infra

import (
	"errors"
	"sync"
	"time"

	"attendance/internal/clock"
)

// CircuitBreaker guards the SMTP relay. Consecutive relay failures open it so
// email jobs fail fast; after OpenTimeout one trial call at a time is let through
// and SuccessThreshold trial successes close it again.
//
// Only relay failures count against it. Errors the relay answered with on
// behalf of one message (bad recipient, rejected content) are returned to the
// caller but leave the breaker's view of the relay healthy.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	}
	return "unknown"
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int           // relay failures in a row that open the breaker (default 5)
	SuccessThreshold int           // trial successes that close it again (default 2)
	OpenTimeout      time.Duration // time spent open before a trial call (default 60s)
	// Permanent reports errors that concern one message rather than the relay.
	// Defaults to IsPermanentMailError.
	Permanent func(error) bool
}

// DefaultCBConfig returns the settings used for the SMTP relay.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, OpenTimeout: time.Minute}
}

type CircuitBreaker struct {
	cfg   CircuitBreakerConfig
	clock clock.Clock

	mu       sync.Mutex
	state    CBState
	failures int
	trialsOK int
	trialing bool
	openedAt time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig, clk clock.Clock) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.Permanent == nil {
		cfg.Permanent = IsPermanentMailError
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &CircuitBreaker{cfg: cfg, clock: clk}
}

func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.current()
}

// current moves an expired Open breaker to HalfOpen. Caller holds mu.
func (cb *CircuitBreaker) current() CBState {
	if cb.state == CBOpen && !cb.clock.Now().Before(cb.openedAt.Add(cb.cfg.OpenTimeout)) {
		cb.state = CBHalfOpen
		cb.trialsOK = 0
		cb.trialing = false
	}
	return cb.state
}

// Execute runs fn unless the breaker is open or a half-open trial call is already in flight.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.current() {
	case CBOpen:
		return ErrCircuitOpen
	case CBHalfOpen:
		if cb.trialing {
			return ErrCircuitOpen
		}
		cb.trialing = true
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	relayDown := err != nil && !cb.cfg.Permanent(err)

	if cb.state == CBHalfOpen {
		cb.trialing = false
		if relayDown {
			cb.trip()
			return
		}
		if cb.trialsOK++; cb.trialsOK >= cb.cfg.SuccessThreshold {
			cb.state = CBClosed
			cb.failures = 0
		}
		return
	}

	if !relayDown {
		cb.failures = 0
		return
	}
	if cb.failures++; cb.failures >= cb.cfg.FailureThreshold {
		cb.trip()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = cb.clock.Now()
	cb.failures = 0
	cb.trialsOK = 0
}

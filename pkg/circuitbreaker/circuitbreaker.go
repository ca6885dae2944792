// Package circuitbreaker guards calls to an unreliable dependency.
//
// A breaker starts CLOSED and counts outcomes inside a rolling Interval.
// When ReadyToTrip says so it goes OPEN and rejects calls with ErrOpenState
// for Timeout, then HALF_OPEN lets up to MaxRequests probes through: one
// success closes it again, one failure reopens it.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config breaker settings.
type Config struct {
	// MaxRequests probes allowed while HALF_OPEN.
	MaxRequests uint32

	// Interval rolling window for the CLOSED counters; zero never resets.
	Interval time.Duration

	// Timeout how long the breaker stays OPEN.
	Timeout time.Duration

	// ReadyToTrip decides on every failure while CLOSED whether to open.
	// Defaults to five consecutive failures.
	ReadyToTrip func(counts Counts) bool
}

// Counts outcome counters of the current window.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate failures / requests.
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) Reset() {
	*c = Counts{}
}

// Requests is already counted in beforeRequest.
func (c *Counts) onSuccess() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	name        string
	maxRequests uint32
	interval    time.Duration
	timeout     time.Duration
	readyToTrip func(counts Counts) bool

	mu            sync.Mutex
	state         State
	generation    uint64 // bumped on every transition
	counts        Counts
	expiry        time.Time
	onStateChange func(name string, from State, to State)
}

// ErrOpenState returned without calling the guarded function.
var ErrOpenState = errors.New("circuit breaker is open")

// NewCircuitBreaker creates a CLOSED breaker.
//
//	cb := NewCircuitBreaker("notify", Config{
//	    MaxRequests: 1,
//	    Interval:    time.Minute,
//	    Timeout:     30 * time.Second,
//	})
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	readyToTrip := config.ReadyToTrip
	if readyToTrip == nil {
		readyToTrip = func(counts Counts) bool { return counts.ConsecutiveFailures >= 5 }
	}
	maxRequests := config.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1
	}

	cb := &CircuitBreaker{
		name:          name,
		maxRequests:   maxRequests,
		interval:      config.Interval,
		timeout:       config.Timeout,
		readyToTrip:   readyToTrip,
		state:         StateClosed,
		onStateChange: func(string, State, State) {},
	}
	if config.Interval > 0 {
		cb.expiry = time.Now().Add(config.Interval)
	}
	return cb
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// SetStateChangeCallback registers fn for transitions (logging, metrics).
// fn runs with the breaker lock held and must not call back into the breaker.
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute runs req unless the breaker is open.
// It returns req's error, or ErrOpenState when req was not called.
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		return err
	}

	err = req()

	cb.afterRequest(generation, err == nil)
	return err
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.currentState(time.Now())

	if state == StateOpen {
		return generation, ErrOpenState
	}
	if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)
	if generation != before {
		// result belongs to a window that is already gone
		return
	}

	if success {
		cb.counts.onSuccess()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.onFailure()
	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// currentState applies time based transitions: window reset while CLOSED and
// OPEN -> HALF_OPEN once the timeout elapsed.
func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.Reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts.Reset()

	switch state {
	case StateClosed:
		if cb.interval > 0 {
			cb.expiry = now.Add(cb.interval)
		} else {
			cb.expiry = time.Time{}
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.currentState(time.Now())
	return state
}

// Counts snapshot of the current window.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}

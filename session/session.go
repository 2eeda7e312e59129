// Package session implements the per-connection state machine: handshake,
// pending-input validation, ingress rate limiting, and the
// NEW→HANDSHAKING→ACTIVE→CLOSING→CLOSED lifecycle. It is the boundary
// between an untrusted transport and the tick-thread-exclusive world
// state — its only world mutation is the player a handshake creates;
// Drain returns replies plus interaction and fire requests, and
// MoveIntent exposes the validated sim.MoveIntent the tick loop applies
// itself.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/sim"
	"github.com/kreid06/brigantine-core/world"
)

// State is one of the five connection lifecycle states.
type State int

const (
	StateNew State = iota
	StateHandshaking
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Tier is a per-tick input-processing cost classification (IDLE /
// BACKGROUND / NORMAL / CRITICAL) — a runtime optimization hint, not a
// contract.
type Tier int

const (
	TierIdle Tier = iota
	TierBackground
	TierNormal
	TierCritical
)

// Config holds the timeouts and rate limit knobs callers may configure.
type Config struct {
	HandshakeTimeout   time.Duration
	DisconnectTimeout  time.Duration
	MaxNameBytes       int
	InputsPerSecond    float64
	InputBurst         int
	MaxInteractDistance fixedpoint.Fixed
}

// DefaultConfig holds the stock timeouts: a 5s handshake window, a 15s
// disconnect timeout, and names truncated to 31 bytes.
var DefaultConfig = Config{
	HandshakeTimeout:   5 * time.Second,
	DisconnectTimeout:  15 * time.Second,
	MaxNameBytes:       31,
	InputsPerSecond:    20,
	InputBurst:         10,
	MaxInteractDistance: fixedpoint.FromFloat(50.0),
}

// PendingInput is the small per-tick input record: the last validated
// movement intent, facing, action bits, last accepted sequence number,
// last input timestamp, and an optional cannon aim angle already in
// ship-local radians.
type PendingInput struct {
	Movement     fixedpoint.Vec2
	Facing       fixedpoint.Fixed
	Actions      sim.ActionBits
	LastSequence uint32
	// HasSequence distinguishes "no input_frame accepted yet" from a
	// last accepted sequence of 0, so sequence 0 cannot be replayed.
	HasSequence  bool
	LastInputAt  time.Time
	CannonAim    fixedpoint.Fixed
	HasCannonAim bool
}

// Session is one client's connection state. The tick loop owns the only
// reference to the map of live Sessions; a Session's own fields are only
// ever written from the tick goroutine after ingress messages have been
// validated and queued — see Drain.
type Session struct {
	ID     uint32
	Player world.EntityID

	State State
	cfg   Config

	createdAt   time.Time
	handshakeBy time.Time
	lastInputAt time.Time
	limiter     *rate.Limiter

	pending PendingInput

	// inboxMu guards inbox: Enqueue is called from the transport's I/O
	// goroutine while Drain is called from the tick goroutine, the one
	// place a Session's fields are touched from two contexts.
	inboxMu sync.Mutex
	inbox   []ClientMessage

	protocolErrorCount       int
	protocolErrorWindowStart time.Time

	// pendingProtocolErrors counts malformed frames observed by the
	// transport's I/O goroutine (failed parse, unknown type) before they
	// ever reach the inbox. Drain folds it into the windowed counter on
	// the tick goroutine, which is the only place State may change.
	pendingProtocolErrors atomic.Int32

	Tier Tier

	// transportClosed is set by the transport's I/O goroutine when the
	// underlying connection dies; CheckTimeouts (tick goroutine) reads it
	// on its next pass rather than the transport writing s.State
	// directly, since State is otherwise tick-goroutine-exclusive.
	transportClosed atomic.Bool
}

// New creates a session in StateNew. now is passed in rather than read
// from time.Now() so the tick loop's clock abstraction is the only
// wall-clock touchpoint.
func New(id uint32, cfg Config, now time.Time) *Session {
	return &Session{
		ID:          id,
		State:       StateNew,
		cfg:         cfg,
		createdAt:   now,
		handshakeBy: now.Add(cfg.HandshakeTimeout),
		lastInputAt: now,
		limiter:     rate.NewLimiter(rate.Limit(cfg.InputsPerSecond), cfg.InputBurst),
	}
}

// Enqueue appends a raw client message to the session's inbox, to be
// validated and applied the next time the tick loop calls Drain.
// Enqueue neither blocks nor drops, and the inbox has no size limit:
// Drain takes at most maxInbox messages per tick and leaves the rest
// queued for later ticks.
func (s *Session) Enqueue(msg ClientMessage) {
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, msg)
	s.inboxMu.Unlock()
}

// CheckTimeouts advances CLOSING on a handshake or heartbeat timeout:
// the ACTIVE→CLOSING transition and the implicit HANDSHAKING timeout.
func (s *Session) CheckTimeouts(now time.Time) {
	if s.transportClosed.Load() && s.State != StateClosed {
		s.State = StateClosing
		return
	}
	switch s.State {
	case StateNew, StateHandshaking:
		if now.After(s.handshakeBy) {
			s.State = StateClosing
		}
	case StateActive:
		if now.Sub(s.lastInputAt) > s.cfg.DisconnectTimeout {
			s.State = StateClosing
		}
	}
}

// MarkTransportClosed records that the underlying connection is gone.
// Safe to call from any goroutine; takes effect on the next
// CheckTimeouts pass.
func (s *Session) MarkTransportClosed() {
	s.transportClosed.Store(true)
}

// NoteProtocolError records a malformed frame the transport could not
// parse into a ClientMessage. Safe to call from the adapter's I/O
// goroutine; the count is applied against the session's protocol-error
// threshold on the next Drain.
func (s *Session) NoteProtocolError() {
	s.pendingProtocolErrors.Add(1)
}

// IdleFor reports how long the session has gone without a valid ingress
// message, the activity half of the IDLE/BACKGROUND/NORMAL/CRITICAL
// classification.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.lastInputAt)
}

// MoveIntent returns the sim package's view of this session's current
// pending input, for the tick loop to apply to the player/ship this
// session controls.
func (s *Session) MoveIntent() sim.MoveIntent {
	return sim.MoveIntent{
		Movement:     s.pending.Movement,
		Facing:       s.pending.Facing,
		Actions:      s.pending.Actions,
		CannonAim:    s.pending.CannonAim,
		HasCannonAim: s.pending.HasCannonAim,
	}
}

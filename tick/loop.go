// Package tick owns the fixed-rate scheduler: each tick drains every
// session's inbox, applies validated intents and explicit actions to
// world.World, steps the simulation, rebuilds the AOI grid and
// subscriptions, encodes and sends per-session snapshots, and records
// tick timing for the LOD governor. It is the only package that ties
// session, sim, aoi, snapshot, and transport together, routing a
// per-session tiered delta stream rather than one shared broadcast.
package tick

import (
	"log"
	"time"

	"github.com/kreid06/brigantine-core/aoi"
	"github.com/kreid06/brigantine-core/config"
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/perf"
	"github.com/kreid06/brigantine-core/prng"
	"github.com/kreid06/brigantine-core/session"
	"github.com/kreid06/brigantine-core/sim"
	"github.com/kreid06/brigantine-core/snapshot"
	"github.com/kreid06/brigantine-core/transport"
	"github.com/kreid06/brigantine-core/world"
)

// Loop is the assembled tick scheduler: everything it touches is either
// owned outright (World, rng, per-session AOI/encoder state) or a
// shared handle into another package's concurrency-safe surface
// (Sessions, Registry).
type Loop struct {
	World    *world.World
	Sessions *session.Manager
	Registry *transport.Registry

	cfg    config.Config
	dt     fixedpoint.Fixed
	period time.Duration
	rng    *prng.Source

	grid          *aoi.Grid
	subscriptions map[uint32]*aoi.Subscription
	encoders      map[uint32]*snapshot.Encoder

	Monitor *perf.Monitor

	// OnTeardown, if set, is invoked after a session's world/AOI state is
	// torn down, so transport adapters with their own per-session
	// bookkeeping (the UDP address maps) can release it.
	OnTeardown func(sessionID uint32)
}

// NewLoop assembles a Loop from a populated world and the shared
// session/transport state main.go wires together.
func NewLoop(w *world.World, sessions *session.Manager, registry *transport.Registry, cfg config.Config) *Loop {
	return &Loop{
		World:         w,
		Sessions:      sessions,
		Registry:      registry,
		cfg:           cfg,
		dt:            fixedpoint.Div(fixedpoint.FromInt(1), fixedpoint.FromInt(cfg.TickRate)),
		period:        time.Second / time.Duration(cfg.TickRate),
		rng:           prng.New(cfg.Seed),
		grid:          aoi.NewGrid(),
		subscriptions: make(map[uint32]*aoi.Subscription),
		encoders:      make(map[uint32]*snapshot.Encoder),
		Monitor:       perf.NewMonitor(time.Second / time.Duration(cfg.TickRate)),
	}
}

// Run drives the tick loop until stop is closed, with every phase timed
// for perf.Monitor, which records sim/AOI/snapshot/total subtimings
// every tick.
func (l *Loop) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			l.runOnce(time.Now())
		}
	}
}

func (l *Loop) runOnce(now time.Time) {
	tickStart := now
	serverTimeMs := uint64(now.UnixMilli())

	sessions := l.teardownAndDrain(now, serverTimeMs)

	simStart := time.Now()
	l.applyActionsAndStep(sessions)
	simDur := time.Since(simStart)

	aoiStart := time.Now()
	l.grid.Rebuild(l.World)
	aoiDur := time.Since(aoiStart)

	snapStart := time.Now()
	l.emitSnapshots(sessions, serverTimeMs)
	snapDur := time.Since(snapStart)

	totalDur := time.Since(tickStart)
	if over := l.Monitor.RecordTick(simDur, aoiDur, snapDur, totalDur); over {
		log.Printf("tick %d over budget: total=%s sim=%s aoi=%s snapshot=%s", l.World.Tick, totalDur, simDur, aoiDur, snapDur)
	}
}

// teardownAndDrain removes any session whose timeout has fired, drains
// every remaining session's inbox (handshake/input/interact/fire/ping),
// and dispatches the resulting interaction and fire requests against
// the world. It returns the sessions still live at the end of the tick,
// in ascending id order, the deterministic iteration order every phase
// of the tick follows.
func (l *Loop) teardownAndDrain(now time.Time, serverTimeMs uint64) []*session.Session {
	all := l.Sessions.All()
	live := make([]*session.Session, 0, len(all))

	for _, s := range all {
		s.CheckTimeouts(now)
		if s.State == session.StateClosing || s.State == session.StateClosed {
			l.teardownSession(s)
			continue
		}
		live = append(live, s)

		l.classify(s, now)
		replies, interactions, fires := s.Drain(l.World, now, serverTimeMs, inboxBudget(s.Tier))
		for _, reply := range replies {
			l.sendReliable(s.ID, reply)
		}
		for _, req := range interactions {
			l.applyInteraction(s, req)
		}
		// Aim is applied before any fire from the same drain, so a
		// cannon_aim followed by cannon_fire in one tick fires along the
		// new aim.
		if s.State == session.StateActive && s.Player != world.NoEntity {
			if intent := s.MoveIntent(); intent.HasCannonAim {
				sim.AimCannons(l.World, s.Player, intent.CannonAim)
			}
		}
		for _, req := range fires {
			l.applyFire(req)
		}
	}
	return live
}

const maxInboxPerTick = 32

// classify reassigns the session's input-processing tier from recent
// activity and proximity to combat. This is a cost knob, not a
// correctness one: an idle session's inbox is drained with a smaller
// per-tick budget, nothing more.
func (l *Loop) classify(s *session.Session, now time.Time) {
	idle := s.IdleFor(now)
	switch {
	case idle > 10*time.Second:
		s.Tier = session.TierIdle
	case idle > 3*time.Second:
		s.Tier = session.TierBackground
	case l.nearCombat(s):
		s.Tier = session.TierCritical
	default:
		s.Tier = session.TierNormal
	}
}

// nearCombat reports whether any live projectile is within the high AOI
// tier radius of the session's player.
func (l *Loop) nearCombat(s *session.Session) bool {
	p, err := l.World.LookupPlayer(s.Player)
	if err != nil {
		return false
	}
	rSq := fixedpoint.Mul(aoi.RadiusHigh, aoi.RadiusHigh)
	for _, pr := range l.World.Projectiles() {
		if fixedpoint.DistanceSq(p.Position, pr.Position) <= rSq {
			return true
		}
	}
	return false
}

func inboxBudget(tier session.Tier) int {
	switch tier {
	case session.TierIdle:
		return 4
	case session.TierBackground:
		return 16
	default:
		return maxInboxPerTick
	}
}

func (l *Loop) teardownSession(s *session.Session) {
	if s.Player != world.NoEntity {
		l.World.Destroy(s.Player)
	}
	delete(l.subscriptions, s.ID)
	delete(l.encoders, s.ID)
	l.Registry.Unregister(s.ID)
	l.Sessions.Remove(s.ID)
	if l.OnTeardown != nil {
		l.OnTeardown(s.ID)
	}
}

func (l *Loop) applyInteraction(s *session.Session, req session.InteractionRequest) {
	mod, err := l.World.LookupModule(world.EntityID(req.ModuleID))
	var reason sim.InteractReason
	if err != nil {
		reason = sim.InteractModuleNotFound
	} else {
		reason = sim.Interact(l.World, req.PlayerID, mod.Ship, world.EntityID(req.ModuleID))
	}
	result := session.ModuleInteractResult{ModuleID: req.ModuleID}
	if reason == sim.InteractOK {
		result.Type = session.MsgModuleInteractSuccess
	} else {
		result.Type = session.MsgModuleInteractFailure
		result.Reason = reason.String()
	}
	l.sendReliable(s.ID, result)
}

func (l *Loop) applyFire(req session.FireRequest) {
	if req.FireAll {
		if p, err := l.World.LookupPlayer(req.PlayerID); err == nil && p.Carrier.HasCarrier() {
			sim.FireShipCannons(l.World, p.Carrier.Ship)
		}
		return
	}
	if len(req.CannonIDs) == 0 {
		sim.FireOneCannon(l.World, req.PlayerID)
		return
	}
	for _, id := range req.CannonIDs {
		sim.FireCannon(l.World, req.PlayerID, world.EntityID(id))
	}
}

// applyActionsAndStep resolves the immediate-action bits (dismount,
// broadside) each active session's pending input carries, builds the
// per-player intent map, and steps the simulation exactly once.
func (l *Loop) applyActionsAndStep(sessions []*session.Session) {
	intents := make(map[world.EntityID]sim.MoveIntent, len(sessions))
	for _, s := range sessions {
		if s.State != session.StateActive || s.Player == world.NoEntity {
			continue
		}
		intent := s.MoveIntent()
		if intent.Actions.Has(sim.ActionDismount) {
			sim.Dismount(l.World, s.Player)
		}
		if intent.Actions.Has(sim.ActionBroadside) {
			if p, err := l.World.LookupPlayer(s.Player); err == nil && p.Carrier.HasCarrier() {
				sim.FireShipCannons(l.World, p.Carrier.Ship)
			}
		}
		intents[s.Player] = intent
	}
	sim.Step(l.World, l.dt, intents, l.rng)
}

// emitSnapshots rescans every active session's AOI subscription and
// sends its encoded frame.
func (l *Loop) emitSnapshots(sessions []*session.Session, serverTimeMs uint64) {
	for _, s := range sessions {
		if s.State != session.StateActive || s.Player == world.NoEntity {
			continue
		}
		sub := l.subscriptionFor(s)
		enc := l.encoderFor(s)

		update := sub.Scan(l.World, l.grid)
		if l.Monitor.Degraded() {
			update = dropLowTier(update)
		}
		origin := l.originFor(s)
		frame := enc.Encode(l.World, update, l.World.Tick, serverTimeMs, origin)

		peer := l.Registry.Get(s.ID)
		if peer == nil {
			continue
		}
		var (
			data []byte
			err  error
		)
		if peer.Encoding == transport.EncodingMsgpack {
			data, err = snapshot.EncodeNative(frame)
		} else {
			data, err = snapshot.EncodeJSON(frame)
		}
		if err != nil {
			continue
		}
		l.Registry.SendSnapshot(s.ID, data)
	}
}

// dropLowTier filters tier-L entities out of this tick's update while
// the degradation pass is active. The subscription's own membership is
// untouched (the filter copies the tier map), so the entities are not
// reported as removals — they simply skip a send.
func dropLowTier(update aoi.Update) aoi.Update {
	filtered := make(map[world.EntityID]aoi.Tier, len(update.Tiers))
	for id, tier := range update.Tiers {
		if tier != aoi.TierLow {
			filtered[id] = tier
		}
	}
	var entered []world.EntityID
	for _, id := range update.Entered {
		if _, ok := filtered[id]; ok {
			entered = append(entered, id)
		}
	}
	return aoi.Update{Tiers: filtered, Entered: entered, Left: update.Left}
}

func (l *Loop) subscriptionFor(s *session.Session) *aoi.Subscription {
	sub, ok := l.subscriptions[s.ID]
	if !ok {
		sub = aoi.NewSubscription(s.Player)
		l.subscriptions[s.ID] = sub
	}
	return sub
}

func (l *Loop) encoderFor(s *session.Session) *snapshot.Encoder {
	enc, ok := l.encoders[s.ID]
	if !ok {
		enc = snapshot.NewEncoder(snapshot.Config{BaselineInterval: l.cfg.BaselineInterval, MaxBaselineTicks: l.cfg.MaxBaselineTicks})
		l.encoders[s.ID] = enc
	}
	return enc
}

// originFor returns the quantization origin for a session's frame: the
// corner of the AOI cell holding the owning player, so the frame header's
// cell coordinates fully determine the origin on the decoding side — the
// single egress conversion site.
func (l *Loop) originFor(s *session.Session) fixedpoint.Vec2 {
	if p, err := l.World.LookupPlayer(s.Player); err == nil {
		return aoi.CellOrigin(aoi.CellOf(p.Position))
	}
	return fixedpoint.Vec2{}
}

func (l *Loop) sendReliable(sessionID uint32, v interface{}) {
	peer := l.Registry.Get(sessionID)
	if peer == nil {
		return
	}
	data, err := transport.Encode(peer.Encoding, v)
	if err != nil {
		return
	}
	l.Registry.SendReliable(sessionID, data)
}

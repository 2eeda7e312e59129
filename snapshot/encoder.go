package snapshot

import (
	"sort"

	"github.com/kreid06/brigantine-core/aoi"
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

// Config holds the two baseline-cadence knobs for the forced-rebaseline
// decision: a snapshot-count interval and a tick-count interval (the
// wall-clock interval expressed in ticks, since the tick loop runs at a
// fixed, known rate).
type Config struct {
	BaselineInterval uint64
	MaxBaselineTicks uint64
}

// DefaultConfig sends a baseline at least every 150 snapshots or 5
// seconds at 30Hz, whichever comes first.
var DefaultConfig = Config{BaselineInterval: 150, MaxBaselineTicks: 150}

// Encoder holds one session's snapshot encoding state across ticks:
// monotonically increasing snapshot/baseline ids, the per-tier "last
// sent" tick used for cadence gating, and the last full quantized
// record sent for each tracked entity, used to compute delta field
// bitsets.
type Encoder struct {
	cfg Config

	snapshotID       uint64
	baselineID       uint64
	sentBaseline     bool
	lastBaselineTick uint64

	lastSentTickForTier map[aoi.Tier]uint64

	ships       map[world.EntityID]ShipRecord
	players     map[world.EntityID]PlayerRecord
	projectiles map[world.EntityID]bool
}

// NewEncoder creates a fresh per-session encoder. Every new session
// starts with sentBaseline == false, guaranteeing its first Encode call
// produces a baseline.
func NewEncoder(cfg Config) *Encoder {
	return &Encoder{
		cfg:                 cfg,
		lastSentTickForTier: make(map[aoi.Tier]uint64),
		ships:               make(map[world.EntityID]ShipRecord),
		players:             make(map[world.EntityID]PlayerRecord),
		projectiles:         make(map[world.EntityID]bool),
	}
}

// Encode produces this tick's frame for one session, given its current
// AOI subscription update. origin is the world-coordinate origin used
// for position quantization — the single egress conversion site.
func (e *Encoder) Encode(w *world.World, update aoi.Update, tick uint64, serverTimeMs uint64, origin fixedpoint.Vec2) Frame {
	e.snapshotID++

	needBaseline := !e.sentBaseline ||
		e.snapshotID-e.baselineID >= e.cfg.BaselineInterval ||
		tick-e.lastBaselineTick >= e.cfg.MaxBaselineTicks

	frame := Frame{
		Type:         TypeGameState,
		SnapshotID:   e.snapshotID,
		Tick:         tick,
		ServerTimeMs: serverTimeMs,
	}
	frame.CellX, frame.CellY = aoi.CellOf(origin)

	for _, id := range update.Left {
		frame.Removed = append(frame.Removed, uint32(id))
		delete(e.ships, id)
		delete(e.players, id)
		delete(e.projectiles, id)
	}
	sort.Slice(frame.Removed, func(i, j int) bool { return frame.Removed[i] < frame.Removed[j] })

	if needBaseline {
		e.encodeBaseline(w, update, tick, origin, &frame)
	} else {
		e.encodeDelta(w, update, tick, origin, &frame)
	}

	frame.Checksum = Checksum16(checksumPayload(frame))
	return frame
}

func (e *Encoder) encodeBaseline(w *world.World, update aoi.Update, tick uint64, origin fixedpoint.Vec2, frame *Frame) {
	frame.Baseline = true
	e.baselineID = e.snapshotID
	e.sentBaseline = true
	e.lastBaselineTick = tick
	for tier := range aoi.CadenceTicks {
		e.lastSentTickForTier[tier] = tick
	}
	frame.BaselineID = frame.SnapshotID

	for _, id := range sortedIDs(update.Tiers) {
		switch {
		case isShip(w, id):
			s, _ := w.LookupShip(id)
			rec := BuildShipRecord(w, s, origin)
			frame.Ships = append(frame.Ships, rec)
			e.ships[id] = rec
		case isPlayer(w, id):
			p, _ := w.LookupPlayer(id)
			rec := BuildPlayerRecord(p, origin)
			frame.Players = append(frame.Players, rec)
			e.players[id] = rec
		case isProjectile(w, id):
			p, _ := w.LookupProjectile(id)
			frame.Projectiles = append(frame.Projectiles, BuildProjectileRecord(p, origin))
			e.projectiles[id] = true
		}
	}
}

func (e *Encoder) encodeDelta(w *world.World, update aoi.Update, tick uint64, origin fixedpoint.Vec2, frame *Frame) {
	frame.Baseline = false
	frame.BaselineID = e.baselineID

	dueTiers := make(map[aoi.Tier]bool)
	for tier, interval := range aoi.CadenceTicks {
		if tick-e.lastSentTickForTier[tier] >= interval {
			dueTiers[tier] = true
			e.lastSentTickForTier[tier] = tick
		}
	}

	entered := make(map[world.EntityID]bool, len(update.Entered))
	for _, id := range update.Entered {
		entered[id] = true
	}

	for _, id := range sortedIDs(update.Tiers) {
		tier := update.Tiers[id]
		full := entered[id]
		due := dueTiers[tier]
		if !full && !due {
			continue
		}
		switch {
		case isShip(w, id):
			s, err := w.LookupShip(id)
			if err != nil {
				continue
			}
			rec := BuildShipRecord(w, s, origin)
			prev, tracked := e.ships[id]
			if full || !tracked {
				frame.Ships = append(frame.Ships, rec)
			} else if changed, delta := diffShip(prev, rec); changed != 0 {
				frame.ShipDeltas = append(frame.ShipDeltas, delta)
			}
			e.ships[id] = rec
		case isPlayer(w, id):
			p, err := w.LookupPlayer(id)
			if err != nil {
				continue
			}
			rec := BuildPlayerRecord(p, origin)
			prev, tracked := e.players[id]
			if full || !tracked {
				frame.Players = append(frame.Players, rec)
			} else if changed, delta := diffPlayer(prev, rec); changed != 0 {
				frame.PlayerDeltas = append(frame.PlayerDeltas, delta)
			}
			e.players[id] = rec
		case isProjectile(w, id):
			p, err := w.LookupProjectile(id)
			if err != nil {
				continue
			}
			frame.Projectiles = append(frame.Projectiles, BuildProjectileRecord(p, origin))
			e.projectiles[id] = true
		}
	}
}

func diffShip(prev, next ShipRecord) (FieldBit, ShipDelta) {
	var changed FieldBit
	d := ShipDelta{ID: next.ID}
	if prev.X != next.X {
		changed |= FieldX
		d.X = next.X
	}
	if prev.Y != next.Y {
		changed |= FieldY
		d.Y = next.Y
	}
	if prev.Rotation != next.Rotation {
		changed |= FieldRotation
		d.Rotation = next.Rotation
	}
	if prev.VelocityX != next.VelocityX {
		changed |= FieldVelX
		d.VelocityX = next.VelocityX
	}
	if prev.VelocityY != next.VelocityY {
		changed |= FieldVelY
		d.VelocityY = next.VelocityY
	}
	if prev.AngularVelocity != next.AngularVelocity {
		changed |= FieldAngularVel
		d.AngularVelocity = next.AngularVelocity
	}
	if prev.Health != next.Health {
		changed |= FieldHealth
		d.Health = next.Health
	}
	d.Changed = changed
	return changed, d
}

func diffPlayer(prev, next PlayerRecord) (FieldBit, PlayerDelta) {
	var changed FieldBit
	d := PlayerDelta{ID: next.ID}
	if prev.WorldX != next.WorldX {
		changed |= FieldX
		d.WorldX = next.WorldX
	}
	if prev.WorldY != next.WorldY {
		changed |= FieldY
		d.WorldY = next.WorldY
	}
	if prev.Rotation != next.Rotation {
		changed |= FieldRotation
		d.Rotation = next.Rotation
	}
	d.Changed = changed
	return changed, d
}

// sortedIDs returns a tier map's keys ascending: entities within one
// snapshot are always serialized in ascending entity id, never map
// iteration order.
func sortedIDs(tiers map[world.EntityID]aoi.Tier) []world.EntityID {
	ids := make([]world.EntityID, 0, len(tiers))
	for id := range tiers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func isShip(w *world.World, id world.EntityID) bool {
	_, err := w.LookupShip(id)
	return err == nil
}

func isPlayer(w *world.World, id world.EntityID) bool {
	_, err := w.LookupPlayer(id)
	return err == nil
}

func isProjectile(w *world.World, id world.EntityID) bool {
	_, err := w.LookupProjectile(id)
	return err == nil
}

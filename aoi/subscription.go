package aoi

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

// Tier is the visibility tier an entity is assigned within a session's
// subscription.
type Tier int

const (
	// TierNone means the entity is not currently visible to the session.
	TierNone Tier = iota
	TierHigh
	TierMid
	TierLow
)

// Radii and send cadences for each tier: R_high (close) at ≈30 Hz,
// R_mid at ≈15 Hz, R_low at ≈5 Hz. Cadences are expressed as a tick
// interval rather than a frequency so the snapshot encoder's gating
// check ("currentTick - lastSentTickForTier[tier] >= interval") is a
// plain integer comparison against the tick rate.
var (
	RadiusHigh = fixedpoint.FromFloat(150.0)
	RadiusMid  = fixedpoint.FromFloat(400.0)
	RadiusLow  = fixedpoint.FromFloat(900.0)

	// CadenceTicks[tier] is how many ticks must elapse, at the default
	// 30Hz tick rate, between sends of an entity at that tier.
	CadenceTicks = map[Tier]uint64{
		TierHigh: 1,
		TierMid:  2,
		TierLow:  6,
	}
)

func tierForDistance(d fixedpoint.Fixed) Tier {
	switch {
	case d <= RadiusHigh:
		return TierHigh
	case d <= RadiusMid:
		return TierMid
	case d <= RadiusLow:
		return TierLow
	default:
		return TierNone
	}
}

// Update is the result of re-scanning a subscription for one tick: the
// full current tier assignment, plus which entities newly entered or
// left the visible set since the previous scan.
type Update struct {
	Tiers   map[world.EntityID]Tier
	Entered []world.EntityID
	Left    []world.EntityID
}

// Subscription tracks one session's AOI membership across ticks so scans
// can be diffed against the previous tick's result.
type Subscription struct {
	owner world.EntityID
	tiers map[world.EntityID]Tier
}

// NewSubscription creates a subscription centered on owner (the player
// entity the session controls).
func NewSubscription(owner world.EntityID) *Subscription {
	return &Subscription{owner: owner, tiers: make(map[world.EntityID]Tier)}
}

// Owner returns the player entity this subscription follows.
func (s *Subscription) Owner() world.EntityID { return s.owner }

// Scan re-evaluates the subscription's visible set and tiers against the
// current world and grid, scanning a radius of cells around the owning
// player's position, reassigning tiers and recording which entities
// entered or left. If the owner no longer exists (already
// disconnected/removed), Scan returns an empty Update.
func (s *Subscription) Scan(w *world.World, g *Grid) Update {
	owner, err := w.LookupPlayer(s.owner)
	if err != nil {
		return s.clearAll()
	}

	candidates := g.Nearby(owner.Position, RadiusLow)
	next := make(map[world.EntityID]Tier, len(candidates))

	// The owner is included in its own visible set (trivially tier H), so
	// a session's first baseline carries the session's own player record.
	for _, id := range candidates {
		pos, ok := entityPosition(w, id)
		if !ok {
			continue
		}
		tier := tierForDistance(fixedpoint.Distance(owner.Position, pos))
		if tier == TierNone {
			continue
		}
		next[id] = tier
	}

	update := Update{Tiers: next}
	for id := range next {
		if _, wasVisible := s.tiers[id]; !wasVisible {
			update.Entered = append(update.Entered, id)
		}
	}
	for id := range s.tiers {
		if _, stillVisible := next[id]; !stillVisible {
			update.Left = append(update.Left, id)
		}
	}
	s.tiers = next
	return update
}

func (s *Subscription) clearAll() Update {
	var left []world.EntityID
	for id := range s.tiers {
		left = append(left, id)
	}
	s.tiers = make(map[world.EntityID]Tier)
	return Update{Tiers: s.tiers, Left: left}
}

// entityPosition resolves id against ships, players, or projectiles —
// the three entity kinds the AOI grid indexes and the snapshot encoder
// can report. Modules are not independently positioned; they travel
// with their ship and are reported as part of it.
func entityPosition(w *world.World, id world.EntityID) (fixedpoint.Vec2, bool) {
	if s, err := w.LookupShip(id); err == nil {
		return s.Position, true
	}
	if p, err := w.LookupPlayer(id); err == nil {
		return p.Position, true
	}
	if pr, err := w.LookupProjectile(id); err == nil {
		return pr.Position, true
	}
	return fixedpoint.Vec2{}, false
}

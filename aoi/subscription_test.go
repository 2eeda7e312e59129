package aoi

import (
	"testing"

	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

func TestScanAssignsTierByDistance(t *testing.T) {
	w := world.New()
	owner, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{})
	near, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(10)}, world.Carrier{})
	mid, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(300)}, world.Carrier{})
	far, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(5000)}, world.Carrier{})

	g := NewGrid()
	g.Rebuild(w)

	sub := NewSubscription(owner.ID)
	update := sub.Scan(w, g)

	if update.Tiers[near.ID] != TierHigh {
		t.Errorf("near player tier = %v, want TierHigh", update.Tiers[near.ID])
	}
	if update.Tiers[mid.ID] != TierMid {
		t.Errorf("mid player tier = %v, want TierMid", update.Tiers[mid.ID])
	}
	if _, visible := update.Tiers[far.ID]; visible {
		t.Errorf("far player should not be visible, got tier %v", update.Tiers[far.ID])
	}
}

func TestScanReportsEnteredAndLeft(t *testing.T) {
	w := world.New()
	owner, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{})
	other, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(10)}, world.Carrier{})

	g := NewGrid()
	g.Rebuild(w)
	sub := NewSubscription(owner.ID)

	first := sub.Scan(w, g)
	if !containsID(first.Entered, other.ID) || !containsID(first.Entered, owner.ID) {
		t.Fatalf("first scan Entered = %v, want both %d and owner %d", first.Entered, other.ID, owner.ID)
	}

	otherPlayer, _ := w.LookupPlayer(other.ID)
	otherPlayer.Position = fixedpoint.Vec2{X: fixedpoint.FromFloat(5000)}
	g.Rebuild(w)
	second := sub.Scan(w, g)
	if len(second.Entered) != 0 {
		t.Errorf("second scan Entered = %v, want none", second.Entered)
	}
	if len(second.Left) != 1 || second.Left[0] != other.ID {
		t.Errorf("second scan Left = %v, want [%d]", second.Left, other.ID)
	}
}

func TestScanWithMissingOwnerClearsSubscription(t *testing.T) {
	w := world.New()
	owner, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{})
	other, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(10)}, world.Carrier{})

	g := NewGrid()
	g.Rebuild(w)
	sub := NewSubscription(owner.ID)
	sub.Scan(w, g)

	w.Destroy(owner.ID)
	g.Rebuild(w)
	update := sub.Scan(w, g)
	if !containsID(update.Left, other.ID) {
		t.Errorf("Left after owner removal = %v, want it to include %d", update.Left, other.ID)
	}
	if len(update.Tiers) != 0 {
		t.Errorf("expected an empty visible set after owner removal, got %d entries", len(update.Tiers))
	}
}

func containsID(ids []world.EntityID, id world.EntityID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestGridNearbyFindsEntityAcrossCellBoundary(t *testing.T) {
	w := world.New()
	a, _ := w.CreatePlayer(fixedpoint.Vec2{}, world.Carrier{})
	b, _ := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(65)}, world.Carrier{})

	g := NewGrid()
	g.Rebuild(w)

	found := g.Nearby(fixedpoint.Vec2{}, RadiusHigh)
	hasA, hasB := false, false
	for _, id := range found {
		if id == a.ID {
			hasA = true
		}
		if id == b.ID {
			hasB = true
		}
	}
	if !hasA || !hasB {
		t.Errorf("Nearby missed an entity across a cell boundary: hasA=%v hasB=%v", hasA, hasB)
	}
}

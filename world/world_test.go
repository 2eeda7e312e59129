package world

import (
	"testing"

	"github.com/kreid06/brigantine-core/fixedpoint"
)

func TestCreateShipAssignsAscendingIDs(t *testing.T) {
	w := New()
	s1, err := w.CreateShip(fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("CreateShip: %v", err)
	}
	s2, err := w.CreateShip(fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("CreateShip: %v", err)
	}
	if s2.ID <= s1.ID {
		t.Errorf("expected strictly increasing ids, got %d then %d", s1.ID, s2.ID)
	}
}

func TestLookupNotFound(t *testing.T) {
	w := New()
	if _, err := w.LookupShip(999); err != ErrNotFound {
		t.Errorf("LookupShip(999) error = %v, want ErrNotFound", err)
	}
}

func TestCreateModuleUniqueAcrossWorld(t *testing.T) {
	w := New()
	s1, _ := w.CreateShip(fixedpoint.Vec2{}, 0)
	s2, _ := w.CreateShip(fixedpoint.Vec2{}, 0)

	m1, err := w.CreateModule(s1.ID, ModuleHelm, fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	m2, err := w.CreateModule(s2.ID, ModuleCannon, fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	if m1.ID == m2.ID {
		t.Errorf("module ids collided: both %d", m1.ID)
	}

	got, err := w.LookupModule(m1.ID)
	if err != nil || got.Ship != s1.ID {
		t.Errorf("LookupModule(%d) = %+v, %v; want ship %d", m1.ID, got, err, s1.ID)
	}
}

func TestDestroyShipDestroysItsModules(t *testing.T) {
	w := New()
	s1, _ := w.CreateShip(fixedpoint.Vec2{}, 0)
	m1, _ := w.CreateModule(s1.ID, ModuleCannon, fixedpoint.Vec2{}, 0)

	if err := w.Destroy(s1.ID); err != nil {
		t.Fatalf("Destroy(ship): %v", err)
	}
	if _, err := w.LookupShip(s1.ID); err != ErrNotFound {
		t.Errorf("ship still present after destroy")
	}
	mod, err := w.LookupModule(m1.ID)
	if err != nil {
		t.Fatalf("LookupModule after ship destroy: %v", err)
	}
	if !mod.Destroyed {
		t.Errorf("module not marked destroyed after owning ship was destroyed")
	}
}

func TestCreateProjectileReusesTombstonedSlot(t *testing.T) {
	w := New()
	p1, _ := w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, NoEntity, fixedpoint.FromInt(10), 30)
	// p1 points into the slot that is about to be reused, so keep its id.
	firstID := p1.ID
	_ = w.Destroy(firstID)
	w.ExpireProjectiles()

	before := len(w.projectiles)
	p2, err := w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, NoEntity, fixedpoint.FromInt(10), 30)
	if err != nil {
		t.Fatalf("CreateProjectile: %v", err)
	}
	if len(w.projectiles) != before {
		t.Errorf("expected tombstoned slot reuse, array grew from %d to %d", before, len(w.projectiles))
	}
	if p2.ID == firstID {
		t.Errorf("reused slot must still get a fresh id, got reused id %d", p2.ID)
	}
}

func TestFullCapacityReturnsErrFull(t *testing.T) {
	w := New()
	for i := 0; i < MaxShips; i++ {
		if _, err := w.CreateShip(fixedpoint.Vec2{}, 0); err != nil {
			t.Fatalf("CreateShip %d: unexpected error %v", i, err)
		}
	}
	if _, err := w.CreateShip(fixedpoint.Vec2{}, 0); err != ErrFull {
		t.Errorf("CreateShip at capacity = %v, want ErrFull", err)
	}
}

func TestSortDeterministicOrdersProjectilesByID(t *testing.T) {
	w := New()
	p1, _ := w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, NoEntity, fixedpoint.FromInt(10), 30)
	p2, _ := w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, NoEntity, fixedpoint.FromInt(10), 30)
	_ = p2

	// Tombstone the first slot, then reuse it for a newer id: slot order
	// is now id-descending until the per-tick sort restores it.
	_ = w.Destroy(p1.ID)
	p3, _ := w.CreateProjectile(fixedpoint.Vec2{}, fixedpoint.Vec2{}, NoEntity, fixedpoint.FromInt(10), 30)
	newestID := p3.ID

	w.SortDeterministic()
	live := w.Projectiles()
	for i := 1; i < len(live); i++ {
		if live[i].ID <= live[i-1].ID {
			t.Fatalf("projectiles not sorted ascending at index %d: %d <= %d", i, live[i].ID, live[i-1].ID)
		}
	}
	if len(live) != 2 {
		t.Fatalf("expected 2 live projectiles, got %d", len(live))
	}
	if live[len(live)-1].ID != newestID {
		t.Errorf("newest projectile %d not last after sort: %+v", newestID, live)
	}
}

func TestSortDeterministicOrdersByID(t *testing.T) {
	w := New()
	var ids []EntityID
	for i := 0; i < 5; i++ {
		s, _ := w.CreateShip(fixedpoint.Vec2{}, 0)
		ids = append(ids, s.ID)
	}
	w.SortDeterministic()
	ships := w.Ships()
	for i := 1; i < len(ships); i++ {
		if ships[i].ID <= ships[i-1].ID {
			t.Fatalf("ships not sorted ascending at index %d: %d <= %d", i, ships[i].ID, ships[i-1].ID)
		}
	}
}

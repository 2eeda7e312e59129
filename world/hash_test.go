package world

import (
	"testing"

	"github.com/kreid06/brigantine-core/fixedpoint"
)

func TestHashStableForIdenticalWorlds(t *testing.T) {
	build := func() *World {
		w := New()
		if _, err := SpawnBrigantine(w, fixedpoint.Vec2{}, 0); err != nil {
			t.Fatalf("SpawnBrigantine: %v", err)
		}
		if _, err := w.CreatePlayer(fixedpoint.Vec2{X: fixedpoint.FromFloat(50)}, Carrier{}); err != nil {
			t.Fatalf("CreatePlayer: %v", err)
		}
		return w
	}
	a, b := build(), build()
	if a.Hash() != b.Hash() {
		t.Fatalf("identical worlds hash differently: %#x != %#x", a.Hash(), b.Hash())
	}
}

func TestHashChangesWhenStateChanges(t *testing.T) {
	w := New()
	s, err := SpawnBrigantine(w, fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("SpawnBrigantine: %v", err)
	}
	before := w.Hash()

	s.Position = fixedpoint.Vec2{X: fixedpoint.FromFloat(1)}
	if w.Hash() == before {
		t.Errorf("moving a ship did not change the world hash")
	}

	s.Position = fixedpoint.Vec2{}
	if w.Hash() != before {
		t.Errorf("restoring state did not restore the hash")
	}
}

func TestHashCoversModuleState(t *testing.T) {
	w := New()
	s, err := SpawnBrigantine(w, fixedpoint.Vec2{}, 0)
	if err != nil {
		t.Fatalf("SpawnBrigantine: %v", err)
	}
	before := w.Hash()

	for _, id := range s.Modules {
		mod, err := w.LookupModule(id)
		if err != nil {
			t.Fatalf("LookupModule: %v", err)
		}
		if mod.Kind == ModuleCannon {
			mod.Ammo--
			break
		}
	}
	if w.Hash() == before {
		t.Errorf("consuming cannon ammo did not change the world hash")
	}
}

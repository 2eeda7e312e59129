package world

import (
	"errors"
	"sort"

	"github.com/kreid06/brigantine-core/fixedpoint"
)

// Capacities are small enough that linear scan by id is cheap and a
// tombstoned slot map suffices for the highest-churn array (projectiles).
const (
	MaxShips       = 256
	MaxPlayers     = 1024
	MaxProjectiles = 4096
)

// ErrFull is returned when an entity array is at capacity.
var ErrFull = errors.New("world: entity array is full")

// ErrNotFound is returned when a lookup or destroy names an id that does
// not exist.
var ErrNotFound = errors.New("world: entity not found")

// World is the process-wide, tick-thread-exclusive owner of all
// simulation state: ships, players, projectiles, and the modules owned by
// ships. It is the single mutable heap the tick loop writes to;
// nothing outside the tick goroutine may touch it.
type World struct {
	ids *idAllocator

	ships   []Ship
	players []Player
	modules []Module

	// projectiles is a fixed-capacity tombstoned slot map: live reports
	// which slots hold a real projectile so destroyed/expired slots can
	// be reused without a compaction pass every tick.
	projectiles []Projectile

	// moduleIndex maps a module id to its index in modules, so ship →
	// module lookups don't need a linear scan of the whole array.
	moduleIndex map[EntityID]int

	Tick uint64
}

// New creates an empty world at the default entity capacities.
func New() *World {
	return &World{
		ids:         newIDAllocator(),
		ships:       make([]Ship, 0, MaxShips),
		players:     make([]Player, 0, MaxPlayers),
		modules:     make([]Module, 0, MaxShips*8),
		projectiles: make([]Projectile, 0, MaxProjectiles),
		moduleIndex: make(map[EntityID]int),
	}
}

// CreateShip allocates a new ship at the given position and rotation. The
// caller fills in mass/drag/hull afterward via the returned pointer —
// Lookup returns a pointer into the backing array, which stays valid
// until the next Destroy-driven compaction.
func (w *World) CreateShip(position fixedpoint.Vec2, rotation fixedpoint.Fixed) (*Ship, error) {
	if len(w.ships) >= MaxShips {
		return nil, ErrFull
	}
	id := w.ids.alloc()
	w.ships = append(w.ships, Ship{
		ID:       id,
		Position: position,
		Rotation: rotation,
	})
	w.sortShips()
	return w.LookupShip(id)
}

// CreatePlayer allocates a new player, optionally already mounted via
// carrier.
func (w *World) CreatePlayer(position fixedpoint.Vec2, carrier Carrier) (*Player, error) {
	if len(w.players) >= MaxPlayers {
		return nil, ErrFull
	}
	id := w.ids.alloc()
	state := PlayerWalking
	if carrier.HasCarrier() {
		state = PlayerMounted
	}
	w.players = append(w.players, Player{
		ID:       id,
		Position: position,
		Carrier:  carrier,
		State:    state,
	})
	w.sortPlayers()
	return w.LookupPlayer(id)
}

// CreateProjectile allocates a projectile, reusing a tombstoned slot if
// one is available before growing the array.
func (w *World) CreateProjectile(position, velocity fixedpoint.Vec2, owner EntityID, damage fixedpoint.Fixed, lifetime int) (*Projectile, error) {
	slot := -1
	for i := range w.projectiles {
		if !w.projectiles[i].live {
			slot = i
			break
		}
	}
	if slot < 0 && len(w.projectiles) >= MaxProjectiles {
		return nil, ErrFull
	}
	p := Projectile{
		ID:        w.ids.alloc(),
		Owner:     owner,
		Position:  position,
		Velocity:  velocity,
		Damage:    damage,
		SpawnTick: w.Tick,
		Lifetime:  lifetime,
		live:      true,
	}
	if slot >= 0 {
		w.projectiles[slot] = p
		return &w.projectiles[slot], nil
	}
	w.projectiles = append(w.projectiles, p)
	return &w.projectiles[len(w.projectiles)-1], nil
}

// CreateModule allocates a module owned by ship.
func (w *World) CreateModule(ship EntityID, kind ModuleKind, localPos fixedpoint.Vec2, localRot fixedpoint.Fixed) (*Module, error) {
	s, err := w.LookupShip(ship)
	if err != nil {
		return nil, err
	}
	id := w.ids.alloc()
	w.modules = append(w.modules, Module{
		ID:       id,
		Ship:     ship,
		Kind:     kind,
		LocalPos: localPos,
		LocalRot: localRot,
		Active:   true,
	})
	idx := len(w.modules) - 1
	w.moduleIndex[id] = idx
	s.Modules = append(s.Modules, id)
	return &w.modules[idx], nil
}

// LookupShip returns a pointer to the ship with id, or ErrNotFound.
func (w *World) LookupShip(id EntityID) (*Ship, error) {
	for i := range w.ships {
		if w.ships[i].ID == id {
			return &w.ships[i], nil
		}
	}
	return nil, ErrNotFound
}

// LookupPlayer returns a pointer to the player with id, or ErrNotFound.
func (w *World) LookupPlayer(id EntityID) (*Player, error) {
	for i := range w.players {
		if w.players[i].ID == id {
			return &w.players[i], nil
		}
	}
	return nil, ErrNotFound
}

// LookupModule returns a pointer to the module with id, or ErrNotFound.
func (w *World) LookupModule(id EntityID) (*Module, error) {
	idx, ok := w.moduleIndex[id]
	if !ok || idx >= len(w.modules) || w.modules[idx].ID != id {
		return nil, ErrNotFound
	}
	return &w.modules[idx], nil
}

// LookupProjectile returns a pointer to the live projectile with id, or
// ErrNotFound.
func (w *World) LookupProjectile(id EntityID) (*Projectile, error) {
	for i := range w.projectiles {
		if w.projectiles[i].live && w.projectiles[i].ID == id {
			return &w.projectiles[i], nil
		}
	}
	return nil, ErrNotFound
}

// Destroy removes the entity named by id, whichever kind it is. Destroying
// a ship destroys all of its modules and dismounts any player carried by
// them (the dismount is observed by the simulation step the following
// tick via the weak Carrier reference).
func (w *World) Destroy(id EntityID) error {
	if s, err := w.LookupShip(id); err == nil {
		for _, modID := range s.Modules {
			w.destroyModule(modID)
		}
		for i := range w.ships {
			if w.ships[i].ID == id {
				w.ships = append(w.ships[:i], w.ships[i+1:]...)
				break
			}
		}
		return nil
	}
	if _, err := w.LookupPlayer(id); err == nil {
		for i := range w.players {
			if w.players[i].ID == id {
				w.players = append(w.players[:i], w.players[i+1:]...)
				break
			}
		}
		return nil
	}
	if p, err := w.LookupProjectile(id); err == nil {
		p.live = false
		return nil
	}
	if _, err := w.LookupModule(id); err == nil {
		w.destroyModule(id)
		return nil
	}
	return ErrNotFound
}

func (w *World) destroyModule(id EntityID) {
	idx, ok := w.moduleIndex[id]
	if !ok {
		return
	}
	w.modules[idx].Destroyed = true
	w.modules[idx].Active = false
}

// Ships returns the live ship slice, sorted ascending by id (sorted at
// the start of each tick so simulation iteration order is deterministic).
func (w *World) Ships() []Ship { return w.ships }

// Players returns the live player slice, sorted ascending by id.
func (w *World) Players() []Player { return w.players }

// ModulesOf returns the modules owned by ship, sorted ascending by id.
func (w *World) ModulesOf(ship EntityID) []*Module {
	var out []*Module
	for i := range w.modules {
		if w.modules[i].Ship == ship {
			out = append(out, &w.modules[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Projectiles returns a copy of the live projectiles only. Writes to the
// returned values do not reach the world; LookupProjectile returns a
// pointer to the stored projectile. Removed projectiles leave tombstoned
// slots that CreateProjectile reuses; nothing compacts the slot array.
func (w *World) Projectiles() []Projectile {
	out := make([]Projectile, 0, len(w.projectiles))
	for _, p := range w.projectiles {
		if p.live {
			out = append(out, p)
		}
	}
	return out
}

// ExpireProjectiles removes any projectile whose lifetime has reached
// zero. Called once per tick before integration.
func (w *World) ExpireProjectiles() {
	for i := range w.projectiles {
		if w.projectiles[i].live && w.projectiles[i].Lifetime <= 0 {
			w.projectiles[i].live = false
		}
	}
}

// SortDeterministic re-sorts all dense arrays by ascending id. Called once
// at the start of every tick so that the same set of entities always
// yields the same iteration order regardless of creation order within
// the tick that created them.
func (w *World) SortDeterministic() {
	w.sortShips()
	w.sortPlayers()
	w.sortProjectiles()
	sort.Slice(w.modules, func(i, j int) bool { return w.modules[i].ID < w.modules[j].ID })
	for i := range w.modules {
		w.moduleIndex[w.modules[i].ID] = i
	}
}

func (w *World) sortShips() {
	sort.Slice(w.ships, func(i, j int) bool { return w.ships[i].ID < w.ships[j].ID })
}

func (w *World) sortPlayers() {
	sort.Slice(w.players, func(i, j int) bool { return w.players[i].ID < w.players[j].ID })
}

// sortProjectiles orders live projectiles ascending by id, tombstoned
// slots after them, so slot reuse never perturbs iteration order.
func (w *World) sortProjectiles() {
	sort.Slice(w.projectiles, func(i, j int) bool {
		a, b := &w.projectiles[i], &w.projectiles[j]
		if a.live != b.live {
			return a.live
		}
		return a.ID < b.ID
	})
}

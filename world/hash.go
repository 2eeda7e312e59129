package world

import (
	"encoding/binary"

	"lukechampine.com/blake3"

	"github.com/kreid06/brigantine-core/fixedpoint"
)

// Hash returns a 64-bit fingerprint of the entire world state, used to
// detect any divergence between two runs fed the same seed and input
// stream. Hashing walks ships, players, and
// projectiles in ascending id order (the same order SortDeterministic
// leaves them in) over a fixed field sequence, so the hash itself never
// depends on map iteration or allocation order.
func (w *World) Hash() uint64 {
	h := blake3.New(32, nil)
	var buf [8]byte

	writeU64 := func(v uint64) {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	writeFixed := func(f fixedpoint.Fixed) { writeU64(uint64(uint32(f))) }
	writeVec := func(v fixedpoint.Vec2) { writeFixed(v.X); writeFixed(v.Y) }

	writeU64(w.Tick)

	for i := range w.ships {
		s := &w.ships[i]
		writeU64(uint64(s.ID))
		writeVec(s.Position)
		writeFixed(s.Rotation)
		writeVec(s.LinearVelocity)
		writeFixed(s.AngularVelocity)
		writeFixed(s.HullHealth)
		if s.Destroyed {
			writeU64(1)
		} else {
			writeU64(0)
		}
		for _, modID := range s.Modules {
			mod, err := w.LookupModule(modID)
			if err != nil {
				continue
			}
			writeU64(uint64(mod.ID))
			writeU64(uint64(mod.Kind))
			writeFixed(mod.Health)
			writeFixed(mod.AimDirection)
			writeU64(uint64(mod.Ammo))
			writeFixed(mod.SailOpenness)
			writeU64(uint64(mod.OccupiedBy))
		}
	}

	for i := range w.players {
		p := &w.players[i]
		writeU64(uint64(p.ID))
		writeVec(p.Position)
		writeVec(p.Velocity)
		writeFixed(p.Facing)
		writeU64(uint64(p.State))
		writeU64(uint64(p.Carrier.Ship))
		writeU64(uint64(p.Carrier.Module))
	}

	for i := range w.projectiles {
		pr := &w.projectiles[i]
		if !pr.live {
			continue
		}
		writeU64(uint64(pr.ID))
		writeVec(pr.Position)
		writeVec(pr.Velocity)
		writeU64(uint64(pr.Lifetime))
	}

	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

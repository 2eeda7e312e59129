package snapshot

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

// ModuleTypeID maps an internal world.ModuleKind to the frozen wire
// typeId table. TypeId 4 ("steering-wheel") is reserved by that table
// for a module kind this implementation does not model separately — a
// helm's wheel rotation is carried as a field on the helm module itself
// (world.Module.WheelRotation), so typeId 0 already covers it and 4 is
// never emitted.
func ModuleTypeID(kind world.ModuleKind) uint8 {
	switch kind {
	case world.ModuleHelm:
		return 0
	case world.ModuleSeat:
		return 1
	case world.ModuleCannon:
		return 2
	case world.ModuleMast:
		return 3
	case world.ModuleLadder:
		return 5
	case world.ModulePlank:
		return 6
	case world.ModuleDeck:
		return 7
	default:
		return 255
	}
}

// BuildShipRecord converts a live ship (and its modules) into a full
// wire record, quantizing every field.
func BuildShipRecord(w *world.World, s *world.Ship, origin fixedpoint.Vec2) ShipRecord {
	rec := ShipRecord{
		ID:              uint32(s.ID),
		X:               QuantizePosition(s.Position.X, origin.X),
		Y:               QuantizePosition(s.Position.Y, origin.Y),
		Rotation:        QuantizeRotation(s.Rotation),
		VelocityX:       QuantizeVelocity(s.LinearVelocity.X),
		VelocityY:       QuantizeVelocity(s.LinearVelocity.Y),
		AngularVelocity: QuantizeVelocity(s.AngularVelocity),
		Mass:            saturateU16(s.Mass.Int()),
		MomentOfInertia: saturateU16(s.MomentOfInertia.Int()),
		MaxSpeed:        QuantizePosition(s.MaxSpeed, 0),
		TurnRate:        QuantizeRotation(s.TurnRate),
		WaterDrag:       saturateU16(fixedpoint.Mul(s.LinearDrag, fixedpoint.FromInt(1000)).Int()),
		AngularDrag:     saturateU16(fixedpoint.Mul(s.AngularDrag, fixedpoint.FromInt(1000)).Int()),
		Health:          QuantizeHealth(s.HullHealth, s.MaxHullHealth),
	}
	for _, mod := range w.ModulesOf(s.ID) {
		rec.Modules = append(rec.Modules, ModuleRecord{
			ID:       uint32(mod.ID),
			TypeID:   ModuleTypeID(mod.Kind),
			X:        QuantizePosition(mod.LocalPos.X, 0),
			Y:        QuantizePosition(mod.LocalPos.Y, 0),
			Rotation: QuantizeRotation(mod.LocalRot),
		})
	}
	return rec
}

// BuildPlayerRecord converts a live player into a full wire record.
func BuildPlayerRecord(p *world.Player, origin fixedpoint.Vec2) PlayerRecord {
	rec := PlayerRecord{
		ID:       uint32(p.ID),
		WorldX:   QuantizePosition(p.Position.X, origin.X),
		WorldY:   QuantizePosition(p.Position.Y, origin.Y),
		Rotation: QuantizeRotation(p.Facing),
		State:    uint8(p.State),
	}
	if p.Carrier.HasCarrier() {
		rec.ParentShip = uint32(p.Carrier.Ship)
		rec.LocalX = int16(fixedpoint.Mul(p.Carrier.Offset.X, fixedpoint.FromInt(256)).Int())
		rec.LocalY = int16(fixedpoint.Mul(p.Carrier.Offset.Y, fixedpoint.FromInt(256)).Int())
	}
	return rec
}

// BuildProjectileRecord converts a live projectile into a full wire
// record.
func BuildProjectileRecord(p *world.Projectile, origin fixedpoint.Vec2) ProjectileRecord {
	return ProjectileRecord{
		ID: uint32(p.ID),
		X:  QuantizePosition(p.Position.X, origin.X),
		Y:  QuantizePosition(p.Position.Y, origin.Y),
		VX: QuantizeVelocity(p.Velocity.X),
		VY: QuantizeVelocity(p.Velocity.Y),
	}
}

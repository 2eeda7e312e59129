// Package aoi implements the area-of-interest grid and per-session
// tiered subscriptions: a uniform spatial hash indexes every ship and
// player by cell, and each session's subscription scans a fixed radius
// of cells around its owner, reassigning H/M/L tiers and recording
// which entities entered or left the visible set.
package aoi

import (
	"github.com/kreid06/brigantine-core/fixedpoint"
	"github.com/kreid06/brigantine-core/world"
)

// CellSize is the uniform grid cell side, in world units, sized for
// this world's per-ship scale rather than an open-galaxy one.
var CellSize = fixedpoint.FromFloat(64.0)

// Grid is a uniform spatial hash over entity positions, rebuilt once per
// tick from the live ship, player, and projectile arrays. It has no notion of tiers or
// sessions — that bookkeeping lives in Subscription below — it only
// answers "what is near this cell."
type Grid struct {
	cells map[cellCoord][]world.EntityID
}

type cellCoord struct {
	col, row int32
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[cellCoord][]world.EntityID)}
}

func coordFor(pos fixedpoint.Vec2) cellCoord {
	return cellCoord{
		col: int32(fixedpoint.Div(pos.X, CellSize).Int()),
		row: int32(fixedpoint.Div(pos.Y, CellSize).Int()),
	}
}

// CellOf returns the grid cell coordinates containing pos, for snapshot
// headers that report the session's AOI cell.
func CellOf(pos fixedpoint.Vec2) (col, row int32) {
	c := coordFor(pos)
	return c.col, c.row
}

// CellOrigin returns the world position of a cell's corner, used as a
// cell-aligned quantization origin so the client can reconstruct it
// from the header's cell coordinates alone.
func CellOrigin(col, row int32) fixedpoint.Vec2 {
	return fixedpoint.Vec2{
		X: fixedpoint.Mul(fixedpoint.FromInt(int(col)), CellSize),
		Y: fixedpoint.Mul(fixedpoint.FromInt(int(row)), CellSize),
	}
}

// Rebuild clears the grid and reinserts every ship, player, and
// projectile.
// Rebuilding from scratch each tick is equivalent and simpler than
// incremental membership diffing, and the grid is small enough
// (≤256 ships, ≤1024 players) that this costs nothing material.
func (g *Grid) Rebuild(w *world.World) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for i := range w.Ships() {
		s := &w.Ships()[i]
		c := coordFor(s.Position)
		g.cells[c] = append(g.cells[c], s.ID)
	}
	for i := range w.Players() {
		p := &w.Players()[i]
		c := coordFor(p.Position)
		g.cells[c] = append(g.cells[c], p.ID)
	}
	for _, pr := range w.Projectiles() {
		c := coordFor(pr.Position)
		g.cells[c] = append(g.cells[c], pr.ID)
	}
}

// Nearby returns every entity id indexed within radius (world units) of
// pos, scanning the block of cells that radius can possibly reach. The
// caller still performs exact distance/tier checks.
func (g *Grid) Nearby(pos fixedpoint.Vec2, radius fixedpoint.Fixed) []world.EntityID {
	center := coordFor(pos)
	span := int32(fixedpoint.Div(radius, CellSize).Int()) + 1
	var out []world.EntityID
	for dr := -span; dr <= span; dr++ {
		for dc := -span; dc <= span; dc++ {
			c := cellCoord{col: center.col + dc, row: center.row + dr}
			out = append(out, g.cells[c]...)
		}
	}
	return out
}

package world

// EntityID identifies any entity in the world — ship, player, projectile,
// or module — from a single shared 32-bit namespace with a "none"
// sentinel. IDs are monotonically allocated and never reused within a
// server's session lifetime.
type EntityID uint32

// NoEntity is the sentinel meaning "no entity" (an unset carrier, an
// unoccupied module, a projectile with no collision target yet).
const NoEntity EntityID = 0

// idAllocator hands out strictly increasing EntityIDs starting at 1, so
// NoEntity (0) is never a live id.
type idAllocator struct {
	next EntityID
}

func newIDAllocator() *idAllocator {
	return &idAllocator{next: 1}
}

func (a *idAllocator) alloc() EntityID {
	id := a.next
	a.next++
	return id
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// Bodies is the slab-allocated body container plus the dense active-set
// index spec.md §3 describes. activeBodyIndices is maintained by
// swap-remove whenever a body sleeps, wakes, or changes motion type.
type Bodies struct {
	pool              *bodyPool
	activeBodyIndices []BodyId
}

// NewBodies returns an empty body container.
func NewBodies() *Bodies {
	return &Bodies{pool: newBodyPool()}
}

// Create allocates a new body from settings and, if dynamic or kinematic,
// enrolls it in the active set.
func (bs *Bodies) Create(settings *BodySettings) (BodyId, error) {
	id, slot, err := bs.pool.alloc()
	if err != nil {
		return 0, err
	}
	b, err := newBody(id, settings)
	if err != nil {
		bs.pool.release(id)
		return 0, err
	}
	slot.body = b
	if b.motionType != Static {
		bs.activate(b)
	}
	return id, nil
}

// Lookup resolves id to its live Body, or (nil, false) if id is stale
// (spec.md §7 StaleIdentifier).
func (bs *Bodies) Lookup(id BodyId) (*Body, bool) {
	return bs.pool.resolve(id)
}

// Destroy releases id's slot. Callers are responsible for first cascading
// constraint destruction (spec.md §3 "constraint back-references"); World
// does this before calling Destroy.
func (bs *Bodies) Destroy(id BodyId) {
	b, ok := bs.pool.resolve(id)
	if !ok {
		return
	}
	if b.activeIndex != inactiveIndex {
		bs.deactivate(b)
	}
	bs.pool.release(id)
}

// activate appends b to the active set, recording its dense index.
// No-op if b is already active. Matches spec.md §4.4's activation rule.
func (bs *Bodies) activate(b *Body) {
	if b.activeIndex != inactiveIndex {
		return
	}
	b.activeIndex = len(bs.activeBodyIndices)
	bs.activeBodyIndices = append(bs.activeBodyIndices, b.id)
	b.timeQuiescent = 0
	for _, p := range b.motionBox {
		p.Set(b.pos)
	}
}

// deactivate swap-removes b from the active set (spec.md §4.4 on-sleep
// behavior, also used when a body is destroyed while active).
func (bs *Bodies) deactivate(b *Body) {
	idx := b.activeIndex
	if idx == inactiveIndex {
		return
	}
	last := len(bs.activeBodyIndices) - 1
	movedId := bs.activeBodyIndices[last]
	bs.activeBodyIndices[idx] = movedId
	bs.activeBodyIndices = bs.activeBodyIndices[:last]
	if movedId != b.id {
		if moved, ok := bs.pool.resolve(movedId); ok {
			moved.activeIndex = idx
		}
	}
	b.activeIndex = inactiveIndex
}

// Sleep marks b sleeping and removes it from the active set.
func (bs *Bodies) Sleep(b *Body) {
	if b.motionType != Dynamic || b.sleeping {
		return
	}
	bs.deactivate(b)
	b.sleeping = true
}

// Wake clears b's sleeping flag, re-enrolls it in the active set, and
// resets its quiescence accumulator (spec.md §4.4 on-wake behavior).
func (bs *Bodies) Wake(b *Body) {
	if !b.sleeping {
		return
	}
	b.sleeping = false
	bs.activate(b)
}

// ActiveCount returns the number of bodies currently enrolled in the
// active set.
func (bs *Bodies) ActiveCount() int { return len(bs.activeBodyIndices) }

// ActiveAt returns the BodyId at dense index i of the active set.
func (bs *Bodies) ActiveAt(i int) BodyId { return bs.activeBodyIndices[i] }

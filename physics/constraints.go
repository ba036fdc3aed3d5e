// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// Constraint is the common surface every concrete joint type implements,
// composed from the parts in §4.5 per the table in spec.md §4.6. The
// solver drives every constraint through this interface; it never knows
// about Hinge, Slider, Fixed etc. directly.
type Constraint interface {
	Base() *constraintBase
	SetupVelocity()
	WarmStart(ratio float64)
	SolveVelocity() bool
	SolvePosition(baumgarte float64) bool
}

// constraintBase is the per-constraint record spec.md §3 describes,
// embedded in every concrete constraint type: id (which packs the pool
// index and sequence), typ, enabled, priority, the velocity/position step
// overrides, bodyA, bodyB and UserData. Whether a slot is pooled is kept
// in the pool slot, not here.
type constraintBase struct {
	id      ConstraintId
	typ     ConstraintType
	enabled bool

	priority               int
	velocityStepsOverride  int
	positionStepsOverride  int

	bodyA, bodyB *Body

	UserData interface{}
}

// Base returns the embedded constraintBase, used by the solver and island
// builder for bookkeeping common to every constraint type.
func (c *constraintBase) Base() *constraintBase { return c }

// ConstraintSettings is the common bind-time configuration shared by every
// concrete constraint's settings type: the two bodies and scheduling
// overrides (spec.md §3, §4.9).
type ConstraintSettings struct {
	BodyA, BodyB          *Body
	Priority              int
	VelocityStepsOverride int
	PositionStepsOverride int
	UserData              interface{}
}

func newConstraintBase(typ ConstraintType, s ConstraintSettings) constraintBase {
	return constraintBase{
		typ:                   typ,
		enabled:               true,
		priority:              s.Priority,
		velocityStepsOverride: s.VelocityStepsOverride,
		positionStepsOverride: s.PositionStepsOverride,
		bodyA:                 s.BodyA,
		bodyB:                 s.BodyB,
		UserData:              s.UserData,
	}
}

// localAnchor converts a world-space point to bodyA/bodyB's local frame at
// bind time: r_local = q^-1 * (anchor - x) (spec.md §4.6 construction rule).
func localAnchor(body *Body, worldPoint *lin.V3) *lin.V3 {
	rel := lin.NewV3().Sub(worldPoint, body.pos)
	inv := lin.NewQ().Inv(body.rot)
	return lin.NewV3().MultvQ(rel, inv)
}

// localAxis converts a world-space direction to a body's local frame at
// bind time, used for hinge/slider/cone axes (spec.md §4.6).
func localAxis(body *Body, worldDir *lin.V3) *lin.V3 {
	inv := lin.NewQ().Inv(body.rot)
	return lin.NewV3().MultvQ(worldDir, inv)
}

// Constraints is the per-type pooled container, mirroring Bodies' slab
// allocator (spec.md §3, §4.1). It keeps no separate active-set list;
// World.Step walks the live slots with forEachLive. One pool exists per
// ConstraintType; World owns the full set of eight.
type Constraints struct {
	pool *constraintPool
}

// NewConstraints returns an empty pool for the given constraint type.
func NewConstraints(typ ConstraintType) *Constraints {
	return &Constraints{pool: newConstraintPool(typ)}
}

// add allocates a slot, assigns the resulting id onto c's base, registers
// the back-reference on both bodies, and returns the id.
func (cs *Constraints) add(c Constraint) (ConstraintId, error) {
	id, slot, err := cs.pool.alloc()
	if err != nil {
		return 0, err
	}
	b := c.Base()
	b.id = id
	slot.constraint = c
	b.bodyA.addConstraintRef(id)
	b.bodyB.addConstraintRef(id)
	return id, nil
}

// Lookup resolves id to its live Constraint, or (nil, false) if stale.
func (cs *Constraints) Lookup(id ConstraintId) (Constraint, bool) {
	return cs.pool.resolve(id)
}

// Destroy removes id's back-references from both bodies and releases its
// slot (spec.md §4.6 "Removal erases it (swap-remove) from both").
func (cs *Constraints) Destroy(id ConstraintId) {
	c, ok := cs.pool.resolve(id)
	if !ok {
		return
	}
	b := c.Base()
	b.bodyA.removeConstraintRef(id)
	b.bodyB.removeConstraintRef(id)
	cs.pool.release(id)
}

// SetEnabled toggles whether setup/solve consider this constraint. A
// disabled constraint remains pool-allocated (spec.md §4.6).
func (cs *Constraints) SetEnabled(id ConstraintId, enabled bool) {
	if c, ok := cs.pool.resolve(id); ok {
		c.Base().enabled = enabled
	}
}

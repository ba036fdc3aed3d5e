// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"github.com/forgephys/rigid/math/lin"
)

// World is the solver core's entry point: the body and per-type
// constraint pools, the contact pool, island-building scratch state and
// world-wide settings, all owned and reused across steps (spec.md §5
// "Resource acquisition"). Broadphase and narrowphase are external to
// this core (spec.md §5 step 1); Step takes their output as the
// manifolds argument rather than computing it.
//
// Grounded on the teacher's top-level Simulate/physics.go, which held
// the one global body map and solver; generalized into pooled, typed
// constraint storage plus islands.
type World struct {
	settings *WorldSettings

	bodies      *Bodies
	contacts    *Contacts
	constraints [8]*Constraints // indexed by ConstraintType

	builder islandBuilder
	islands []*Island

	lastDt float64
}

// NewWorld constructs an empty World from settings. A nil settings uses
// DefaultWorldSettings.
func NewWorld(settings *WorldSettings) *World {
	if settings == nil {
		settings = DefaultWorldSettings()
	}
	w := &World{
		settings: settings,
		bodies:   NewBodies(),
		contacts: NewContacts(settings.LinearSlop, settings.RestitutionVelocityThreshold),
	}
	for t := ConstraintPoint; t <= ConstraintSixDOF; t++ {
		w.constraints[t] = NewConstraints(t)
	}
	return w
}

// CreateBody allocates a body and, unless static, enrolls it in the
// active set (spec.md §6 "createBody").
func (w *World) CreateBody(settings *BodySettings) (BodyId, error) {
	return w.bodies.Create(settings)
}

// DestroyBody cascades: every constraint still referencing id is
// destroyed first, then the body slot is released (spec.md §6
// "destroyBody; cascades: destroy all constraints referencing it").
func (w *World) DestroyBody(id BodyId) {
	b, ok := w.bodies.Lookup(id)
	if !ok {
		return
	}
	for _, ref := range append([]ConstraintId(nil), b.constraintRefs...) {
		w.DestroyConstraint(ref)
	}
	w.bodies.Destroy(id)
}

// Body resolves id to its live Body, or (nil, false) if stale.
func (w *World) Body(id BodyId) (*Body, bool) { return w.bodies.Lookup(id) }

// SetBodyVelocity is a validated setter mirroring spec.md §6's
// "get*/set* accessors validated against the id's sequence": a stale id
// is a silent no-op rather than a panic.
func (w *World) SetBodyVelocity(id BodyId, linear, angular *lin.V3) {
	b, ok := w.bodies.Lookup(id)
	if !ok {
		return
	}
	if linear != nil {
		b.linVel.Set(linear)
	}
	if angular != nil {
		b.angVel.Set(angular)
	}
}

func (w *World) pool(typ ConstraintType) *Constraints { return w.constraints[typ] }

// lookupConstraint dispatches a ConstraintId to its owning typed pool by
// the type tag packed into the id, the closure island.go's finalize and
// sleep.go's wakeBody need without depending on *World directly.
func (w *World) lookupConstraint(id ConstraintId) (Constraint, bool) {
	t := id.Type()
	if int(t) >= len(w.constraints) || w.constraints[t] == nil {
		return nil, false
	}
	return w.constraints[t].Lookup(id)
}

// CreatePointConstraint, CreateDistanceConstraint, ... wrap each concrete
// constraint's constructor and the matching typed pool's add, returning
// a ConstraintId the solver and DestroyConstraint can address uniformly
// (spec.md §6 "createConstraint<T>(settings) -> ConstraintId"; Go has no
// constraint-generic dispatch over these settings types, so one method
// per concrete kind stands in for the abstract createConstraint<T>).

func (w *World) CreatePointConstraint(s PointConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintPoint).add(NewPointConstraint(s))
}

func (w *World) CreateDistanceConstraint(s DistanceConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintDistance).add(NewDistanceConstraint(s))
}

func (w *World) CreateHingeConstraint(s HingeConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintHinge).add(NewHingeConstraint(s))
}

func (w *World) CreateSliderConstraint(s SliderConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintSlider).add(NewSliderConstraint(s))
}

func (w *World) CreateFixedConstraint(s FixedConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintFixed).add(NewFixedConstraint(s))
}

func (w *World) CreateConeConstraint(s ConeConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintCone).add(NewConeConstraint(s))
}

func (w *World) CreateSwingTwistConstraint(s SwingTwistConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintSwingTwist).add(NewSwingTwistConstraint(s))
}

func (w *World) CreateSixDOFConstraint(s SixDOFConstraintSettings) (ConstraintId, error) {
	return w.pool(ConstraintSixDOF).add(NewSixDOFConstraint(s))
}

// Constraint resolves id to its live Constraint through the owning typed
// pool.
func (w *World) Constraint(id ConstraintId) (Constraint, bool) {
	return w.lookupConstraint(id)
}

// DestroyConstraint removes id's back-references from both bodies and
// releases its slot in the owning typed pool (spec.md §6
// "destroyConstraint(id)").
func (w *World) DestroyConstraint(id ConstraintId) {
	t := id.Type()
	if int(t) >= len(w.constraints) || w.constraints[t] == nil {
		return
	}
	w.constraints[t].Destroy(id)
}

// SetConstraintEnabled toggles whether id is considered by setup/solve
// without removing it from its pool (spec.md §4.6).
func (w *World) SetConstraintEnabled(id ConstraintId, enabled bool) {
	if t := id.Type(); int(t) < len(w.constraints) && w.constraints[t] != nil {
		w.constraints[t].SetEnabled(id, enabled)
	}
}

// Step advances the simulation by dt: integrate velocities, wake any
// sleeping body a fresh manifold touches, link contacts and constraints
// into islands, then solve each island (spec.md §4.9, §5). manifolds is
// the narrowphase's output for this step, supplied by the caller since
// broad/narrowphase sit outside this core (spec.md §5 step 1).
//
// Step(0, nil) is a valid no-op call: no velocity integration runs and
// the sleep-quiescence accumulator is not advanced, but islands are
// still rebuilt and warm-start still applies at the cached lambda's
// full prior value (ratio 1) since no time has passed to decay it
// (spec.md §6 "idempotent under dt == 0").
func (w *World) Step(dt float64, manifolds []*ContactManifold) error {
	if dt < 0 || !isFinite(dt) {
		return newConfigError("step called with negative or non-finite dt")
	}

	ratio := 1.0
	if w.lastDt > 0 && dt > 0 {
		ratio = dt / w.lastDt
	} else if w.lastDt == 0 {
		ratio = 0 // first step after construction (spec.md §4.9 step 2).
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > w.settings.WarmStartRatioMax {
		ratio = w.settings.WarmStartRatioMax
	}

	if dt > 0 {
		integrateActiveVelocities(w.bodies, w.settings.GravityVector(), dt)
	}

	w.wakeTouchedBodies(manifolds)

	w.contacts.Reset()
	nActive := w.bodies.ActiveCount()
	w.builder.prepare(nActive, len(manifolds))
	for _, m := range manifolds {
		bodyA, okA := w.bodies.Lookup(m.BodyIdA)
		bodyB, okB := w.bodies.Lookup(m.BodyIdB)
		if !okA || !okB {
			continue
		}
		ci := w.contacts.Add(bodyA, bodyB, m)
		w.contacts.At(ci).id = ConstraintId(uint64(ci))
		w.builder.linkContact(ci, bodyA.activeIndex, bodyB.activeIndex)
		// The manifold is solved as a ContactConstraint, so its two active
		// bodies share an island like any other constraint's.
		if bodyA.activeIndex >= 0 && bodyB.activeIndex >= 0 {
			w.builder.linkBodies(bodyA.activeIndex, bodyB.activeIndex)
		}
	}
	for t := ConstraintPoint; t <= ConstraintSixDOF; t++ {
		w.constraints[t].pool.forEachLive(func(id ConstraintId, c Constraint) {
			base := c.Base()
			if !base.enabled {
				return
			}
			w.builder.linkConstraint(id, base.bodyA.activeIndex, base.bodyB.activeIndex)
		})
	}

	w.islands = w.builder.finalize(w.bodies, w.lookupConstraint, w.settings.DefaultVelocitySteps, w.settings.DefaultPositionSteps)

	resolved := make([]*solverIsland, len(w.islands))
	for i, isl := range w.islands {
		resolved[i] = resolveIslandConstraints(isl, w.contacts, w.lookupConstraint)
	}

	stepIslands(w.islands, resolved, w.bodies, dt, ratio, w.settings.Baumgarte, w.settings.VelocitySleepThreshold, w.settings.TimeBeforeSleep)
	w.contacts.Capture()

	if dt > 0 {
		w.lastDt = dt
	}
	return nil
}

// wakeTouchedBodies wakes any sleeping body named by a fresh manifold,
// resetting the warm-start caches of its adjacent constraints (spec.md
// §4.4 "On wake ... also reset warm-start caches of adjacent
// constraints"; spec.md §8 scenario 6 "wake on contact").
func (w *World) wakeTouchedBodies(manifolds []*ContactManifold) {
	for _, m := range manifolds {
		if a, ok := w.bodies.Lookup(m.BodyIdA); ok && a.sleeping {
			wakeBody(w.bodies, a, w.lookupConstraint)
		}
		if b, ok := w.bodies.Lookup(m.BodyIdB); ok && b.sleeping {
			wakeBody(w.bodies, b, w.lookupConstraint)
		}
	}
}

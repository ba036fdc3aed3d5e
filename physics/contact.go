// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// maxManifoldPoints bounds a contact manifold to four points, the
// standard box/quad feature count (spec.md §3).
const maxManifoldPoints = 4

// ContactPoint is one point of a contact manifold reported by an external
// narrowphase collaborator: world position, penetration depth, and a
// stable feature id used to correlate warm-start impulses across frames
// (spec.md §3, §4.7).
type ContactPoint struct {
	Position  *lin.V3
	Depth     float64
	FeatureId uint32
}

// ContactManifold is the narrowphase's report for one pair of sub-shapes
// in contact: up to four points sharing a single separating normal
// (pointing from A's side into B's side) and a combined
// friction/restitution pair (spec.md §3).
type ContactManifold struct {
	BodyIdA, BodyIdB         BodyId
	SubShapeIdA, SubShapeIdB SubShapeId
	Normal                   *lin.V3
	Points                   []ContactPoint
	Friction                 float64
	Restitution              float64
}

// contactPointConstraint is the per-point assembly of a normal impulse
// (clamped [0, +inf)) and two coupled friction impulses (clamped against
// the normal lambda each iteration), built from a ContactManifold point
// (spec.md §4.7).
type contactPointConstraint struct {
	featureId                  uint32
	r1, r2                     *lin.V3
	normal                     *lin.V3
	tangent1, tangent2         *lin.V3
	normalMass                 float64
	tangentMass1, tangentMass2 float64
	normalLambda               float64
	tangentLambda1, tangentLambda2 float64
	bias                       float64 // restitution target, applied once at setup
	invInertiaA, invInertiaB   *lin.M3
	invMassA, invMassB         float64
	friction                   float64
}

// contactWarmStart is the per-feature cache carried across frames by
// Contacts (spec.md §4.7 "Friction impulses warm-start using correlated
// feature identifiers across frames").
type contactWarmStart struct {
	normal, tangent1, tangent2 float64
}

// ContactConstraint is the solver-facing record built from one
// ContactManifold, implementing the Constraint interface so the solver
// and island builder can treat contacts uniformly with user joints
// (spec.md §4.7, §4.9). Unlike user constraints it is rebuilt every step
// rather than persisted across frames; feature-id correlated warm-start
// values are carried over via Contacts' cache.
type ContactConstraint struct {
	constraintBase
	manifold         *ContactManifold
	points           []contactPointConstraint
	slop             float64
	restitutionFloor float64
}

// NewContactConstraint builds the per-point assemblies for a manifold,
// reusing feature-id-matched lambdas carried over in prior.
func NewContactConstraint(bodyA, bodyB *Body, manifold *ContactManifold, slop, restitutionFloor float64, prior map[uint32]contactWarmStart) *ContactConstraint {
	cc := &ContactConstraint{
		constraintBase: constraintBase{
			enabled: true,
			bodyA:   bodyA,
			bodyB:   bodyB,
		},
		manifold:         manifold,
		slop:             slop,
		restitutionFloor: restitutionFloor,
	}
	cc.points = make([]contactPointConstraint, 0, len(manifold.Points))
	for _, p := range manifold.Points {
		pc := contactPointConstraint{
			featureId: p.FeatureId,
			normal:    lin.NewV3().Set(manifold.Normal),
			friction:  manifold.Friction,
		}
		pc.r1 = lin.NewV3().Sub(p.Position, bodyA.pos)
		pc.r2 = lin.NewV3().Sub(p.Position, bodyB.pos)
		if w, ok := prior[p.FeatureId]; ok {
			pc.normalLambda = w.normal
			pc.tangentLambda1 = w.tangent1
			pc.tangentLambda2 = w.tangent2
		}
		cc.points = append(cc.points, pc)
	}
	return cc
}

// tangentBasis builds two vectors orthogonal to normal and to each other,
// grounded on the teacher's contact-plane basis construction
// (physics/contact.go).
func tangentBasis(normal *lin.V3) (t1, t2 *lin.V3) {
	ref := lin.NewV3S(1, 0, 0)
	if d := normal.Dot(ref); d > 0.9 || d < -0.9 {
		ref = lin.NewV3S(0, 1, 0)
	}
	t1 = lin.NewV3().Cross(normal, ref).Unit()
	t2 = lin.NewV3().Cross(normal, t1).Unit()
	return
}

// effectiveMass1D returns the scalar effective mass along axis for the
// two-body point-anchor pair (r1, r2), mirroring PointPart's K^-1 term
// restricted to one axis.
func effectiveMass1D(r1, r2, axis *lin.V3, p *contactPointConstraint) float64 {
	kInv := p.invMassA + p.invMassB
	ra := lin.NewV3().Cross(r1, axis)
	ia := lin.NewV3().MultMv(p.invInertiaA, ra)
	kInv += ra.Dot(ia)
	rb := lin.NewV3().Cross(r2, axis)
	ib := lin.NewV3().MultMv(p.invInertiaB, rb)
	kInv += rb.Dot(ib)
	if kInv < 1e-12 {
		return 0
	}
	return 1 / kInv
}

// relativeVelocityAlong returns the separation speed of B relative to A
// along axis: positive means separating, negative means approaching.
// With the normal convention pointing from A's side into B's side, this
// is vB - vA dotted with axis, matching the direct pose correction in
// SolvePosition below.
func relativeVelocityAlong(bodyA, bodyB *Body, r1, r2, axis *lin.V3) float64 {
	vA := bodyA.velocityAtWorldPoint(lin.NewV3().Add(bodyA.pos, r1))
	vB := bodyB.velocityAtWorldPoint(lin.NewV3().Add(bodyB.pos, r2))
	rel := lin.NewV3().Sub(vB, vA)
	return rel.Dot(axis)
}

func (cc *ContactConstraint) SetupVelocity() {
	if !cc.enabled {
		return
	}
	bodyA, bodyB := cc.bodyA, cc.bodyB
	for i := range cc.points {
		p := &cc.points[i]
		p.invInertiaA, p.invInertiaB = bodyA.invInertiaWorld, bodyB.invInertiaWorld
		p.invMassA, p.invMassB = bodyA.invMass, bodyB.invMass
		p.tangent1, p.tangent2 = tangentBasis(p.normal)

		p.normalMass = effectiveMass1D(p.r1, p.r2, p.normal, p)
		p.tangentMass1 = effectiveMass1D(p.r1, p.r2, p.tangent1, p)
		p.tangentMass2 = effectiveMass1D(p.r1, p.r2, p.tangent2, p)

		vn := relativeVelocityAlong(bodyA, bodyB, p.r1, p.r2, p.normal)
		p.bias = 0
		if vn < -cc.restitutionFloor {
			p.bias = -cc.manifold.Restitution * vn
		}
	}
}

func (cc *ContactConstraint) WarmStart(ratio float64) {
	if !cc.enabled {
		return
	}
	for i := range cc.points {
		p := &cc.points[i]
		p.normalLambda *= ratio
		p.tangentLambda1 *= ratio
		p.tangentLambda2 *= ratio
		cc.applyPointImpulse(p, p.normalLambda, p.tangentLambda1, p.tangentLambda2)
	}
}

func (cc *ContactConstraint) applyPointImpulse(p *contactPointConstraint, normalLambda, t1Lambda, t2Lambda float64) {
	impulse := lin.NewV3().Scale(p.normal, normalLambda)
	impulse.Add(impulse, lin.NewV3().Scale(p.tangent1, t1Lambda))
	impulse.Add(impulse, lin.NewV3().Scale(p.tangent2, t2Lambda))

	cc.bodyA.linVel.Sub(cc.bodyA.linVel, lin.NewV3().Scale(impulse, p.invMassA))
	angA := lin.NewV3().Cross(p.r1, impulse)
	angA = lin.NewV3().MultMv(p.invInertiaA, angA)
	cc.bodyA.angVel.Sub(cc.bodyA.angVel, angA)

	cc.bodyB.linVel.Add(cc.bodyB.linVel, lin.NewV3().Scale(impulse, p.invMassB))
	angB := lin.NewV3().Cross(p.r2, impulse)
	angB = lin.NewV3().MultMv(p.invInertiaB, angB)
	cc.bodyB.angVel.Add(cc.bodyB.angVel, angB)
}

// SolveVelocity solves the normal constraint first, then both friction
// constraints re-derived against the fresh normal lambda (spec.md §4.7).
func (cc *ContactConstraint) SolveVelocity() bool {
	if !cc.enabled {
		return false
	}
	applied := false
	bodyA, bodyB := cc.bodyA, cc.bodyB
	for i := range cc.points {
		p := &cc.points[i]
		vn := relativeVelocityAlong(bodyA, bodyB, p.r1, p.r2, p.normal)
		deltaN := p.normalMass * (-vn + p.bias)
		newLambda := p.normalLambda + deltaN
		if newLambda < 0 {
			newLambda = 0
		}
		deltaN = newLambda - p.normalLambda
		p.normalLambda = newLambda

		vt1 := relativeVelocityAlong(bodyA, bodyB, p.r1, p.r2, p.tangent1)
		limit := p.friction * p.normalLambda
		newT1 := clampRange(p.tangentLambda1-p.tangentMass1*vt1, -limit, limit)
		deltaT1 := newT1 - p.tangentLambda1
		p.tangentLambda1 = newT1

		vt2 := relativeVelocityAlong(bodyA, bodyB, p.r1, p.r2, p.tangent2)
		newT2 := clampRange(p.tangentLambda2-p.tangentMass2*vt2, -limit, limit)
		deltaT2 := newT2 - p.tangentLambda2
		p.tangentLambda2 = newT2

		if deltaN != 0 || deltaT1 != 0 || deltaT2 != 0 {
			cc.applyPointImpulse(p, deltaN, deltaT1, deltaT2)
			applied = true
		}
	}
	return applied
}

// SolvePosition applies the Baumgarte positional residual
// max(depth - slop, 0) along the normal, per point (spec.md §4.7), where
// depth is -(worldB - worldA)·normal between the point's two body-fixed
// anchors. Both anchors start at the manifold point, so depth counts only
// penetration gained since the constraint was built; the manifold point's
// own Depth is not read.
func (cc *ContactConstraint) SolvePosition(baumgarte float64) bool {
	if !cc.enabled {
		return false
	}
	applied := false
	bodyA, bodyB := cc.bodyA, cc.bodyB
	for i := range cc.points {
		p := &cc.points[i]
		worldA := lin.NewV3().Add(bodyA.pos, p.r1)
		worldB := lin.NewV3().Add(bodyB.pos, p.r2)
		sep := lin.NewV3().Sub(worldB, worldA)
		depth := -sep.Dot(p.normal)
		violation := depth - cc.slop
		if violation <= 0 {
			continue
		}
		lambda := baumgarte * p.normalMass * violation
		step := lin.NewV3().Scale(p.normal, lambda)

		stepA := lin.NewV3().Scale(step, p.invMassA)
		clampStep(stepA, maxPositionLinearStep)
		if bodyA.motionType == Dynamic {
			bodyA.pos.Sub(bodyA.pos, stepA)
		}
		stepB := lin.NewV3().Scale(step, p.invMassB)
		clampStep(stepB, maxPositionLinearStep)
		if bodyB.motionType == Dynamic {
			bodyB.pos.Add(bodyB.pos, stepB)
		}
		applied = true
	}
	return applied
}

// WarmStartValues returns the accumulated impulses keyed by feature id,
// for Contacts to carry into next frame's manifold (spec.md §4.7).
func (cc *ContactConstraint) WarmStartValues() map[uint32]contactWarmStart {
	out := make(map[uint32]contactWarmStart, len(cc.points))
	for _, p := range cc.points {
		out[p.featureId] = contactWarmStart{p.normalLambda, p.tangentLambda1, p.tangentLambda2}
	}
	return out
}

// Contacts is the pool of live ContactConstraints for the current step
// plus the feature-id warm-start cache carried across frames, addressed
// by a stable pair key (spec.md §3 "Contacts pool").
type Contacts struct {
	slots            []*ContactConstraint
	cache            map[uint64]map[uint32]contactWarmStart
	slop             float64
	restitutionFloor float64
}

// NewContacts returns an empty contact pool.
func NewContacts(slop, restitutionFloor float64) *Contacts {
	return &Contacts{cache: make(map[uint64]map[uint32]contactWarmStart), slop: slop, restitutionFloor: restitutionFloor}
}

// pairKey combines two body indices into a stable, order-independent key.
func pairKey(a, b BodyId) uint64 {
	lo, hi := uint64(a), uint64(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo<<32 | hi
}

// Reset clears the current step's live slots without discarding the
// warm-start cache.
func (c *Contacts) Reset() { c.slots = c.slots[:0] }

// Add builds a ContactConstraint from manifold, reusing any warm-start
// cache for its pair, and returns its index into Contacts' slab for the
// island builder's contactLinks array.
func (c *Contacts) Add(bodyA, bodyB *Body, manifold *ContactManifold) int {
	key := pairKey(manifold.BodyIdA, manifold.BodyIdB)
	prior := c.cache[key]
	cc := NewContactConstraint(bodyA, bodyB, manifold, c.slop, c.restitutionFloor, prior)
	c.slots = append(c.slots, cc)
	return len(c.slots) - 1
}

// At returns the ContactConstraint at a contactLinks index.
func (c *Contacts) At(i int) *ContactConstraint { return c.slots[i] }

// Count returns the number of live contact constraints this step.
func (c *Contacts) Count() int { return len(c.slots) }

// Capture snapshots every live slot's accumulated impulses into the
// warm-start cache, keyed by pair, for the next step's Add calls. Must run
// after the velocity solve completes and before the next Reset.
func (c *Contacts) Capture() {
	for _, cc := range c.slots {
		key := pairKey(cc.manifold.BodyIdA, cc.manifold.BodyIdB)
		c.cache[key] = cc.WarmStartValues()
	}
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// MotionType selects how a body participates in integration and solving
// (spec.md §3).
type MotionType int

const (
	// Static never integrates nor receives impulses.
	Static MotionType = iota
	// Kinematic contributes velocity to Jacobians but receives no impulses.
	Kinematic
	// Dynamic participates fully in integration and solving.
	Dynamic
)

// inactiveIndex is the activeIndex sentinel for a sleeping or static body.
const inactiveIndex = -1

// motionBoxHistory is the ring buffer of bounding-box corners enclosing
// recent body motion, used by checkIslandSleep to detect quiescence
// (spec.md §4.4). Size 3 is the spec's stated minimum.
const motionBoxHistory = 3

// dofMask bit positions, low to high: TX, TY, TZ, RX, RY, RZ.
const (
	DofTranslateX uint8 = 1 << iota
	DofTranslateY
	DofTranslateZ
	DofRotateX
	DofRotateY
	DofRotateZ
	DofAll = DofTranslateX | DofTranslateY | DofTranslateZ | DofRotateX | DofRotateY | DofRotateZ
)

// Body is a rigid-body record: pose, velocities, mass properties, motion
// type, sleep state and constraint back-references (spec.md §3). Grounded
// on the teacher's body (physics/body.go), generalized from a flat uint32
// counter identity to pooled BodyId and from a two-shape (box/sphere)
// world to the general Shape trait.
type Body struct {
	id         BodyId
	motionType MotionType
	shape      Shape

	pos *lin.V3 // center of mass, world space
	rot *lin.Q  // unit orientation quaternion

	linVel *lin.V3
	angVel *lin.V3

	mass            float64
	invMass         float64
	inertiaLocal    *lin.M3
	invInertiaLocal *lin.M3
	invInertiaWorld *lin.M3

	linDamp, angDamp float64
	friction         float64
	restitution      float64

	dofMask uint8

	velocityStepsOverride int
	positionStepsOverride int

	sleeping      bool
	motionBox     []*lin.V3 // ring buffer of characteristic-point extents
	motionBoxNext int
	timeQuiescent float64

	constraintRefs []ConstraintId
	activeIndex    int

	UserData interface{}
}

// BodySettings configures CreateBody (spec.md §6).
type BodySettings struct {
	Position    *lin.V3
	Rotation    *lin.Q
	MotionType  MotionType
	Shape       Shape
	Density     float64
	Friction    float64
	Restitution float64
	LinearDamp  float64
	AngularDamp float64
	DofMask     uint8

	// VelocityStepsOverride and PositionStepsOverride feed into an
	// island's step-count computation (spec.md §4.8 step 5); zero means
	// "use the world default".
	VelocityStepsOverride int
	PositionStepsOverride int

	UserData interface{}
}

// newBody constructs a Body from settings with the given id, deriving mass
// properties from the shape at settings.Density when dynamic. Static and
// kinematic bodies carry zero inverse mass (spec.md §3 invariant:
// invMass > 0 iff motionType == DYNAMIC).
func newBody(id BodyId, s *BodySettings) (*Body, error) {
	if s.Shape == nil {
		return nil, newConfigError("body settings missing shape")
	}
	if s.Density < 0 || !isFinite(s.Density) {
		return nil, newConfigError("body settings have non-finite or negative density")
	}
	pos := lin.NewV3()
	if s.Position != nil {
		pos.Set(s.Position)
	}
	rot := lin.NewQI()
	if s.Rotation != nil {
		rot.Set(s.Rotation)
	}
	dofMask := s.DofMask
	if dofMask == 0 {
		dofMask = DofAll
	}
	b := &Body{
		id:              id,
		motionType:      s.MotionType,
		shape:           s.Shape,
		pos:             pos,
		rot:             rot,
		linVel:          lin.NewV3(),
		angVel:          lin.NewV3(),
		inertiaLocal:    lin.NewM3(),
		invInertiaLocal: lin.NewM3(),
		invInertiaWorld: lin.NewM3(),
		linDamp:         s.LinearDamp,
		angDamp:         s.AngularDamp,
		friction:        s.Friction,
		restitution:     s.Restitution,
		dofMask:         dofMask,
		velocityStepsOverride: s.VelocityStepsOverride,
		positionStepsOverride: s.PositionStepsOverride,
		activeIndex:     inactiveIndex,
		UserData:        s.UserData,
	}
	if s.MotionType == Dynamic {
		density := s.Density
		if density == 0 {
			density = 1
		}
		mp := s.Shape.ComputeMassProperties(density)
		if mp.Mass <= 0 || !isFinite(mp.Mass) {
			return nil, newConfigError("dynamic body resolved to non-positive mass")
		}
		b.mass = mp.Mass
		b.invMass = 1 / mp.Mass
		b.inertiaLocal.Set(mp.Inertia)
		b.invInertiaLocal = invertInertia(mp.Inertia)
	}
	b.motionBox = make([]*lin.V3, motionBoxHistory)
	for i := range b.motionBox {
		b.motionBox[i] = lin.NewV3().Set(pos)
	}
	b.updateInertiaTensorWorld()
	return b, nil
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Id returns the body's identifier.
func (b *Body) Id() BodyId { return b.id }

// MotionType returns STATIC, KINEMATIC or DYNAMIC.
func (b *Body) MotionType() MotionType { return b.motionType }

// Position returns the body's center-of-mass world position.
func (b *Body) Position() *lin.V3 { return b.pos }

// Rotation returns the body's unit orientation quaternion.
func (b *Body) Rotation() *lin.Q { return b.rot }

// LinearVelocity returns the body's world-space linear velocity.
func (b *Body) LinearVelocity() *lin.V3 { return b.linVel }

// AngularVelocity returns the body's world-space angular velocity.
func (b *Body) AngularVelocity() *lin.V3 { return b.angVel }

// InverseMass returns 1/mass, or 0 for static/kinematic bodies.
func (b *Body) InverseMass() float64 { return b.invMass }

// InverseInertiaWorld returns R * I^-1_local * R^T at the body's current
// orientation (spec.md §3).
func (b *Body) InverseInertiaWorld() *lin.M3 { return b.invInertiaWorld }

// IsSleeping reports whether the body is currently excluded from the
// active set.
func (b *Body) IsSleeping() bool { return b.sleeping }

// ActiveIndex returns the body's dense index into activeBodyIndices, or
// inactiveIndex if sleeping or static.
func (b *Body) ActiveIndex() int { return b.activeIndex }

// updateInertiaTensorWorld recomputes invInertiaWorld from the body's
// current orientation. Grounded on the teacher's updateInertiaTensor
// (physics/body.go) and get_dynamic_inverse_inertia_tensor
// (physics/physics_util.go).
func (b *Body) updateInertiaTensorWorld() {
	if b.motionType != Dynamic {
		return
	}
	r := lin.NewM3().SetQ(b.rot)
	b.invInertiaWorld = worldInverseInertia(b.invInertiaLocal, r)
}

// applyGravity accumulates a linear-velocity delta under gravity g over a
// time step dt. Grounded on the teacher's applyGravity (physics/body.go),
// generalized from a y-only magnitude to a vector.
func (b *Body) applyGravity(gravity *lin.V3, dt float64) {
	if b.motionType != Dynamic {
		return
	}
	b.linVel.X += gravity.X * dt
	b.linVel.Y += gravity.Y * dt
	b.linVel.Z += gravity.Z * dt
}

// applyDamping exponentially decays linear and angular velocity over dt.
// Grounded on the teacher's applyDamping (physics/body.go).
func (b *Body) applyDamping(dt float64) {
	if b.motionType != Dynamic {
		return
	}
	if b.linDamp > 0 {
		b.linVel.Scale(b.linVel, math.Pow(1-b.linDamp, dt))
	}
	if b.angDamp > 0 {
		b.angVel.Scale(b.angVel, math.Pow(1-b.angDamp, dt))
	}
}

// velocityAtWorldPoint returns the body's velocity at a world-space point,
// v + omega x (point - center). Grounded on the teacher's
// getVelocityInLocalPoint (physics/body.go).
func (b *Body) velocityAtWorldPoint(point *lin.V3) *lin.V3 {
	r := lin.NewV3().Sub(point, b.pos)
	out := lin.NewV3().Cross(b.angVel, r)
	return out.Add(out, b.linVel)
}

// integratePose advances position and orientation by dt using the current
// velocities, respecting the body's DOF mask. Orientation integrates via
// the exponential map (lin.T.Integrate, grounded on
// btTransformUtil::integrateTransform) so it shares the same small-angle
// Taylor fallback the teacher uses.
func (b *Body) integratePose(dt float64) {
	if b.motionType == Static {
		return
	}
	linVel := lin.NewV3().Set(b.linVel)
	if b.dofMask&DofTranslateX == 0 {
		linVel.X = 0
	}
	if b.dofMask&DofTranslateY == 0 {
		linVel.Y = 0
	}
	if b.dofMask&DofTranslateZ == 0 {
		linVel.Z = 0
	}
	angVel := lin.NewV3().Set(b.angVel)
	if b.dofMask&DofRotateX == 0 {
		angVel.X = 0
	}
	if b.dofMask&DofRotateY == 0 {
		angVel.Y = 0
	}
	if b.dofMask&DofRotateZ == 0 {
		angVel.Z = 0
	}
	t := &lin.T{Loc: lin.NewV3().Set(b.pos), Rot: lin.NewQ().Set(b.rot)}
	next := lin.NewT().Integrate(t, linVel, angVel, dt)
	b.pos.Set(next.Loc)
	b.rot.Set(next.Rot)
	b.updateInertiaTensorWorld()
}

// pushMotionBox records the body's current position into its quiescence
// ring buffer, overwriting the oldest entry (spec.md §4.4).
func (b *Body) pushMotionBox() {
	b.motionBox[b.motionBoxNext].Set(b.pos)
	b.motionBoxNext = (b.motionBoxNext + 1) % len(b.motionBox)
}

// motionBoxExtent returns the per-axis span of the body's recorded
// motion-box history.
func (b *Body) motionBoxExtent() (dx, dy, dz float64) {
	min := lin.NewV3().Set(b.motionBox[0])
	max := lin.NewV3().Set(b.motionBox[0])
	for _, p := range b.motionBox[1:] {
		min.Min(min, p)
		max.Max(max, p)
	}
	return max.X - min.X, max.Y - min.Y, max.Z - min.Z
}

// addConstraintRef appends a constraint id to this body's back-reference
// set, used for cascade removal on destroy (spec.md §3, §9). O(1) insert
// as the teacher's design notes call for.
func (b *Body) addConstraintRef(id ConstraintId) {
	b.constraintRefs = append(b.constraintRefs, id)
}

// removeConstraintRef swap-removes a constraint id from this body's
// back-reference set.
func (b *Body) removeConstraintRef(id ConstraintId) {
	for i, ref := range b.constraintRefs {
		if ref == id {
			last := len(b.constraintRefs) - 1
			b.constraintRefs[i] = b.constraintRefs[last]
			b.constraintRefs = b.constraintRefs[:last]
			return
		}
	}
}

// degenerateAxisWarning logs a NumericDegeneracy event (spec.md §7) rather
// than aborting; callers deactivate the offending part for the frame and
// continue.
func degenerateAxisWarning(component string, bodyId BodyId) {
	slog.Warn("physics: numeric degeneracy, part deactivated for this frame",
		"component", component, "body_id", uint32(bodyId))
}

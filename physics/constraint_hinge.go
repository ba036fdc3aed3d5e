// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// HingeConstraint allows rotation about a single shared axis, pinning the
// two bodies' anchor points together and constraining the two off-axis
// rotations to zero, with an optional angle limit (spec.md §4.6: "Hinge |
// PointPart + 2 AngleParts for off-axis + 1 limited AnglePart for angle
// limits | Axis fixed in each body's local frame").
type HingeConstraint struct {
	constraintBase
	point              *PointPart
	offAxis1, offAxis2 *AnglePart
	limit              *AnglePart
	r1Local, r2Local   *lin.V3
	axisLocalA, axisLocalB *lin.V3
	refLocalA, refLocalB   *lin.V3 // a reference perpendicular, for angle measurement
	hasLimit           bool
}

// HingeConstraintSettings binds a hinge at a world anchor and axis,
// with an optional [lower, upper] angle limit in radians.
type HingeConstraintSettings struct {
	ConstraintSettings
	WorldAnchor          *lin.V3
	WorldAxis            *lin.V3
	LowerLimit, UpperLimit float64 // ignored unless HasLimit; equal values lock the angle
	HasLimit             bool
}

// NewHingeConstraint builds a HingeConstraint, converting the anchor and
// axis to each body's local frame at bind time.
func NewHingeConstraint(s HingeConstraintSettings) *HingeConstraint {
	axis := lin.NewV3().Set(s.WorldAxis).Unit()
	perp := arbitraryPerpendicular(axis)
	lower, upper := s.LowerLimit, s.UpperLimit
	if !s.HasLimit {
		lower, upper = math.Inf(-1), math.Inf(1)
	}
	return &HingeConstraint{
		constraintBase: newConstraintBase(ConstraintHinge, s.ConstraintSettings),
		point:          NewPointPart(),
		offAxis1:       NewAnglePart(0, 0),
		offAxis2:       NewAnglePart(0, 0),
		limit:          NewAnglePart(lower, upper),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
		axisLocalA:     localAxis(s.BodyA, axis),
		axisLocalB:     localAxis(s.BodyB, axis),
		refLocalA:      localAxis(s.BodyA, perp),
		refLocalB:      localAxis(s.BodyB, perp),
		hasLimit:       s.HasLimit,
	}
}

// arbitraryPerpendicular returns a unit vector perpendicular to axis,
// used as a reference direction for measuring the hinge swing angle.
func arbitraryPerpendicular(axis *lin.V3) *lin.V3 {
	ref := lin.NewV3S(0, 1, 0)
	if math.Abs(axis.Dot(ref)) > 0.9 {
		ref = lin.NewV3S(1, 0, 0)
	}
	out := lin.NewV3().Cross(axis, ref)
	return out.Unit()
}

func (c *HingeConstraint) worldAxes() (axisA, perpA1, perpA2, axisB *lin.V3) {
	axisA = lin.NewV3().MultvQ(c.axisLocalA, c.bodyA.rot).Unit()
	refA := lin.NewV3().MultvQ(c.refLocalA, c.bodyA.rot)
	perpA2 = lin.NewV3().Cross(axisA, refA).Unit()
	perpA1 = lin.NewV3().Cross(perpA2, axisA).Unit()
	axisB = lin.NewV3().MultvQ(c.axisLocalB, c.bodyB.rot).Unit()
	return
}

func (c *HingeConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	c.point.Setup(c.bodyA, c.bodyB, c.r1Local, c.r2Local)
	axisA, perpA1, perpA2, _ := c.worldAxes()
	c.offAxis1.Setup(c.bodyA, c.bodyB, perpA1, false, 0)
	c.offAxis2.Setup(c.bodyA, c.bodyB, perpA2, false, 0)
	if c.hasLimit {
		c.limit.Setup(c.bodyA, c.bodyB, axisA, false, c.currentAngle())
	}
}

// currentAngle measures the hinge's swing angle about its shared axis
// relative to the bind-time reference perpendicular, used both to cache
// AnglePart's boundary state and to drive the position correction.
func (c *HingeConstraint) currentAngle() float64 {
	axisA, refA1, _, _ := c.worldAxes()
	refB := lin.NewV3().MultvQ(c.refLocalB, c.bodyB.rot)
	cosA := refA1.Dot(refB)
	sinA := axisA.Dot(lin.NewV3().Cross(refA1, refB))
	return math.Atan2(sinA, cosA)
}

func (c *HingeConstraint) WarmStart(ratio float64) {
	if !c.enabled {
		return
	}
	c.point.WarmStart(c.bodyA, c.bodyB, ratio)
	c.offAxis1.WarmStart(c.bodyA, c.bodyB, ratio)
	c.offAxis2.WarmStart(c.bodyA, c.bodyB, ratio)
	if c.hasLimit {
		c.limit.WarmStart(c.bodyA, c.bodyB, ratio)
	}
}

func (c *HingeConstraint) SolveVelocity() bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolveVelocity(c.bodyA, c.bodyB)
	applied = c.offAxis1.SolveVelocity(c.bodyA, c.bodyB) || applied
	applied = c.offAxis2.SolveVelocity(c.bodyA, c.bodyB) || applied
	if c.hasLimit {
		applied = c.limit.SolveVelocity(c.bodyA, c.bodyB) || applied
	}
	return applied
}

func (c *HingeConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolvePosition(c.bodyA, c.bodyB, baumgarte)
	if c.hasLimit {
		applied = c.limit.SolvePosition(c.bodyA, c.bodyB, c.currentAngle(), baumgarte) || applied
	}
	return applied
}

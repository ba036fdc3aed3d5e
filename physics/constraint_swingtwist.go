// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// SwingTwistConstraint pins an anchor point and separately limits swing
// (cone) and twist (rotation about the twist axis) relative to a
// reference orientation (spec.md §4.6: "SwingTwist | PointPart + swing
// limit + twist limit | Decomposes residual quaternion into swing and
// twist components").
type SwingTwistConstraint struct {
	constraintBase
	point            *PointPart
	swingLimit       *AnglePart
	twistLimit       *AnglePart
	r1Local, r2Local *lin.V3
	twistLocalA      *lin.V3
	refLocalA        *lin.V3
	bindResidual     *lin.Q
	swingHalfAngle   float64
}

// SwingTwistConstraintSettings binds a swing/twist limit at a world
// anchor with the twist axis expressed in bodyA's frame, a swing
// half-angle in radians, and a symmetric twist limit in radians.
type SwingTwistConstraintSettings struct {
	ConstraintSettings
	WorldAnchor     *lin.V3
	WorldTwistAxis  *lin.V3
	SwingHalfAngle  float64
	TwistHalfAngle  float64
}

// NewSwingTwistConstraint builds a SwingTwistConstraint. Swing and twist
// are measured from bodyA's bind-time twist axis and reference
// perpendicular, rotated by each body's current orientation. The stored
// bindResidual is not read, and the relative orientation is not
// decomposed into swing and twist quaternions.
func NewSwingTwistConstraint(s SwingTwistConstraintSettings) *SwingTwistConstraint {
	axis := lin.NewV3().Set(s.WorldTwistAxis).Unit()
	perp := arbitraryPerpendicular(axis)
	bInv := lin.NewQ().Inv(s.BodyB.rot)
	return &SwingTwistConstraint{
		constraintBase: newConstraintBase(ConstraintSwingTwist, s.ConstraintSettings),
		point:          NewPointPart(),
		swingLimit:     NewAnglePart(math.Cos(s.SwingHalfAngle), math.Inf(1)),
		twistLimit:     NewAnglePart(-s.TwistHalfAngle, s.TwistHalfAngle),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
		twistLocalA:    localAxis(s.BodyA, axis),
		refLocalA:      localAxis(s.BodyA, perp),
		bindResidual:   lin.NewQ().Mult(bInv, s.BodyA.rot),
		swingHalfAngle: s.SwingHalfAngle,
	}
}

func (c *SwingTwistConstraint) axes() (twistA, twistB, refA, refB *lin.V3) {
	twistA = lin.NewV3().MultvQ(c.twistLocalA, c.bodyA.rot).Unit()
	twistB = lin.NewV3().MultvQ(c.twistLocalA, c.bodyB.rot).Unit()
	refA = lin.NewV3().MultvQ(c.refLocalA, c.bodyA.rot)
	refB = lin.NewV3().MultvQ(c.refLocalA, c.bodyB.rot)
	return
}

// twistAngle measures rotation of bodyB's reference perpendicular about
// the shared twist axis relative to bodyA's, after projecting both onto
// the plane orthogonal to the twist axis (removing the swing component).
func (c *SwingTwistConstraint) twistAngle(twistA, refA, refB *lin.V3) float64 {
	projB := lin.NewV3().Scale(twistA, refB.Dot(twistA))
	planarB := lin.NewV3().Sub(refB, projB)
	if planarB.LenSqr() < 1e-10 {
		return 0
	}
	planarB.Unit()
	cosT := refA.Dot(planarB)
	sinT := twistA.Dot(lin.NewV3().Cross(refA, planarB))
	return math.Atan2(sinT, cosT)
}

func (c *SwingTwistConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	c.point.Setup(c.bodyA, c.bodyB, c.r1Local, c.r2Local)
	twistA, twistB, refA, refB := c.axes()
	cosSwing := twistA.Dot(twistB)
	swingAxis := lin.NewV3().Cross(twistB, twistA)
	if swingAxis.LenSqr() < 1e-10 {
		swingAxis = lin.NewV3().Set(twistA)
	} else {
		swingAxis.Unit()
	}
	c.swingLimit.Setup(c.bodyA, c.bodyB, swingAxis, false, cosSwing)
	c.twistLimit.Setup(c.bodyA, c.bodyB, twistA, false, c.twistAngle(twistA, refA, refB))
}

func (c *SwingTwistConstraint) WarmStart(ratio float64) {
	if !c.enabled {
		return
	}
	c.point.WarmStart(c.bodyA, c.bodyB, ratio)
	c.swingLimit.WarmStart(c.bodyA, c.bodyB, ratio)
	c.twistLimit.WarmStart(c.bodyA, c.bodyB, ratio)
}

func (c *SwingTwistConstraint) SolveVelocity() bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolveVelocity(c.bodyA, c.bodyB)
	applied = c.swingLimit.SolveVelocity(c.bodyA, c.bodyB) || applied
	applied = c.twistLimit.SolveVelocity(c.bodyA, c.bodyB) || applied
	return applied
}

func (c *SwingTwistConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolvePosition(c.bodyA, c.bodyB, baumgarte)
	twistA, _, refA, refB := c.axes()
	cosSwing := twistA.Dot(lin.NewV3().MultvQ(c.twistLocalA, c.bodyB.rot).Unit())
	applied = c.swingLimit.SolvePosition(c.bodyA, c.bodyB, cosSwing, baumgarte) || applied
	applied = c.twistLimit.SolvePosition(c.bodyA, c.bodyB, c.twistAngle(twistA, refA, refB), baumgarte) || applied
	return applied
}

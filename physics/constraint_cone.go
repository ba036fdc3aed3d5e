// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// ConeConstraint pins an anchor point and limits the half-angle between
// each body's twist axis (spec.md §4.6: "Cone | PointPart + limited
// AnglePart | Twist axes t1, t2 in each body; constraint t1.t2 >=
// cos(theta/2); rotation axis t2 x t1, fallback to previous axis if
// degenerate").
type ConeConstraint struct {
	constraintBase
	point              *PointPart
	limit              *AnglePart
	r1Local, r2Local   *lin.V3
	twistLocalA, twistLocalB *lin.V3
	halfAngle          float64
	lastAxis           *lin.V3
}

// ConeConstraintSettings binds a cone limit at a world anchor with twist
// axes on each body and a half-angle in radians.
type ConeConstraintSettings struct {
	ConstraintSettings
	WorldAnchor          *lin.V3
	WorldTwistAxisA      *lin.V3
	WorldTwistAxisB      *lin.V3
	HalfAngle            float64
}

// NewConeConstraint builds a ConeConstraint.
func NewConeConstraint(s ConeConstraintSettings) *ConeConstraint {
	return &ConeConstraint{
		constraintBase: newConstraintBase(ConstraintCone, s.ConstraintSettings),
		point:          NewPointPart(),
		limit:          NewAnglePart(math.Cos(s.HalfAngle), math.Inf(1)),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
		twistLocalA:    localAxis(s.BodyA, lin.NewV3().Set(s.WorldTwistAxisA).Unit()),
		twistLocalB:    localAxis(s.BodyB, lin.NewV3().Set(s.WorldTwistAxisB).Unit()),
		halfAngle:      s.HalfAngle,
		lastAxis:       lin.NewV3().Set(s.WorldTwistAxisA).Unit(),
	}
}

// rotationAxis returns t2 x t1 (the axis the limit impulse acts about),
// falling back to the last valid axis when the twist vectors are nearly
// parallel (spec.md §4.6).
func (c *ConeConstraint) rotationAxis(t1, t2 *lin.V3) *lin.V3 {
	axis := lin.NewV3().Cross(t2, t1)
	if axis.LenSqr() < 1e-10 {
		return lin.NewV3().Set(c.lastAxis)
	}
	axis.Unit()
	c.lastAxis.Set(axis)
	return axis
}

func (c *ConeConstraint) twistAxes() (t1, t2 *lin.V3, cosAngle float64) {
	t1 = lin.NewV3().MultvQ(c.twistLocalA, c.bodyA.rot).Unit()
	t2 = lin.NewV3().MultvQ(c.twistLocalB, c.bodyB.rot).Unit()
	cosAngle = t1.Dot(t2)
	return
}

func (c *ConeConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	c.point.Setup(c.bodyA, c.bodyB, c.r1Local, c.r2Local)
	t1, t2, cosAngle := c.twistAxes()
	axis := c.rotationAxis(t1, t2)
	c.limit.Setup(c.bodyA, c.bodyB, axis, false, cosAngle)
}

func (c *ConeConstraint) WarmStart(ratio float64) {
	if !c.enabled {
		return
	}
	c.point.WarmStart(c.bodyA, c.bodyB, ratio)
	c.limit.WarmStart(c.bodyA, c.bodyB, ratio)
}

func (c *ConeConstraint) SolveVelocity() bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolveVelocity(c.bodyA, c.bodyB)
	return c.limit.SolveVelocity(c.bodyA, c.bodyB) || applied
}

func (c *ConeConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolvePosition(c.bodyA, c.bodyB, baumgarte)
	_, _, cosAngle := c.twistAxes()
	return c.limit.SolvePosition(c.bodyA, c.bodyB, cosAngle, baumgarte) || applied
}

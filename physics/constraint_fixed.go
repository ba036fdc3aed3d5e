// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// FixedConstraint welds two bodies together at a point and orientation
// (spec.md §4.6: "Fixed | PointPart + RotationEulerPart | Stores
// invInitialOrientation = q_B^-1 * q_A at bind time in body-local
// terms").
type FixedConstraint struct {
	constraintBase
	point            *PointPart
	rotation         *RotationEulerPart
	r1Local, r2Local *lin.V3
	bindResidual     *lin.Q
}

// FixedConstraintSettings binds a weld at a world anchor, capturing the
// relative orientation at construction time.
type FixedConstraintSettings struct {
	ConstraintSettings
	WorldAnchor *lin.V3
}

// NewFixedConstraint builds a FixedConstraint.
func NewFixedConstraint(s FixedConstraintSettings) *FixedConstraint {
	bInv := lin.NewQ().Inv(s.BodyB.rot)
	return &FixedConstraint{
		constraintBase: newConstraintBase(ConstraintFixed, s.ConstraintSettings),
		point:          NewPointPart(),
		rotation:       NewRotationEulerPart(),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
		bindResidual:   lin.NewQ().Mult(bInv, s.BodyA.rot),
	}
}

func (c *FixedConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	c.point.Setup(c.bodyA, c.bodyB, c.r1Local, c.r2Local)
	c.rotation.Setup(c.bodyA, c.bodyB)
}

func (c *FixedConstraint) WarmStart(ratio float64) {
	if !c.enabled {
		return
	}
	c.point.WarmStart(c.bodyA, c.bodyB, ratio)
	c.rotation.WarmStart(c.bodyA, c.bodyB, ratio)
}

func (c *FixedConstraint) SolveVelocity() bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolveVelocity(c.bodyA, c.bodyB)
	return c.rotation.SolveVelocity(c.bodyA, c.bodyB) || applied
}

func (c *FixedConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	applied := c.point.SolvePosition(c.bodyA, c.bodyB, baumgarte)
	return c.rotation.SolvePosition(c.bodyA, c.bodyB, c.bindResidual, baumgarte) || applied
}

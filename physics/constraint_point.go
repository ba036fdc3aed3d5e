// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// PointConstraint pins a point on bodyA to a point on bodyB, leaving all
// rotational freedom (spec.md §4.6: "Point | PointPart | Anchor in world
// or local space on create").
type PointConstraint struct {
	constraintBase
	part           *PointPart
	r1Local, r2Local *lin.V3
}

// PointConstraintSettings binds the constraint at a single world-space
// anchor shared by both bodies at construction time.
type PointConstraintSettings struct {
	ConstraintSettings
	WorldAnchor *lin.V3
}

// NewPointConstraint builds a PointConstraint, converting the world
// anchor to each body's local frame (spec.md §4.6 construction rule).
func NewPointConstraint(s PointConstraintSettings) *PointConstraint {
	return &PointConstraint{
		constraintBase: newConstraintBase(ConstraintPoint, s.ConstraintSettings),
		part:           NewPointPart(),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
	}
}

func (c *PointConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	c.part.Setup(c.bodyA, c.bodyB, c.r1Local, c.r2Local)
}

func (c *PointConstraint) WarmStart(ratio float64) {
	if c.enabled {
		c.part.WarmStart(c.bodyA, c.bodyB, ratio)
	}
}

func (c *PointConstraint) SolveVelocity() bool {
	return c.enabled && c.part.SolveVelocity(c.bodyA, c.bodyB)
}

func (c *PointConstraint) SolvePosition(baumgarte float64) bool {
	return c.enabled && c.part.SolvePosition(c.bodyA, c.bodyB, baumgarte)
}

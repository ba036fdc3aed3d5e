// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// DistanceConstraint holds two anchor points a fixed distance apart along
// the axis connecting them (spec.md §4.6: "Distance | AnglePart-like (1D
// along connecting axis) | Rest length, spring-damper optional").
type DistanceConstraint struct {
	constraintBase
	part             *AnglePart
	r1Local, r2Local *lin.V3
	restLength       float64
}

// DistanceConstraintSettings binds a rest length between two local
// anchors (world-space at construction time, converted to local here).
type DistanceConstraintSettings struct {
	ConstraintSettings
	WorldAnchorA, WorldAnchorB *lin.V3
	RestLength                 float64
}

// NewDistanceConstraint builds a DistanceConstraint between two
// world-space anchors, one on each body, held RestLength apart.
func NewDistanceConstraint(s DistanceConstraintSettings) *DistanceConstraint {
	return &DistanceConstraint{
		constraintBase: newConstraintBase(ConstraintDistance, s.ConstraintSettings),
		part:           NewAnglePart(s.RestLength, s.RestLength),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchorA),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchorB),
		restLength:     s.RestLength,
	}
}

func (c *DistanceConstraint) anchors() (worldA, worldB, axis *lin.V3, dist float64) {
	worldA = lin.NewV3().Add(c.bodyA.pos, lin.NewV3().MultvQ(c.r1Local, c.bodyA.rot))
	worldB = lin.NewV3().Add(c.bodyB.pos, lin.NewV3().MultvQ(c.r2Local, c.bodyB.rot))
	delta := lin.NewV3().Sub(worldB, worldA)
	dist = delta.Len()
	if dist < 1e-9 {
		axis = lin.NewV3S(1, 0, 0)
	} else {
		axis = delta.Scale(delta, 1/dist)
	}
	return
}

func (c *DistanceConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	_, _, axis, dist := c.anchors()
	c.part.Setup(c.bodyA, c.bodyB, axis, true, dist)
}

func (c *DistanceConstraint) WarmStart(ratio float64) {
	if c.enabled {
		c.part.WarmStart(c.bodyA, c.bodyB, ratio)
	}
}

func (c *DistanceConstraint) SolveVelocity() bool {
	return c.enabled && c.part.SolveVelocity(c.bodyA, c.bodyB)
}

func (c *DistanceConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	_, _, _, dist := c.anchors()
	return c.part.SolvePosition(c.bodyA, c.bodyB, dist, baumgarte)
}

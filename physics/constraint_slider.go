// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// SliderConstraint allows translation along a single shared axis, holding
// the two bodies' orientations locked together and the two off-axis
// translations pinned (spec.md §4.6: "Slider | 2 translational + 3
// rotational + 1 limit | One free translational axis").
type SliderConstraint struct {
	constraintBase
	offAxis1, offAxis2 *AnglePart // translational, perpendicular to the slide axis
	rotation           *RotationEulerPart
	limit              *AnglePart
	r1Local, r2Local   *lin.V3
	axisLocalA         *lin.V3
	refLocalA          *lin.V3
	bindResidual       *lin.Q
	hasLimit           bool
}

// SliderConstraintSettings binds a slider at a world anchor and slide
// axis, with an optional [lower, upper] translation limit.
type SliderConstraintSettings struct {
	ConstraintSettings
	WorldAnchor            *lin.V3
	WorldAxis              *lin.V3
	LowerLimit, UpperLimit float64
	HasLimit               bool
}

// NewSliderConstraint builds a SliderConstraint, storing the bind-time
// residual orientation q_B^-1 * q_A the same way Fixed does.
func NewSliderConstraint(s SliderConstraintSettings) *SliderConstraint {
	axis := lin.NewV3().Set(s.WorldAxis).Unit()
	perp := arbitraryPerpendicular(axis)
	lower, upper := s.LowerLimit, s.UpperLimit
	if !s.HasLimit {
		lower, upper = math.Inf(-1), math.Inf(1)
	}
	bInv := lin.NewQ().Inv(s.BodyB.rot)
	return &SliderConstraint{
		constraintBase: newConstraintBase(ConstraintSlider, s.ConstraintSettings),
		offAxis1:       NewAnglePart(0, 0),
		offAxis2:       NewAnglePart(0, 0),
		rotation:       NewRotationEulerPart(),
		limit:          NewAnglePart(lower, upper),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
		axisLocalA:     localAxis(s.BodyA, axis),
		refLocalA:      localAxis(s.BodyA, perp),
		bindResidual:   lin.NewQ().Mult(bInv, s.BodyA.rot),
		hasLimit:       s.HasLimit,
	}
}

func (c *SliderConstraint) worldAxis() (axis, perp1, perp2 *lin.V3) {
	axis = lin.NewV3().MultvQ(c.axisLocalA, c.bodyA.rot).Unit()
	ref := lin.NewV3().MultvQ(c.refLocalA, c.bodyA.rot)
	perp2 = lin.NewV3().Cross(axis, ref).Unit()
	perp1 = lin.NewV3().Cross(perp2, axis).Unit()
	return
}

func (c *SliderConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	axis, perp1, perp2 := c.worldAxis()
	anchorA := lin.NewV3().Add(c.bodyA.pos, lin.NewV3().MultvQ(c.r1Local, c.bodyA.rot))
	anchorB := lin.NewV3().Add(c.bodyB.pos, lin.NewV3().MultvQ(c.r2Local, c.bodyB.rot))
	delta := lin.NewV3().Sub(anchorB, anchorA)
	c.offAxis1.Setup(c.bodyA, c.bodyB, perp1, true, 0)
	c.offAxis2.Setup(c.bodyA, c.bodyB, perp2, true, 0)
	c.rotation.Setup(c.bodyA, c.bodyB)
	if c.hasLimit {
		c.limit.Setup(c.bodyA, c.bodyB, axis, true, axis.Dot(delta))
	}
}

func (c *SliderConstraint) WarmStart(ratio float64) {
	if !c.enabled {
		return
	}
	c.offAxis1.WarmStart(c.bodyA, c.bodyB, ratio)
	c.offAxis2.WarmStart(c.bodyA, c.bodyB, ratio)
	c.rotation.WarmStart(c.bodyA, c.bodyB, ratio)
	if c.hasLimit {
		c.limit.WarmStart(c.bodyA, c.bodyB, ratio)
	}
}

func (c *SliderConstraint) SolveVelocity() bool {
	if !c.enabled {
		return false
	}
	applied := c.offAxis1.SolveVelocity(c.bodyA, c.bodyB)
	applied = c.offAxis2.SolveVelocity(c.bodyA, c.bodyB) || applied
	applied = c.rotation.SolveVelocity(c.bodyA, c.bodyB) || applied
	if c.hasLimit {
		applied = c.limit.SolveVelocity(c.bodyA, c.bodyB) || applied
	}
	return applied
}

func (c *SliderConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	applied := c.rotation.SolvePosition(c.bodyA, c.bodyB, c.bindResidual, baumgarte)
	anchorA := lin.NewV3().Add(c.bodyA.pos, lin.NewV3().MultvQ(c.r1Local, c.bodyA.rot))
	anchorB := lin.NewV3().Add(c.bodyB.pos, lin.NewV3().MultvQ(c.r2Local, c.bodyB.rot))
	delta := lin.NewV3().Sub(anchorB, anchorA)
	axis, perp1, perp2 := c.worldAxis()
	applied = c.offAxis1.SolvePosition(c.bodyA, c.bodyB, perp1.Dot(delta), baumgarte) || applied
	applied = c.offAxis2.SolvePosition(c.bodyA, c.bodyB, perp2.Dot(delta), baumgarte) || applied
	if c.hasLimit {
		applied = c.limit.SolvePosition(c.bodyA, c.bodyB, axis.Dot(delta), baumgarte) || applied
	}
	return applied
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// SixDOFConstraint is the union of every other joint: independent per-axis
// translation limits and per-axis rotation limits about bodyA's local
// frame, each axis locked, free or ranged on its own (spec.md §4.6:
// "SixDOF | PointPart + RotationEulerPart + per-axis translational and
// rotational limits | The union of all other joints").
//
// Unlike Hinge/Slider/Fixed, which each always pin some DOFs completely
// via PointPart/RotationEulerPart alongside a handful of AngleParts, a
// SixDOF joint composes six independent AngleParts and nothing else: each
// one's own [Lower, Upper] already decides its behavior (Lower == Upper
// locks that single axis bilaterally, Lower < Upper ranges it, +-Inf on
// both sides frees it — see AnglePart's lambdaRange). A constant full
// PointPart/RotationEulerPart lock underneath the per-axis parts would
// pin every axis regardless of its AxisLimit, since the full lock drives
// the anchor/orientation error to zero before any per-axis limit could
// ever engage.
type SixDOFConstraint struct {
	constraintBase
	translation      [3]*AnglePart
	rotationLimit    [3]*AnglePart
	r1Local, r2Local *lin.V3
	bindResidual     *lin.Q
	localAxes        [3]*lin.V3 // bodyA-local X, Y, Z reference axes
}

// AxisLimit configures one translational or rotational degree of freedom.
// Free leaves both bounds at +-Inf; locked sets lower == upper == 0 (any
// other lower < upper pair ranges the axis between the two).
type AxisLimit struct {
	Lower, Upper float64
}

// SixDOFConstraintSettings binds a SixDOF joint at a world anchor, with
// independent limits for each of the three translational and three
// rotational axes (expressed in bodyA's local frame at bind time).
type SixDOFConstraintSettings struct {
	ConstraintSettings
	WorldAnchor         *lin.V3
	TranslationLimits   [3]AxisLimit
	RotationLimits      [3]AxisLimit
}

// NewSixDOFConstraint builds a SixDOFConstraint.
func NewSixDOFConstraint(s SixDOFConstraintSettings) *SixDOFConstraint {
	bInv := lin.NewQ().Inv(s.BodyB.rot)
	c := &SixDOFConstraint{
		constraintBase: newConstraintBase(ConstraintSixDOF, s.ConstraintSettings),
		r1Local:        localAnchor(s.BodyA, s.WorldAnchor),
		r2Local:        localAnchor(s.BodyB, s.WorldAnchor),
		bindResidual:   lin.NewQ().Mult(bInv, s.BodyA.rot),
		localAxes: [3]*lin.V3{
			localAxis(s.BodyA, lin.NewV3S(1, 0, 0)),
			localAxis(s.BodyA, lin.NewV3S(0, 1, 0)),
			localAxis(s.BodyA, lin.NewV3S(0, 0, 1)),
		},
	}
	for i := 0; i < 3; i++ {
		c.translation[i] = NewAnglePart(s.TranslationLimits[i].Lower, s.TranslationLimits[i].Upper)
		c.rotationLimit[i] = NewAnglePart(s.RotationLimits[i].Lower, s.RotationLimits[i].Upper)
	}
	return c
}

func (c *SixDOFConstraint) worldAxes() [3]*lin.V3 {
	return [3]*lin.V3{
		lin.NewV3().MultvQ(c.localAxes[0], c.bodyA.rot).Unit(),
		lin.NewV3().MultvQ(c.localAxes[1], c.bodyA.rot).Unit(),
		lin.NewV3().MultvQ(c.localAxes[2], c.bodyA.rot).Unit(),
	}
}

func (c *SixDOFConstraint) anchorDelta() *lin.V3 {
	anchorA := lin.NewV3().Add(c.bodyA.pos, lin.NewV3().MultvQ(c.r1Local, c.bodyA.rot))
	anchorB := lin.NewV3().Add(c.bodyB.pos, lin.NewV3().MultvQ(c.r2Local, c.bodyB.rot))
	return lin.NewV3().Sub(anchorB, anchorA)
}

// residualAngles returns the relative-rotation vector e = 2*vec(qB *
// bindResidual^-1 * qA^-1) projected onto bodyA's three local axes, used
// as the per-axis rotational limit error.
func (c *SixDOFConstraint) residualAngles(axes [3]*lin.V3) [3]float64 {
	qaInv := lin.NewQ().Inv(c.bodyA.rot)
	residual := lin.NewQ().Mult(c.bindResidual, qaInv)
	residual = lin.NewQ().Mult(c.bodyB.rot, residual)
	e := lin.NewV3S(2*residual.X, 2*residual.Y, 2*residual.Z)
	return [3]float64{axes[0].Dot(e), axes[1].Dot(e), axes[2].Dot(e)}
}

func (c *SixDOFConstraint) SetupVelocity() {
	if !c.enabled {
		return
	}
	axes := c.worldAxes()
	delta := c.anchorDelta()
	angles := c.residualAngles(axes)
	for i := 0; i < 3; i++ {
		c.translation[i].Setup(c.bodyA, c.bodyB, axes[i], true, axes[i].Dot(delta))
		c.rotationLimit[i].Setup(c.bodyA, c.bodyB, axes[i], false, angles[i])
	}
}

func (c *SixDOFConstraint) WarmStart(ratio float64) {
	if !c.enabled {
		return
	}
	for i := 0; i < 3; i++ {
		c.translation[i].WarmStart(c.bodyA, c.bodyB, ratio)
		c.rotationLimit[i].WarmStart(c.bodyA, c.bodyB, ratio)
	}
}

func (c *SixDOFConstraint) SolveVelocity() bool {
	if !c.enabled {
		return false
	}
	applied := false
	for i := 0; i < 3; i++ {
		applied = c.translation[i].SolveVelocity(c.bodyA, c.bodyB) || applied
		applied = c.rotationLimit[i].SolveVelocity(c.bodyA, c.bodyB) || applied
	}
	return applied
}

func (c *SixDOFConstraint) SolvePosition(baumgarte float64) bool {
	if !c.enabled {
		return false
	}
	axes := c.worldAxes()
	delta := c.anchorDelta()
	angles := c.residualAngles(axes)
	applied := false
	for i := 0; i < 3; i++ {
		applied = c.translation[i].SolvePosition(c.bodyA, c.bodyB, axes[i].Dot(delta), baumgarte) || applied
		applied = c.rotationLimit[i].SolvePosition(c.bodyA, c.bodyB, angles[i], baumgarte) || applied
	}
	return applied
}

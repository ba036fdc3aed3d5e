// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/forgephys/rigid/math/lin"
)

// A HingeConstraint should drive the two anchor points together and hold
// the off-axis rotations locked, the same anchor-convergence property
// PointPart alone gives a point constraint.
func TestHingeConstraintConvergesAnchor(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(-1, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(1, 0, 0))
	a.angVel.Set(lin.NewV3S(0, 1, 0))

	hc := NewHingeConstraint(HingeConstraintSettings{
		ConstraintSettings: ConstraintSettings{BodyA: a, BodyB: b},
		WorldAnchor:        lin.NewV3S(0, 0, 0),
		WorldAxis:          lin.NewV3S(0, 0, 1),
	})
	for i := 0; i < 20; i++ {
		hc.SetupVelocity()
		hc.WarmStart(1)
		hc.SolveVelocity()
	}
	anchorA := lin.NewV3().Add(a.pos, lin.NewV3().MultvQ(hc.r1Local, a.rot))
	anchorB := lin.NewV3().Add(b.pos, lin.NewV3().MultvQ(hc.r2Local, b.rot))
	gap := lin.NewV3().Sub(anchorA, anchorB)
	va := a.velocityAtWorldPoint(anchorA)
	vb := b.velocityAtWorldPoint(anchorB)
	rel := lin.NewV3().Sub(va, vb)
	if rel.Len() > 1e-3 {
		t.Errorf("expected converged anchor velocities, residual %s (gap %s)", dumpV3(rel), dumpV3(gap))
	}
}

// An unlimited hinge must never report the angle limit as active.
func TestHingeConstraintWithoutLimitNeverApplies(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(-1, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(1, 0, 0))
	hc := NewHingeConstraint(HingeConstraintSettings{
		ConstraintSettings: ConstraintSettings{BodyA: a, BodyB: b},
		WorldAnchor:        lin.NewV3S(0, 0, 0),
		WorldAxis:          lin.NewV3S(0, 0, 1),
	})
	if hc.hasLimit {
		t.Fatal("expected no limit when HasLimit is left false")
	}
	hc.SetupVelocity()
	if hc.limit.IsActive() {
		t.Error("an unlimited hinge's limit part should never be set up")
	}
}

// FixedConstraint should hold a welded body's relative orientation fixed
// when SolvePosition corrects away an initial angular velocity.
func TestFixedConstraintStopsRelativeSpin(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(-1, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(1, 0, 0))
	a.angVel.Set(lin.NewV3S(0, 0, 2))

	fc := NewFixedConstraint(FixedConstraintSettings{
		ConstraintSettings: ConstraintSettings{BodyA: a, BodyB: b},
		WorldAnchor:        lin.NewV3S(0, 0, 0),
	})
	for i := 0; i < 20; i++ {
		fc.SetupVelocity()
		fc.WarmStart(1)
		fc.SolveVelocity()
	}
	relAngVel := lin.NewV3().Sub(a.angVel, b.angVel)
	if relAngVel.Len() > 1e-3 {
		t.Errorf("expected the weld to remove relative spin, residual %s", dumpV3(relAngVel))
	}
}

// SliderConstraint must keep both off-axis translations pinned: a body
// nudged perpendicular to the slide axis should have that motion
// corrected back out.
func TestSliderConstraintPinsOffAxisMotion(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(-1, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(1, 0, 0))
	b.linVel.Set(lin.NewV3S(0, 3, 0)) // off the slide axis (x).

	sc := NewSliderConstraint(SliderConstraintSettings{
		ConstraintSettings: ConstraintSettings{BodyA: a, BodyB: b},
		WorldAnchor:        lin.NewV3S(0, 0, 0),
		WorldAxis:          lin.NewV3S(1, 0, 0),
	})
	for i := 0; i < 20; i++ {
		sc.SetupVelocity()
		sc.WarmStart(1)
		sc.SolveVelocity()
	}
	_, perp1, perp2 := sc.worldAxis()
	relVel := lin.NewV3().Sub(a.linVel, b.linVel)
	if d := relVel.Dot(perp1); d > 1e-3 || d < -1e-3 {
		t.Errorf("expected off-axis (perp1) relative velocity removed, got %f", d)
	}
	if d := relVel.Dot(perp2); d > 1e-3 || d < -1e-3 {
		t.Errorf("expected off-axis (perp2) relative velocity removed, got %f", d)
	}
}

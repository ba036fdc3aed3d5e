// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"
	"testing"

	"github.com/forgephys/rigid/math/lin"
)

func newDynamicTestBody(pos *lin.V3) *Body {
	b, err := newBody(makeBodyId(0, 1), &BodySettings{
		MotionType: Dynamic,
		Shape:      NewSphereShape(1),
		Density:    1,
		Position:   pos,
	})
	if err != nil {
		panic(err)
	}
	return b
}

// PointPart should drive the relative velocity at the anchor to zero
// after enough Gauss-Seidel iterations, the same property the teacher's
// pbd point constraint converges to.
func TestPointPartConvergesVelocity(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(-1, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(1, 0, 0))
	a.linVel.Set(lin.NewV3S(0, 5, 0))

	p := NewPointPart()
	p.Setup(a, b, lin.NewV3S(1, 0, 0), lin.NewV3S(-1, 0, 0))
	for i := 0; i < 20; i++ {
		p.SolveVelocity(a, b)
	}
	va := a.velocityAtWorldPoint(lin.NewV3S(0, 0, 0))
	vb := b.velocityAtWorldPoint(lin.NewV3S(0, 0, 0))
	rel := lin.NewV3().Sub(va, vb)
	if rel.Len() > 1e-6 {
		t.Errorf("expected anchor velocities to converge, residual %s", dumpV3(rel))
	}
}

// lambdaRange must treat lower==upper as an unbounded bilateral equality
// constraint rather than clamping the impulse to the numeric value of the
// target itself (the unit-mismatch bug this part's design avoids).
func TestAnglePartBilateralRangeIsUnbounded(t *testing.T) {
	ap := NewAnglePart(2.5, 2.5)
	ap.currentValue = 2.5
	lo, hi, active := ap.lambdaRange()
	if !active || lo != math.Inf(-1) || hi != math.Inf(1) {
		t.Errorf("bilateral range should be unbounded and active, got (%v, %v, %v)", lo, hi, active)
	}
}

func TestAnglePartOneSidedRangePushesFromBelow(t *testing.T) {
	ap := NewAnglePart(0, math.Inf(1))
	ap.currentValue = -0.1
	lo, hi, active := ap.lambdaRange()
	if !active || lo != 0 || hi != math.Inf(1) {
		t.Errorf("below-lower range should push up from zero, got (%v, %v, %v)", lo, hi, active)
	}

	ap.currentValue = 0.1
	_, _, active = ap.lambdaRange()
	if active {
		t.Error("inside the free range the limit should not be active")
	}
}

func TestAnglePartOneSidedRangePushesFromAbove(t *testing.T) {
	ap := NewAnglePart(math.Inf(-1), 0)
	ap.currentValue = 0.1
	lo, hi, active := ap.lambdaRange()
	if !active || lo != math.Inf(-1) || hi != 0 {
		t.Errorf("above-upper range should push down to zero, got (%v, %v, %v)", lo, hi, active)
	}
}

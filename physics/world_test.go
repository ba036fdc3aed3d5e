// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"fmt"
	"testing"

	"github.com/forgephys/rigid/math/lin"
)

func newTestWorld() *World {
	s := DefaultWorldSettings()
	return NewWorld(s)
}

func TestCreateDestroyBodyCascadesConstraints(t *testing.T) {
	w := newTestWorld()
	a, err := w.CreateBody(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1})
	if err != nil {
		t.Fatalf("create body a: %v", err)
	}
	b, err := w.CreateBody(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1, Position: lin.NewV3S(3, 0, 0)})
	if err != nil {
		t.Fatalf("create body b: %v", err)
	}
	bodyA, _ := w.Body(a)
	bodyB, _ := w.Body(b)
	cid, err := w.CreateDistanceConstraint(DistanceConstraintSettings{
		ConstraintSettings: ConstraintSettings{BodyA: bodyA, BodyB: bodyB},
		WorldAnchorA:       lin.NewV3(),
		WorldAnchorB:       lin.NewV3S(3, 0, 0),
		RestLength:         3,
	})
	if err != nil {
		t.Fatalf("create distance constraint: %v", err)
	}
	if _, ok := w.Constraint(cid); !ok {
		t.Fatal("constraint should resolve right after creation")
	}
	w.DestroyBody(a)
	if _, ok := w.Constraint(cid); ok {
		t.Error("destroying a referenced body should cascade-destroy its constraints")
	}
	if _, ok := w.Body(a); ok {
		t.Error("stale body id should no longer resolve")
	}
}

// A sphere dropped above a static slab should come to rest at the
// expected height instead of sinking through or staying aloft, mirroring
// the teacher's TestSphereAt (physics/physics_test.go).
func TestSphereRestsOnSlab(t *testing.T) {
	w := newTestWorld()
	w.settings.DefaultVelocitySteps = 8
	w.settings.DefaultPositionSteps = 3

	slabId, err := w.CreateBody(&BodySettings{
		MotionType: Static,
		Shape:      NewBoxShape(50, 1, 50),
		Position:   lin.NewV3S(0, -1, 0),
	})
	if err != nil {
		t.Fatalf("create slab: %v", err)
	}
	ballId, err := w.CreateBody(&BodySettings{
		MotionType: Dynamic,
		Shape:      NewSphereShape(1),
		Density:    1,
		Position:   lin.NewV3S(0, 5, 0),
	})
	if err != nil {
		t.Fatalf("create ball: %v", err)
	}
	slab, _ := w.Body(slabId)
	ball, _ := w.Body(ballId)

	dt := 1.0 / 60.0
	for step := 0; step < 300; step++ {
		depth := (slab.pos.Y + 1) - (ball.pos.Y - 1)
		var manifolds []*ContactManifold
		if depth > -0.05 {
			manifolds = []*ContactManifold{{
				BodyIdA: slabId, BodyIdB: ballId,
				Normal: lin.NewV3S(0, 1, 0),
				Points: []ContactPoint{{Position: lin.NewV3S(ball.pos.X, slab.pos.Y+1, ball.pos.Z), Depth: depth, FeatureId: 1}},
			}}
		}
		if err := w.Step(dt, manifolds); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
	}
	if ball.pos.Y < 0.5 || ball.pos.Y > 2.5 {
		t.Errorf("ball should settle near y=1 resting on the slab, got y=%s", dumpV3(ball.pos))
	}
}

func TestStepRejectsNegativeDt(t *testing.T) {
	w := newTestWorld()
	if err := w.Step(-1, nil); err == nil {
		t.Error("expected an error for negative dt")
	}
}

func TestStepIdempotentAtZeroDt(t *testing.T) {
	w := newTestWorld()
	id, _ := w.CreateBody(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1, Position: lin.NewV3S(0, 5, 0)})
	b, _ := w.Body(id)
	before := lin.NewV3().Set(b.pos)
	if err := w.Step(0, nil); err != nil {
		t.Fatalf("step(0): %v", err)
	}
	if !b.pos.Eq(before) {
		t.Errorf("dt=0 step moved the body: was %s now %s", dumpV3(before), dumpV3(b.pos))
	}
	if b.timeQuiescent != 0 {
		t.Error("dt=0 step should not advance the sleep-quiescence accumulator")
	}
}

// Testing
// ============================================================================
// Utility functions for all package testcases.

func dumpV3(v *lin.V3) string { return fmt.Sprintf("%2.1f", *v) }

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/forgephys/rigid/math/lin"
)

// A motionless dynamic body's island should sleep once it has been
// quiescent for at least timeBeforeSleep.
func TestCheckIslandSleepPutsQuiescentIslandToSleep(t *testing.T) {
	bodies := NewBodies()
	id, err := bodies.Create(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1})
	if err != nil {
		t.Fatalf("create body: %v", err)
	}
	b, _ := bodies.Lookup(id)
	isl := &Island{BodyIndices: []int{b.activeIndex}}

	// Sleeping removes the body from the active set, so the island built
	// from its old active index is only valid until then.
	dt := 0.1
	for i := 0; i < 10 && !b.sleeping; i++ {
		checkIslandSleep(isl, bodies, dt, 0.01, 0.5)
	}
	if !b.sleeping {
		t.Error("a motionless body's island should have gone to sleep")
	}
}

// A single moving body in the island should keep the whole island awake.
func TestCheckIslandSleepKeepsMovingIslandAwake(t *testing.T) {
	bodies := NewBodies()
	id, _ := bodies.Create(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1})
	b, _ := bodies.Lookup(id)
	isl := &Island{BodyIndices: []int{b.activeIndex}}

	dt := 0.1
	for i := 0; i < 10; i++ {
		b.pos.Add(b.pos, lin.NewV3S(1, 0, 0))
		checkIslandSleep(isl, bodies, dt, 0.01, 0.5)
	}
	if b.sleeping {
		t.Error("a continuously moving body should never sleep")
	}
}

func TestWakeBodyResetsConstraintWarmStart(t *testing.T) {
	bodies := NewBodies()
	aId, _ := bodies.Create(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1})
	bId, _ := bodies.Create(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1, Position: lin.NewV3S(3, 0, 0)})
	a, _ := bodies.Lookup(aId)
	b, _ := bodies.Lookup(bId)

	dc := NewDistanceConstraint(DistanceConstraintSettings{
		ConstraintSettings: ConstraintSettings{BodyA: a, BodyB: b},
		WorldAnchorA:       lin.NewV3(),
		WorldAnchorB:       lin.NewV3S(3, 0, 0),
		RestLength:         3,
	})
	dc.part.accumulated = 5
	a.constraintRefs = append(a.constraintRefs, 0)
	lookup := func(ConstraintId) (Constraint, bool) { return dc, true }

	bodies.Sleep(a)
	if !a.sleeping {
		t.Fatal("body should be sleeping before the wake test")
	}
	wakeBody(bodies, a, lookup)
	if a.sleeping {
		t.Error("wakeBody should clear the sleeping flag")
	}
	if dc.part.TotalLambda() != 0 {
		t.Error("waking a body should reset its constraints' warm-start cache")
	}
}

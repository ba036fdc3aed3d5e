// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "testing"

// newActiveTestBodies enrolls n dynamic bodies into bodies in order, so
// their activeIndex values land at the dense indices 0..n-1 that
// finalize/computeStepCounts expect to resolve through Bodies.ActiveAt.
func newActiveTestBodies(bodies *Bodies, n int) {
	for i := 0; i < n; i++ {
		if _, err := bodies.Create(&BodySettings{MotionType: Dynamic, Shape: NewSphereShape(1), Density: 1}); err != nil {
			panic(err)
		}
	}
}

// A raw contact manifold between two active bodies must not couple them
// into the same island; only a contact lifted into constraint form (or a
// user joint) does.
func TestLinkContactDoesNotUnionBodies(t *testing.T) {
	var b islandBuilder
	b.prepare(2, 1)
	b.linkContact(0, 0, 1)
	if b.find(0) == b.find(1) {
		t.Error("linkContact should not union the two bodies")
	}
}

func TestLinkConstraintUnionsBodies(t *testing.T) {
	var b islandBuilder
	b.prepare(2, 0)
	b.linkConstraint(makeConstraintId(0, ConstraintPoint, 1), 0, 1)
	if b.find(0) != b.find(1) {
		t.Error("linkConstraint should union the two bodies")
	}
}

// Three active bodies, two independent constraints: (0,1) and (2, static).
// A static body reports activeIndex -1 and must not be unioned into the
// dynamic body's island.
func TestFinalizeSeparatesIndependentIslands(t *testing.T) {
	var b islandBuilder
	b.prepare(3, 0)
	b.linkConstraint(makeConstraintId(0, ConstraintPoint, 1), 0, 1)
	b.linkConstraint(makeConstraintId(1, ConstraintPoint, 1), 2, -1)

	bodies := NewBodies()
	newActiveTestBodies(bodies, 3)
	lookup := func(ConstraintId) (Constraint, bool) { return nil, false }
	islands := b.finalize(bodies, lookup, 8, 3)
	if len(islands) != 2 {
		t.Fatalf("expected 2 islands, got %d", len(islands))
	}
	found01, found2 := false, false
	for _, isl := range islands {
		switch len(isl.BodyIndices) {
		case 2:
			found01 = true
		case 1:
			found2 = true
		}
	}
	if !found01 || !found2 {
		t.Errorf("expected one 2-body island and one 1-body island, got %+v", islands)
	}
}

// Islands must sort by descending workload (contacts + constraints).
func TestFinalizeSortsByWorkloadDescending(t *testing.T) {
	var b islandBuilder
	b.prepare(4, 2)
	b.linkConstraint(makeConstraintId(0, ConstraintPoint, 1), 0, 1)
	b.linkContact(0, 2, 3)
	b.linkContact(1, 2, 3)
	b.linkConstraint(makeConstraintId(1, ConstraintPoint, 1), 2, 3)

	bodies := NewBodies()
	newActiveTestBodies(bodies, 4)
	lookup := func(ConstraintId) (Constraint, bool) { return nil, false }
	islands := b.finalize(bodies, lookup, 8, 3)
	if len(islands) != 2 {
		t.Fatalf("expected 2 islands, got %d", len(islands))
	}
	if islands[0].workload() < islands[1].workload() {
		t.Error("islands should be sorted by descending workload")
	}
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"testing"

	"github.com/forgephys/rigid/math/lin"
)

// A contact constraint should remove approach velocity along the normal
// without reversing it into separation (the restitution-free resting
// case), mirroring the teacher's TestCollide-style direct assembly check
// (physics/physics_test.go) but through the new per-point assembly.
func TestContactConstraintStopsApproachVelocity(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(0, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(0, 2, 0))
	a.linVel.Set(lin.NewV3S(0, 5, 0)) // a approaching b from below.

	manifold := &ContactManifold{
		BodyIdA: a.id, BodyIdB: b.id,
		Normal: lin.NewV3S(0, 1, 0),
		Points: []ContactPoint{{Position: lin.NewV3S(0, 1, 0), Depth: 0, FeatureId: 1}},
	}
	cc := NewContactConstraint(a, b, manifold, 0.005, 1.0, nil)
	cc.SetupVelocity()
	for i := 0; i < 10; i++ {
		cc.SolveVelocity()
	}
	vn := relativeVelocityAlong(a, b, cc.points[0].r1, cc.points[0].r2, cc.points[0].normal)
	if vn > 1e-6 {
		t.Errorf("approach velocity should be removed, got relative normal velocity %f", vn)
	}
}

// Feature-id correlated warm-start values should carry over between two
// ContactConstraints built from manifolds sharing the same pair and
// feature id. The normal impulse only grows in SolveVelocity against an
// actual closing velocity; the point's Depth feeds no impulse and
// carries no cached lambda.
func TestContactsCarryWarmStartAcrossSteps(t *testing.T) {
	a := newDynamicTestBody(lin.NewV3S(0, 0, 0))
	b := newDynamicTestBody(lin.NewV3S(0, 2, 0))
	a.linVel.Set(lin.NewV3S(0, 5, 0))
	contacts := NewContacts(0.005, 1.0)

	manifold := &ContactManifold{
		BodyIdA: a.id, BodyIdB: b.id,
		Normal: lin.NewV3S(0, 1, 0),
		Points: []ContactPoint{{Position: lin.NewV3S(0, 1, 0), Depth: 0.01, FeatureId: 7}},
	}
	idx := contacts.Add(a, b, manifold)
	cc := contacts.At(idx)
	cc.SetupVelocity()
	cc.SolveVelocity()
	if cc.points[0].normalLambda == 0 {
		t.Fatal("expected a nonzero normal lambda after solving a closing contact")
	}
	firstLambda := cc.points[0].normalLambda
	contacts.Capture()

	contacts.Reset()
	idx2 := contacts.Add(a, b, manifold)
	cc2 := contacts.At(idx2)
	if cc2.points[0].normalLambda != firstLambda {
		t.Errorf("expected warm-start carry-over %f, got %f", firstLambda, cc2.points[0].normalLambda)
	}
}

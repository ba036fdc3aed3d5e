// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// checkIslandSleep runs the per-body quiescence test and, when every
// dynamic body in isl is a sleep candidate, puts the whole island to
// sleep (spec.md §4.4). Called once per step per island after position
// iterations (spec.md §4.9 step 6).
func checkIslandSleep(isl *Island, bodies *Bodies, dt, velocitySleepThreshold, timeBeforeSleep float64) {
	allCandidates := true
	for _, bi := range isl.BodyIndices {
		id := bodies.ActiveAt(bi)
		b, ok := bodies.Lookup(id)
		if !ok || b.motionType != Dynamic {
			continue
		}
		b.pushMotionBox()
		dx, dy, dz := b.motionBoxExtent()
		threshold := velocitySleepThreshold * timeBeforeSleep
		if dx < threshold && dy < threshold && dz < threshold {
			b.timeQuiescent += dt
		} else {
			b.timeQuiescent = 0
		}
		if b.timeQuiescent < timeBeforeSleep {
			allCandidates = false
		}
	}
	if !allCandidates {
		return
	}
	for _, bi := range isl.BodyIndices {
		id := bodies.ActiveAt(bi)
		if b, ok := bodies.Lookup(id); ok && b.motionType == Dynamic {
			bodies.Sleep(b)
		}
	}
}

// wakeBody reverses sleep for body b alone and resets the warm-start
// caches of the constraints it references (spec.md §4.4 "On wake ...
// reset warm-start caches of adjacent constraints"). Other bodies are
// not woken.
func wakeBody(bodies *Bodies, b *Body, constraintLookup func(ConstraintId) (Constraint, bool)) {
	if !b.sleeping {
		return
	}
	bodies.Wake(b)
	for _, ref := range b.constraintRefs {
		if c, ok := constraintLookup(ref); ok {
			resetConstraintWarmStart(c)
		}
	}
}

// resetConstraintWarmStart zeroes a constraint's cached impulses so a
// freshly woken pair doesn't inherit a stale warm-start (spec.md §4.4).
// Each concrete constraint owns parts directly rather than through a
// shared interface, so this type-switches over the eight kinds.
func resetConstraintWarmStart(c Constraint) {
	switch v := c.(type) {
	case *PointConstraint:
		v.part.Deactivate()
	case *DistanceConstraint:
		v.part.Deactivate()
	case *HingeConstraint:
		v.point.Deactivate()
		v.offAxis1.Deactivate()
		v.offAxis2.Deactivate()
		v.limit.Deactivate()
	case *SliderConstraint:
		v.offAxis1.Deactivate()
		v.offAxis2.Deactivate()
		v.rotation.Deactivate()
		v.limit.Deactivate()
	case *FixedConstraint:
		v.point.Deactivate()
		v.rotation.Deactivate()
	case *ConeConstraint:
		v.point.Deactivate()
		v.limit.Deactivate()
	case *SwingTwistConstraint:
		v.point.Deactivate()
		v.swingLimit.Deactivate()
		v.twistLimit.Deactivate()
	case *SixDOFConstraint:
		for i := 0; i < 3; i++ {
			v.translation[i].Deactivate()
			v.rotationLimit[i].Deactivate()
		}
	}
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "sort"

// islandNone marks a body's islandIndex before finalize assigns one.
const islandNone = -1

// inactiveLink marks a contactLinks slot that no linkContact call has
// filled. A contact or constraint whose bodies are both static or
// sleeping stores minActive's 1<<31-1 stand-in instead; finalize drops
// both kinds of slot (spec.md §4.8).
const inactiveLink = -1

// Island is one connected component of the active-body union-find graph
// after finalize: the bodies, contacts and constraints coupled together
// this step, plus the iteration counts the solver drives it with
// (spec.md §3, §4.8).
type Island struct {
	BodyIndices      []int // dense indices into the active set
	ContactIndices   []int // indices into Contacts
	ConstraintIds    []ConstraintId
	NumVelocitySteps int
	NumPositionSteps int
}

// workload is contacts + constraints, the longest-job-first sort key
// spec.md §4.8 step 6 calls for.
func (isl *Island) workload() int { return len(isl.ContactIndices) + len(isl.ConstraintIds) }

// islandBuilder accumulates the per-active-body union-find links spec.md
// §4.8 describes across one step's prepare/link*/finalize cycle.
// Grounded on idiomatic Go style rather than a teacher file: the
// teacher's solver (physics/solver.go) never built islands, solving every
// body in one global pass.
type islandBuilder struct {
	bodyLinks    []int // union-find parent per active-body dense index
	bodyIslands  []int
	contactLinks []int // per-contact minimum active index, or inactiveLink
	constraintBodyMin []int
	constraintIds     []ConstraintId
}

// prepare resets the builder for nActive active bodies and maxContacts
// manifold slots (spec.md §4.8 "prepare").
func (b *islandBuilder) prepare(nActive, maxContacts int) {
	b.bodyLinks = make([]int, nActive)
	b.bodyIslands = make([]int, nActive)
	for i := range b.bodyLinks {
		b.bodyLinks[i] = i
		b.bodyIslands[i] = islandNone
	}
	b.contactLinks = make([]int, maxContacts)
	for i := range b.contactLinks {
		b.contactLinks[i] = inactiveLink
	}
	b.constraintBodyMin = b.constraintBodyMin[:0]
	b.constraintIds = b.constraintIds[:0]
}

// find walks to the current root of i, without full-chain compression
// (spec.md §4.8: "Path-compress by lowering the caller-side bodyLinks[a]
// and bodyLinks[b] to the new shared minimum" — compression happens only
// at the two call-site entries, not along the whole chain).
func (b *islandBuilder) find(i int) int {
	for b.bodyLinks[i] != i {
		i = b.bodyLinks[i]
	}
	return i
}

// linkBodies unions the islands containing active-index a and b, making
// the larger-index root point to the smaller, then path-compresses the
// caller-side entries (spec.md §4.8 "linkBodies").
func (b *islandBuilder) linkBodies(a, bIdx int) {
	rootA := b.find(a)
	rootB := b.find(bIdx)
	if rootA == rootB {
		return
	}
	min := rootA
	if rootB < min {
		min = rootB
	}
	b.bodyLinks[rootA] = min
	b.bodyLinks[rootB] = min
	b.bodyLinks[a] = min
	b.bodyLinks[bIdx] = min
}

// linkContact records contactIndex's island-assignment minimum without
// coupling the two bodies (spec.md §4.8 "linkContact ... Does NOT call
// linkBodies"). activeIndexA/B use -1 for a static or sleeping body,
// treated as +infinity so the active side wins; a contact between two
// inactive bodies is dropped.
func (b *islandBuilder) linkContact(contactIndex, activeIndexA, activeIndexB int) {
	min := minActive(activeIndexA, activeIndexB)
	b.contactLinks[contactIndex] = min
}

// linkConstraint unions bodyA/bodyB (spec.md §4.8: "reference
// implementation DOES call linkBodies from linkContactConstraints for
// contacts it has lifted into constraint form... contact constraints
// couple; raw contact manifolds do not") and records its island minimum.
func (b *islandBuilder) linkConstraint(id ConstraintId, activeIndexA, activeIndexB int) {
	if activeIndexA >= 0 && activeIndexB >= 0 {
		b.linkBodies(activeIndexA, activeIndexB)
	}
	b.constraintIds = append(b.constraintIds, id)
	b.constraintBodyMin = append(b.constraintBodyMin, minActive(activeIndexA, activeIndexB))
}

func minActive(a, b int) int {
	if a < 0 {
		a = 1<<31 - 1
	}
	if b < 0 {
		b = 1<<31 - 1
	}
	if a < b {
		return a
	}
	return b
}

// constraintStepSource reports a constraint's velocity/position step
// overrides, used by finalize to fold them into the island's step count
// without finalize depending on the concrete Constraint types.
type constraintStepSource interface {
	stepOverrides() (velocity, position int)
}

func (b *constraintBase) stepOverrides() (int, int) {
	return b.velocityStepsOverride, b.positionStepsOverride
}

// finalize numbers islands over the active-body union-find, materializes
// Island records, maps contacts and constraints into them, computes
// per-island step counts, and sorts by descending workload (spec.md
// §4.8 "finalize").
func (b *islandBuilder) finalize(bodies *Bodies, lookupConstraint func(ConstraintId) (Constraint, bool), defaultVelocitySteps, defaultPositionSteps int) []*Island {
	var islands []*Island
	for i := range b.bodyLinks {
		if b.bodyLinks[i] == i {
			b.bodyIslands[i] = len(islands)
			islands = append(islands, &Island{})
		} else {
			b.bodyIslands[i] = b.bodyIslands[b.bodyLinks[i]]
		}
	}
	for i, islandIdx := range b.bodyIslands {
		islands[islandIdx].BodyIndices = append(islands[islandIdx].BodyIndices, i)
	}
	for c, min := range b.contactLinks {
		if min == inactiveLink || min >= len(b.bodyIslands) {
			continue
		}
		idx := b.bodyIslands[min]
		islands[idx].ContactIndices = append(islands[idx].ContactIndices, c)
	}
	for i, id := range b.constraintIds {
		min := b.constraintBodyMin[i]
		if min == inactiveLink || min >= len(b.bodyIslands) {
			continue
		}
		idx := b.bodyIslands[min]
		islands[idx].ConstraintIds = append(islands[idx].ConstraintIds, id)
	}
	for _, isl := range islands {
		isl.NumVelocitySteps, isl.NumPositionSteps = computeStepCounts(isl, bodies, lookupConstraint, defaultVelocitySteps, defaultPositionSteps)
	}
	sort.SliceStable(islands, func(i, j int) bool { return islands[i].workload() > islands[j].workload() })
	return islands
}

// computeStepCounts folds every dynamic body's and constraint's override
// into the stable combination rule max(override, override, ...,
// default_if_any_zero) (spec.md §4.8 step 5).
func computeStepCounts(isl *Island, bodies *Bodies, lookupConstraint func(ConstraintId) (Constraint, bool), defaultVelocitySteps, defaultPositionSteps int) (int, int) {
	vSteps, pSteps := 0, 0
	anyZero := false
	fold := func(v, p int) {
		if v == 0 || p == 0 {
			anyZero = true
		}
		if v > vSteps {
			vSteps = v
		}
		if p > pSteps {
			pSteps = p
		}
	}
	for _, bi := range isl.BodyIndices {
		id := bodies.ActiveAt(bi)
		body, ok := bodies.Lookup(id)
		if !ok || body.motionType != Dynamic {
			continue
		}
		fold(body.velocityStepsOverride, body.positionStepsOverride)
	}
	for _, cid := range isl.ConstraintIds {
		c, ok := lookupConstraint(cid)
		if !ok {
			continue
		}
		v, p := c.Base().stepOverrides()
		fold(v, p)
	}
	if (anyZero || vSteps == 0) && defaultVelocitySteps > vSteps {
		vSteps = defaultVelocitySteps
	}
	if (anyZero || pSteps == 0) && defaultPositionSteps > pSteps {
		pSteps = defaultPositionSteps
	}
	return vSteps, pSteps
}

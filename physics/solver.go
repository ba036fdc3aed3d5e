// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.
//
// The sequential-impulse scheme driven here is the same Projected
// Gauss-Seidel technique as
//     bullet-2.81-rev2613/src/.../btSequentialImpulseConstraintSolver.(cpp/h)
// which carries the following license:
//
//    Bullet Continuous Collision Detection and Physics Library
//    Copyright (c) 2003-2006 Erwin Coumans  http://continuousphysics.com/Bullet/
//
//    This software is provided 'as-is', without any express or implied warranty.
//    In no event will the authors be held liable for any damages arising from the use of this software.
//    Permission is granted to anyone to use this software for any purpose,
//    including commercial applications, and to alter it and redistribute it freely,
//    subject to the following restrictions:
//
//    1. The origin of this software must not be misrepresented; you must not claim that you wrote the original software.
//       If you use this software in a product, an acknowledgment in the product documentation would be appreciated but is not required.
//    2. Altered source versions must be plainly marked as such, and must not be misrepresented as being the original software.
//    3. This notice may not be removed or altered from any source distribution.

package physics

import (
	"runtime"
	"sort"
	"sync"

	"github.com/forgephys/rigid/math/lin"
)

// solverIsland holds one island's resolved list of constraints (contacts
// and joints together) plus its step counts, ready for setup/warm-start
// /iterate. Built once per step by resolveIslandConstraints and consumed
// by solveIsland, kept separate from Island so the island builder stays
// ignorant of the Constraint interface.
type solverIsland struct {
	bodyIndices  []int
	constraints  []Constraint
	numVelocity  int
	numPosition  int
}

// resolveIslandConstraints maps an Island's contact indices and constraint
// ids down to live Constraint values and orders them by priority then by
// a stable index, the determinism rule spec.md §4.9 calls for.
func resolveIslandConstraints(isl *Island, contacts *Contacts, lookupConstraint func(ConstraintId) (Constraint, bool)) *solverIsland {
	si := &solverIsland{
		bodyIndices: isl.BodyIndices,
		numVelocity: isl.NumVelocitySteps,
		numPosition: isl.NumPositionSteps,
	}
	si.constraints = make([]Constraint, 0, len(isl.ContactIndices)+len(isl.ConstraintIds))
	for _, ci := range isl.ContactIndices {
		si.constraints = append(si.constraints, contacts.At(ci))
	}
	for _, id := range isl.ConstraintIds {
		if c, ok := lookupConstraint(id); ok {
			si.constraints = append(si.constraints, c)
		}
	}
	sort.SliceStable(si.constraints, func(i, j int) bool {
		bi, bj := si.constraints[i].Base(), si.constraints[j].Base()
		if bi.priority != bj.priority {
			return bi.priority > bj.priority
		}
		return bi.id < bj.id
	})
	return si
}

// solveIsland runs one island's full per-step pipeline (spec.md §4.9):
// setup, warm-start, N velocity iterations, position integration, M
// position iterations (stopping early if nothing corrected), sleep
// check. Gauss-Seidel within the island: every constraint in the sorted
// list sees updates the previous ones already applied this iteration.
func solveIsland(si *solverIsland, bodies *Bodies, dt, warmStartRatio, baumgarte, velocitySleepThreshold, timeBeforeSleep float64, isl *Island) {
	for _, c := range si.constraints {
		if !c.Base().enabled {
			continue
		}
		c.SetupVelocity()
	}
	for _, c := range si.constraints {
		if c.Base().enabled {
			c.WarmStart(warmStartRatio)
		}
	}
	for iter := 0; iter < si.numVelocity; iter++ {
		for _, c := range si.constraints {
			if c.Base().enabled {
				c.SolveVelocity()
			}
		}
	}
	for _, bi := range si.bodyIndices {
		id := bodies.ActiveAt(bi)
		if b, ok := bodies.Lookup(id); ok {
			b.integratePose(dt)
		}
	}
	for iter := 0; iter < si.numPosition; iter++ {
		anyCorrected := false
		for _, c := range si.constraints {
			if !c.Base().enabled {
				continue
			}
			if c.SolvePosition(baumgarte) {
				anyCorrected = true
			}
		}
		if !anyCorrected {
			break
		}
	}
	checkIslandSleep(isl, bodies, dt, velocitySleepThreshold, timeBeforeSleep)
}

// stepIslands solves every island of one step, fanning out across a
// worker-goroutine pool sized to GOMAXPROCS and draining a channel of
// island indices, the same producer/worker/WaitGroup shape the teacher
// repo's raytracer uses to split per-row work across cores (eg/rt.go).
// Gauss-Seidel order inside an island is serial; islands are independent
// of each other by construction so running them concurrently changes
// nothing about the result (spec.md §5 step 4).
func stepIslands(islands []*Island, resolved []*solverIsland, bodies *Bodies, dt, warmStartRatio, baumgarte, velocitySleepThreshold, timeBeforeSleep float64) {
	procs := runtime.GOMAXPROCS(0)
	if procs > len(islands) {
		procs = len(islands)
	}
	if procs < 1 {
		return
	}
	work := make(chan int, len(islands))
	var wg sync.WaitGroup
	wg.Add(procs)
	for p := 0; p < procs; p++ {
		go func() {
			defer wg.Done()
			for i := range work {
				solveIsland(resolved[i], bodies, dt, warmStartRatio, baumgarte, velocitySleepThreshold, timeBeforeSleep, islands[i])
			}
		}()
	}
	for i := range islands {
		work <- i
	}
	close(work)
	wg.Wait()
}

// integrateActiveVelocities applies gravity and damping to every active
// dynamic body, the pre-solve half of spec.md §4.9's per-step pipeline
// (the island solver only integrates position, never the gravity/damping
// velocity update, so this runs once globally before islands are built).
func integrateActiveVelocities(bodies *Bodies, gravity *lin.V3, dt float64) {
	for i := 0; i < bodies.ActiveCount(); i++ {
		id := bodies.ActiveAt(i)
		b, ok := bodies.Lookup(id)
		if !ok || b.motionType != Dynamic {
			continue
		}
		b.applyGravity(gravity, dt)
		b.applyDamping(dt)
	}
}

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package physics is the constraint-based iterative solver core of a
// real-time rigid-body engine: island building over coupled bodies,
// sequential-impulse velocity resolution with warm-started cached
// impulses, Baumgarte position stabilization, and sleep/wake of
// quiescent islands.
//
// Broadphase and narrowphase pair detection live outside this package;
// World.Step consumes their output as a slice of ContactManifold each
// step. Everything else, from body and constraint storage through the
// per-island solver, is owned here.
package physics

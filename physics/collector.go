// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/forgephys/rigid/math/lin"

// Hit is one result of a Shape query, carrying the sub-shape path on both
// sides so callers can recover surface normals and materials through the
// Shape trait (spec.md §6).
type Hit struct {
	BodyIdA, BodyIdB     BodyId
	SubShapeIdA, SubShapeIdB SubShapeId
	Point                *lin.V3
	Normal               *lin.V3 // B -> A
	Fraction             float64 // along the query's ray/sweep, if applicable
}

// Collector receives results from a Shape query, one query at a time. The
// narrowphase collaborator is expected to call ShouldEarlyOut between
// hits and stop once it returns true (spec.md §6).
type Collector interface {
	BodyIdB() BodyId
	EarlyOutFraction() float64
	AddHit(hit Hit)
	AddMiss()
	ShouldEarlyOut() bool
}

// closestHitCollector keeps only the earliest (lowest-fraction) hit,
// the common collector shape for ray casts that want a single result.
type closestHitCollector struct {
	bodyIdB  BodyId
	fraction float64
	hit      *Hit
}

// NewClosestHitCollector returns a Collector that retains only the
// lowest-fraction hit reported to it.
func NewClosestHitCollector(bodyIdB BodyId) Collector {
	return &closestHitCollector{bodyIdB: bodyIdB, fraction: 1.0}
}

func (c *closestHitCollector) BodyIdB() BodyId           { return c.bodyIdB }
func (c *closestHitCollector) EarlyOutFraction() float64 { return c.fraction }
func (c *closestHitCollector) AddHit(hit Hit) {
	if c.hit == nil || hit.Fraction < c.fraction {
		h := hit
		c.hit = &h
		c.fraction = hit.Fraction
	}
}
func (c *closestHitCollector) AddMiss()          {}
func (c *closestHitCollector) ShouldEarlyOut() bool { return false }

// Hit returns the retained closest hit, or nil if none was reported.
func (c *closestHitCollector) Hit() *Hit { return c.hit }

// allHitsCollector retains every hit reported to it, never early-outs.
type allHitsCollector struct {
	bodyIdB BodyId
	hits    []Hit
}

// NewAllHitsCollector returns a Collector that retains every hit reported.
func NewAllHitsCollector(bodyIdB BodyId) Collector {
	return &allHitsCollector{bodyIdB: bodyIdB}
}

func (c *allHitsCollector) BodyIdB() BodyId           { return c.bodyIdB }
func (c *allHitsCollector) EarlyOutFraction() float64 { return 1.0 }
func (c *allHitsCollector) AddHit(hit Hit)             { c.hits = append(c.hits, hit) }
func (c *allHitsCollector) AddMiss()                   {}
func (c *allHitsCollector) ShouldEarlyOut() bool       { return false }

// Hits returns every hit retained so far.
func (c *allHitsCollector) Hits() []Hit { return c.hits }

// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "testing"

func TestClosestHitCollectorKeepsLowestFraction(t *testing.T) {
	c := NewClosestHitCollector(BodyId(1))
	c.AddHit(Hit{Fraction: 0.8})
	c.AddHit(Hit{Fraction: 0.3})
	c.AddHit(Hit{Fraction: 0.5})
	got := c.(*closestHitCollector).Hit()
	if got == nil || got.Fraction != 0.3 {
		t.Errorf("expected the closest hit (0.3), got %+v", got)
	}
}

func TestClosestHitCollectorNilWithoutHits(t *testing.T) {
	c := NewClosestHitCollector(BodyId(1))
	if c.(*closestHitCollector).Hit() != nil {
		t.Error("expected no hit before any AddHit call")
	}
}

func TestAllHitsCollectorRetainsEveryHit(t *testing.T) {
	c := NewAllHitsCollector(BodyId(2))
	c.AddHit(Hit{Fraction: 0.1})
	c.AddHit(Hit{Fraction: 0.9})
	hits := c.(*allHitsCollector).Hits()
	if len(hits) != 2 {
		t.Errorf("expected 2 retained hits, got %d", len(hits))
	}
}

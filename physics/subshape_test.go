// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "testing"

// Push followed by Pop over the same child count must recover the
// original child index (spec.md §4.3).
func TestSubShapePushPopRoundTrips(t *testing.T) {
	p := newSubShapePath()
	p, err := p.Push(5, 8)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	child, _ := p.Pop(8)
	if child != 5 {
		t.Errorf("expected child 5, got %d", child)
	}
}

// Chained pushes through nested compounds must pop back out in reverse
// order (LIFO).
func TestSubShapeNestedPushPopIsLifo(t *testing.T) {
	p := newSubShapePath()
	p, err := p.Push(2, 4)
	if err != nil {
		t.Fatalf("push outer: %v", err)
	}
	p, err = p.Push(6, 16)
	if err != nil {
		t.Fatalf("push inner: %v", err)
	}
	inner, p := p.Pop(16)
	if inner != 6 {
		t.Errorf("expected inner child 6, got %d", inner)
	}
	outer, _ := p.Pop(4)
	if outer != 2 {
		t.Errorf("expected outer child 2, got %d", outer)
	}
}

// A decorator shape (single child) consumes zero bits.
func TestSubShapeSingleChildConsumesNoBits(t *testing.T) {
	p := newSubShapePath()
	p2, err := p.Push(0, 1)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if p2.Id() != p.Id() {
		t.Error("a single-child push should not change the path")
	}
}

// Pushing past the 32-bit budget must fail with an overflow error rather
// than silently truncate (spec.md §4.3): 17 levels of 4-child compounds
// need 34 bits.
func TestSubShapePushOverflows(t *testing.T) {
	p := newSubShapePath()
	var err error
	for i := 0; i < 17; i++ {
		p, err = p.Push(1, 4) // 2 bits/level * 17 = 34 > 32
		if err != nil {
			break
		}
	}
	if err == nil {
		t.Error("expected an overflow error once the path exceeds 32 bits")
	}
}

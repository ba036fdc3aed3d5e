// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// Face is the convex hull of support points returned by SupportingFace,
// used by the narrowphase collaborator when building a contact manifold
// against a flat feature.
type Face []*lin.V3

// Shape is the external collaborator the core consumes for mass
// properties, sub-shape bookkeeping and narrowphase queries (spec.md §6).
// Shape geometry itself — how a convex hull or triangle mesh actually
// implements these — is out of scope; the core only ever calls through
// this trait. A Shape is always expressed in its own local space,
// centered at the origin.
type Shape interface {
	// LocalAabb returns the shape's bounding box in its own local frame.
	LocalAabb() *AABB
	// Volume returns the shape's volume, used for mass = density*volume.
	Volume() float64
	// ComputeMassProperties derives mass, center and inertia at the given
	// density. Composite shapes recurse into their children and compose
	// via MassProperties.Compose.
	ComputeMassProperties(density float64) *MassProperties
	// InnerRadius returns the radius of the largest sphere, centered at
	// the shape's center of mass, that is fully contained within it. Used
	// by the narrowphase collaborator for conservative-advancement sizing.
	InnerRadius() float64
	// SurfaceNormal returns the outward normal at localPoint on the
	// sub-shape identified by id.
	SurfaceNormal(id SubShapeId, localPoint *lin.V3) *lin.V3
	// SupportingFace returns the face most aligned with localDirection on
	// the sub-shape identified by id.
	SupportingFace(id SubShapeId, localDirection *lin.V3) Face
	// CastRay, CollidePoint, CollideShape and CastShape report hits into
	// collector, consulting collector.ShouldEarlyOut() between hits. They
	// are the only entry points through which the core's callers reach
	// narrowphase/broadphase logic; this package never implements GJK/EPA
	// or compound dispatch itself.
	CastRay(origin, direction *lin.V3, collector Collector)
	CollidePoint(point *lin.V3, collector Collector)
	CollideShape(other Shape, otherTransform *lin.T, collector Collector)
	CastShape(other Shape, sweep *lin.V3, collector Collector)
}

// AABB is an axis aligned bounding box, used both as Shape.LocalAabb's
// result type and during broadphase pair generation. Grounded on the
// teacher's Abox (physics/shape.go).
type AABB struct {
	Min, Max *lin.V3
}

// NewAABB returns an empty AABB around the origin.
func NewAABB() *AABB { return &AABB{Min: lin.NewV3(), Max: lin.NewV3()} }

// Overlaps returns true if a and b intersect on all three axes.
func (a *AABB) Overlaps(b *AABB) bool {
	return a.Max.X > b.Min.X && a.Min.X < b.Max.X &&
		a.Max.Y > b.Min.Y && a.Min.Y < b.Max.Y &&
		a.Max.Z > b.Min.Z && a.Min.Z < b.Max.Z
}

// boxAabb returns the world-space AABB of a local-space box with the
// given half-extents after applying transform t, inflated by margin.
// Grounded on the teacher's box.Aabb (physics/shape.go).
func boxAabb(hx, hy, hz float64, t *lin.T, margin float64) *AABB {
	xx, xy, xz := lin.MultSQ(1, 0, 0, t.Rot)
	yx, yy, yz := lin.MultSQ(0, 1, 0, t.Rot)
	zx, zy, zz := lin.MultSQ(0, 0, 1, t.Rot)
	xx, xy, xz = math.Abs(xx), math.Abs(xy), math.Abs(xz)
	yx, yy, yz = math.Abs(yx), math.Abs(yy), math.Abs(yz)
	zx, zy, zz = math.Abs(zx), math.Abs(zy), math.Abs(zz)

	hmx, hmy, hmz := hx+margin, hy+margin, hz+margin
	ex := hmx*xx + hmy*xy + hmz*xz
	ey := hmx*yx + hmy*yy + hmz*yz
	ez := hmx*zx + hmy*zy + hmz*zz

	return &AABB{
		Min: lin.NewV3S(t.Loc.X-ex, t.Loc.Y-ey, t.Loc.Z-ez),
		Max: lin.NewV3S(t.Loc.X+ex, t.Loc.Y+ey, t.Loc.Z+ez),
	}
}

// BoxShape is a solid box centered at the origin, defined by half-extents.
// Kept as a concrete reference Shape (grounded on the teacher's box,
// physics/shape.go) so World callers and tests have something to create
// bodies with. Its narrowphase query methods are out of scope for the
// core and only stub enough to satisfy the Shape interface.
type BoxShape struct {
	Hx, Hy, Hz float64
}

// NewBoxShape returns a box with the given half-extents.
func NewBoxShape(hx, hy, hz float64) *BoxShape {
	return &BoxShape{math.Abs(hx), math.Abs(hy), math.Abs(hz)}
}

func (b *BoxShape) LocalAabb() *AABB {
	return &AABB{Min: lin.NewV3S(-b.Hx, -b.Hy, -b.Hz), Max: lin.NewV3S(b.Hx, b.Hy, b.Hz)}
}
func (b *BoxShape) Volume() float64 { return b.Hx * 2 * b.Hy * 2 * b.Hz * 2 }
func (b *BoxShape) ComputeMassProperties(density float64) *MassProperties {
	return NewMassProperties().SolidBox(b.Hx, b.Hy, b.Hz, density)
}
func (b *BoxShape) InnerRadius() float64 { return math.Min(b.Hx, math.Min(b.Hy, b.Hz)) }
func (b *BoxShape) SurfaceNormal(id SubShapeId, p *lin.V3) *lin.V3 {
	ax, ay, az := math.Abs(p.X)/b.Hx, math.Abs(p.Y)/b.Hy, math.Abs(p.Z)/b.Hz
	switch {
	case ax >= ay && ax >= az:
		return lin.NewV3S(math.Copysign(1, p.X), 0, 0)
	case ay >= az:
		return lin.NewV3S(0, math.Copysign(1, p.Y), 0)
	default:
		return lin.NewV3S(0, 0, math.Copysign(1, p.Z))
	}
}
func (b *BoxShape) SupportingFace(id SubShapeId, dir *lin.V3) Face { return nil }
func (b *BoxShape) CastRay(origin, dir *lin.V3, c Collector)      {}
func (b *BoxShape) CollidePoint(p *lin.V3, c Collector)           {}
func (b *BoxShape) CollideShape(o Shape, ot *lin.T, c Collector)  {}
func (b *BoxShape) CastShape(o Shape, sweep *lin.V3, c Collector) {}

// SphereShape is a solid sphere centered at the origin, defined by radius.
// Grounded on the teacher's sphere (physics/shape.go).
type SphereShape struct {
	Radius float64
}

// NewSphereShape returns a sphere with the given radius.
func NewSphereShape(radius float64) *SphereShape { return &SphereShape{math.Abs(radius)} }

func (s *SphereShape) LocalAabb() *AABB {
	r := lin.NewV3S(s.Radius, s.Radius, s.Radius)
	return &AABB{Min: lin.NewV3().Neg(r), Max: r}
}
func (s *SphereShape) Volume() float64 { return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius }
func (s *SphereShape) ComputeMassProperties(density float64) *MassProperties {
	return NewMassProperties().SolidSphere(s.Radius, density)
}
func (s *SphereShape) InnerRadius() float64 { return s.Radius }
func (s *SphereShape) SurfaceNormal(id SubShapeId, p *lin.V3) *lin.V3 {
	return lin.NewV3().Set(p).Unit()
}
func (s *SphereShape) SupportingFace(id SubShapeId, dir *lin.V3) Face { return nil }
func (s *SphereShape) CastRay(origin, dir *lin.V3, c Collector)      {}
func (s *SphereShape) CollidePoint(p *lin.V3, c Collector)           {}
func (s *SphereShape) CollideShape(o Shape, ot *lin.T, c Collector)  {}
func (s *SphereShape) CastShape(o Shape, sweep *lin.V3, c Collector) {}

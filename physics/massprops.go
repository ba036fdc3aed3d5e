// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// MassProperties is a composable inertia tensor plus the mass and center
// of mass it was derived at. Composition of a compound shape works by
// computing each child's properties in its own local frame, rotating,
// translating to the parent's center of mass via the parallel-axis
// theorem, and accumulating (spec.md §4.2).
type MassProperties struct {
	Mass    float64
	Center  *lin.V3 // center of mass, in the frame the properties were computed
	Inertia *lin.M3 // about Center, in that same frame
}

// NewMassProperties returns a zeroed mass properties record ready to
// accumulate into.
func NewMassProperties() *MassProperties {
	return &MassProperties{Center: lin.NewV3(), Inertia: lin.NewM3()}
}

// SolidBox sets mp to the mass properties of a solid box with the given
// half-extents and density, centered at the origin. Grounded on the
// teacher's box.Inertia/box.Volume (physics/shape.go).
func (mp *MassProperties) SolidBox(hx, hy, hz, density float64) *MassProperties {
	x, y, z := hx*2, hy*2, hz*2
	mass := density * x * y * z
	mp.Mass = mass
	mp.Center.SetS(0, 0, 0)
	k := mass / 12
	mp.Inertia.SetS(
		k*(y*y+z*z), 0, 0,
		0, k*(x*x+z*z), 0,
		0, 0, k*(x*x+y*y))
	return mp
}

// SolidSphere sets mp to the mass properties of a solid sphere of the
// given radius and density, centered at the origin. Grounded on the
// teacher's sphere.Inertia/sphere.Volume (physics/shape.go).
func (mp *MassProperties) SolidSphere(radius, density float64) *MassProperties {
	volume := 4.0 / 3.0 * math.Pi * radius * radius * radius
	mass := density * volume
	mp.Mass = mass
	mp.Center.SetS(0, 0, 0)
	k := 0.4 * mass * radius * radius
	mp.Inertia.SetS(
		k, 0, 0,
		0, k, 0,
		0, 0, k)
	return mp
}

// Translate applies the parallel-axis theorem, updating mp's inertia as
// if its reference point moved by t (mass and Center are unaffected by
// this call; callers update Center themselves when accumulating a
// compound). I' = I + m*(|t|^2 * E - t*t^T).
func (mp *MassProperties) Translate(t *lin.V3) *MassProperties {
	lenSqr := t.Dot(t)
	outer := lin.NewM3().SetS(
		t.X*t.X, t.X*t.Y, t.X*t.Z,
		t.Y*t.X, t.Y*t.Y, t.Y*t.Z,
		t.Z*t.X, t.Z*t.Y, t.Z*t.Z)
	shift := lin.NewM3I().Scale(lenSqr)
	shift.Sub(shift, outer)
	shift.Scale(mp.Mass)
	mp.Inertia.Add(mp.Inertia, shift)
	return mp
}

// Rotate applies I' = R * I * R^T. Symmetry is preserved to machine
// precision by construction; Symmetrize below is available for callers
// that accumulate many rotations and want to scrub residual drift.
func (mp *MassProperties) Rotate(r *lin.M3) *MassProperties {
	rt := lin.NewM3().Transpose(r)
	tmp := lin.NewM3().Mult(r, mp.Inertia)
	mp.Inertia.Mult(tmp, rt)
	return mp
}

// Symmetrize averages mp.Inertia with its own transpose, scrubbing any
// numerical drift accumulated across repeated Rotate/compose calls.
func (mp *MassProperties) Symmetrize() *MassProperties {
	i := mp.Inertia
	i.Xy, i.Yx = (i.Xy+i.Yx)/2, (i.Xy+i.Yx)/2
	i.Xz, i.Zx = (i.Xz+i.Zx)/2, (i.Xz+i.Zx)/2
	i.Yz, i.Zy = (i.Yz+i.Zy)/2, (i.Yz+i.Zy)/2
	return mp
}

// ScaleNonUniform rescales mp for a non-uniform axis scale applied in
// mp's own local axes (spec.md §4.2): recover the diagonal "size^2"
// contributions via s^2 = 1/2*tr(I) - diag(I), scale those componentwise
// by scale^2, reassemble the diagonal, scale off-diagonals by s_i*s_j,
// and rescale mass by |sx*sy*sz|.
func (mp *MassProperties) ScaleNonUniform(scale *lin.V3) *MassProperties {
	i := mp.Inertia
	trace := i.Xx + i.Yy + i.Zz
	sx2 := trace/2 - i.Xx
	sy2 := trace/2 - i.Yy
	sz2 := trace/2 - i.Zz
	sx2 *= scale.X * scale.X
	sy2 *= scale.Y * scale.Y
	sz2 *= scale.Z * scale.Z
	newTr := sx2 + sy2 + sz2
	i.Xx = newTr/2 - sx2
	i.Yy = newTr/2 - sy2
	i.Zz = newTr/2 - sz2
	i.Xy *= scale.X * scale.Y
	i.Yx = i.Xy
	i.Xz *= scale.X * scale.Z
	i.Zx = i.Xz
	i.Yz *= scale.Y * scale.Z
	i.Zy = i.Yz
	factor := math.Abs(scale.X * scale.Y * scale.Z)
	mp.Inertia.Scale(factor)
	mp.Mass *= factor
	return mp
}

// RescaleMass scales mp's inertia by newMass/mass and updates mp.Mass to
// newMass, preserving the distribution of mass while changing its total.
func (mp *MassProperties) RescaleMass(newMass float64) *MassProperties {
	if mp.Mass == 0 {
		mp.Mass = newMass
		return mp
	}
	mp.Inertia.Scale(newMass / mp.Mass)
	mp.Mass = newMass
	return mp
}

// Compose folds child (already expressed in the child's local frame) into
// mp as a rigid sub-part located at childOffset and rotated by
// childRotation relative to mp's own frame: rotate, translate via the
// parallel-axis theorem, then accumulate mass and inertia.
func (mp *MassProperties) Compose(child *MassProperties, childOffset *lin.V3, childRotation *lin.M3) *MassProperties {
	rotated := &MassProperties{Mass: child.Mass, Center: lin.NewV3().Set(child.Center), Inertia: lin.NewM3().Set(child.Inertia)}
	rotated.Rotate(childRotation)
	rotated.Translate(childOffset)
	mp.Inertia.Add(mp.Inertia, rotated.Inertia)
	mp.Mass += rotated.Mass
	return mp
}

// worldInverseInertia computes I^-1_world = R * I^-1_local * R^T, the
// helper spec.md §3 calls for, grounded on the teacher's
// get_dynamic_inverse_inertia_tensor (physics/physics_util.go).
func worldInverseInertia(invInertiaLocal *lin.M3, rot *lin.M3) *lin.M3 {
	rt := lin.NewM3().Transpose(rot)
	tmp := lin.NewM3().Mult(rot, invInertiaLocal)
	return lin.NewM3().Mult(tmp, rt)
}

// invertInertia inverts a local inertia tensor via the general cofactor
// formula (lin.M3.Inv), so a Compose'd compound's off-diagonal inertia
// products survive the inversion instead of being silently dropped as a
// diagonal-only shortcut would. M3.Inv leaves a singular matrix (a static
// or massless body's zero tensor) as the zero matrix, the same no-torque
// result the teacher's setMaterial falls back to for zero-extent bodies
// (physics/body.go).
func invertInertia(i *lin.M3) *lin.M3 {
	return lin.NewM3().Inv(i)
}

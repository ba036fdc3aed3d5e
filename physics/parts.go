// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/forgephys/rigid/math/lin"
)

// maxPositionLinearStep and maxPositionAngularStep bound a single position
// iteration's correction to prevent tunneling under large Baumgarte gains
// (spec.md §4.10's implementation-defined example values).
const (
	maxPositionLinearStep  = 0.2
	maxPositionAngularStep = 8 * math.Pi / 180
)

// skew returns the 3x3 cross-product matrix [v]x such that [v]x * w == v x w.
func skew(v *lin.V3) *lin.M3 { return lin.NewM3().SetSkewSym(v) }

// clampStep scales delta down (preserving direction) so its length does
// not exceed limit.
func clampStep(delta *lin.V3, limit float64) {
	if l := delta.Len(); l > limit && l > 0 {
		delta.Scale(delta, limit/l)
	}
}

// PointPart is the 3-translational-DOF algebraic block (spec.md §4.5.1),
// generalizing the teacher's solverConstraint (physics/solver.go) from a
// single scalar axis to a full 3x3 effective mass.
type PointPart struct {
	r1, r2                     *lin.V3 // world-space moment arms
	invInertiaA, invInertiaB   *lin.M3 // cached world-space inverse inertia
	angularA, angularB         *lin.M3 // I^-1_i * [r_i]x, cached for reuse
	k                          *lin.M3 // effective mass (inverse of k^-1)
	totalLambda                *lin.V3
	active                     bool
}

// NewPointPart returns an unconfigured PointPart; call Setup each frame
// before use.
func NewPointPart() *PointPart { return &PointPart{totalLambda: lin.NewV3()} }

// Setup transforms the local moment arms to world space, builds the 3x3
// inverse effective mass K^-1 and caches I_i^-1*[r_i]x for the solve
// passes (spec.md §4.5.1). If K^-1 is singular the part is deactivated
// for this frame and a NumericDegeneracy event is logged (spec.md §7).
func (p *PointPart) Setup(bodyA, bodyB *Body, r1Local, r2Local *lin.V3) {
	p.r1 = lin.NewV3().MultvQ(r1Local, bodyA.rot)
	p.r2 = lin.NewV3().MultvQ(r2Local, bodyB.rot)
	p.invInertiaA = bodyA.invInertiaWorld
	p.invInertiaB = bodyB.invInertiaWorld

	skewA, skewB := skew(p.r1), skew(p.r2)
	p.angularA = lin.NewM3().Mult(p.invInertiaA, skewA)
	p.angularB = lin.NewM3().Mult(p.invInertiaB, skewB)

	kInv := lin.NewM3I().Scale(bodyA.invMass + bodyB.invMass)
	termA := lin.NewM3().Mult(skewA, lin.NewM3().Mult(p.invInertiaA, lin.NewM3().Transpose(skewA)))
	termB := lin.NewM3().Mult(skewB, lin.NewM3().Mult(p.invInertiaB, lin.NewM3().Transpose(skewB)))
	kInv.Add(kInv, termA)
	kInv.Add(kInv, termB)

	if math.Abs(kInv.Det()) < 1e-12 {
		p.active = false
		degenerateAxisWarning("PointPart.Setup", bodyA.id)
		return
	}
	p.k = lin.NewM3().Inv(kInv)
	p.active = true
}

// WarmStart scales the cached totalLambda by ratio and applies it to both
// bodies' velocities (spec.md §4.5, §4.10). ratio is dt_new/dt_old clamped
// to [0, 2] by the caller; the first step after construction uses 0.
func (p *PointPart) WarmStart(bodyA, bodyB *Body, ratio float64) {
	if !p.active {
		return
	}
	p.totalLambda.Scale(p.totalLambda, ratio)
	p.applyImpulse(bodyA, bodyB, p.totalLambda)
}

// SolveVelocity performs one sequential-impulse iteration, returning true
// iff a nonzero impulse was applied (spec.md §4.5.1).
func (p *PointPart) SolveVelocity(bodyA, bodyB *Body) bool {
	if !p.active {
		return false
	}
	w1 := lin.NewV3().Cross(p.r1, bodyA.angVel)
	v1 := lin.NewV3().Sub(bodyA.linVel, w1)
	w2 := lin.NewV3().Cross(p.r2, bodyB.angVel)
	v2 := lin.NewV3().Sub(bodyB.linVel, w2)
	jv := lin.NewV3().Sub(v1, v2)

	lambda := lin.NewV3().MultMv(p.k, jv)
	if lambda.LenSqr() == 0 {
		return false
	}
	p.totalLambda.Add(p.totalLambda, lambda)
	p.applyImpulse(bodyA, bodyB, lambda)
	return true
}

func (p *PointPart) applyImpulse(bodyA, bodyB *Body, lambda *lin.V3) {
	scaledA := lin.NewV3().Scale(lambda, bodyA.invMass)
	bodyA.linVel.Sub(bodyA.linVel, scaledA)
	angA := lin.NewV3().MultMv(p.angularA, lambda)
	bodyA.angVel.Sub(bodyA.angVel, angA)

	scaledB := lin.NewV3().Scale(lambda, bodyB.invMass)
	bodyB.linVel.Add(bodyB.linVel, scaledB)
	angB := lin.NewV3().MultMv(p.angularB, lambda)
	bodyB.angVel.Add(bodyB.angVel, angB)
}

// SolvePosition applies a direct pose correction to close the gap between
// the two anchor points, bounded by the per-iteration step limits
// (spec.md §4.5.1, §4.10). Returns true iff a nontrivial correction was
// applied.
func (p *PointPart) SolvePosition(bodyA, bodyB *Body, baumgarte float64) bool {
	if !p.active {
		return false
	}
	anchorA := lin.NewV3().Add(bodyA.pos, p.r1)
	anchorB := lin.NewV3().Add(bodyB.pos, p.r2)
	c := lin.NewV3().Sub(anchorB, anchorA)
	if c.LenSqr() < 1e-12 {
		return false
	}
	lambda := lin.NewV3().MultMv(p.k, c)
	lambda.Scale(lambda, -baumgarte)

	dA := lin.NewV3().Scale(lambda, -bodyA.invMass)
	clampStep(dA, maxPositionLinearStep)
	if bodyA.motionType == Dynamic {
		bodyA.pos.Add(bodyA.pos, dA)
	}
	dB := lin.NewV3().Scale(lambda, bodyB.invMass)
	clampStep(dB, maxPositionLinearStep)
	if bodyB.motionType == Dynamic {
		bodyB.pos.Add(bodyB.pos, dB)
	}

	angA := lin.NewV3().MultMv(p.angularA, lambda)
	angA.Scale(angA, -1)
	clampStep(angA, maxPositionAngularStep)
	rotateByAngularStep(bodyA, angA)

	angB := lin.NewV3().MultMv(p.angularB, lambda)
	clampStep(angB, maxPositionAngularStep)
	rotateByAngularStep(bodyB, angB)
	return true
}

// Deactivate zeroes the cached impulse, used when a part's bodies wake
// from sleep and any prior warm-start cache is stale (spec.md §4.4).
func (p *PointPart) Deactivate() { p.totalLambda.SetS(0, 0, 0) }

// IsActive reports whether the last Setup call produced a usable
// effective mass.
func (p *PointPart) IsActive() bool { return p.active }

// TotalLambda returns the accumulated impulse for warm-starting next step.
func (p *PointPart) TotalLambda() *lin.V3 { return p.totalLambda }

// rotateByAngularStep applies a small-angle rotation step to a body's
// orientation via the exponential map, reusing lin.T.Integrate with zero
// linear velocity so position is untouched (spec.md §9 quaternion
// integration note).
func rotateByAngularStep(b *Body, angularStep *lin.V3) {
	if b.motionType != Dynamic {
		return
	}
	t := &lin.T{Loc: lin.NewV3(), Rot: lin.NewQ().Set(b.rot)}
	next := lin.NewT().Integrate(t, lin.NewV3(), angularStep, 1.0)
	b.rot.Set(next.Rot)
	b.updateInertiaTensorWorld()
}

// RotationEulerPart is the 3-rotational-DOF algebraic block (spec.md
// §4.5.2), used by Fixed and Slider to weld relative orientation fully.
// SixDOF needs each rotational axis independently lockable/limitable, so
// it composes three AngleParts instead of one of these.
type RotationEulerPart struct {
	invInertiaA, invInertiaB *lin.M3
	k                        *lin.M3
	totalLambda              *lin.V3
	active                   bool
}

// NewRotationEulerPart returns an unconfigured RotationEulerPart.
func NewRotationEulerPart() *RotationEulerPart {
	return &RotationEulerPart{totalLambda: lin.NewV3()}
}

// Setup caches K^-1 = I_A^-1 + I_B^-1 and its inverse.
func (p *RotationEulerPart) Setup(bodyA, bodyB *Body) {
	p.invInertiaA = bodyA.invInertiaWorld
	p.invInertiaB = bodyB.invInertiaWorld
	kInv := lin.NewM3().Add(p.invInertiaA, p.invInertiaB)
	if math.Abs(kInv.Det()) < 1e-12 {
		p.active = false
		degenerateAxisWarning("RotationEulerPart.Setup", bodyA.id)
		return
	}
	p.k = lin.NewM3().Inv(kInv)
	p.active = true
}

// WarmStart scales and reapplies the cached impulse.
func (p *RotationEulerPart) WarmStart(bodyA, bodyB *Body, ratio float64) {
	if !p.active {
		return
	}
	p.totalLambda.Scale(p.totalLambda, ratio)
	p.applyImpulse(bodyA, bodyB, p.totalLambda)
}

// SolveVelocity resolves the angular-velocity error omega_A - omega_B.
func (p *RotationEulerPart) SolveVelocity(bodyA, bodyB *Body) bool {
	if !p.active {
		return false
	}
	jv := lin.NewV3().Sub(bodyA.angVel, bodyB.angVel)
	lambda := lin.NewV3().MultMv(p.k, jv)
	if lambda.LenSqr() == 0 {
		return false
	}
	p.totalLambda.Add(p.totalLambda, lambda)
	p.applyImpulse(bodyA, bodyB, lambda)
	return true
}

func (p *RotationEulerPart) applyImpulse(bodyA, bodyB *Body, lambda *lin.V3) {
	dA := lin.NewV3().MultMv(p.invInertiaA, lambda)
	bodyA.angVel.Sub(bodyA.angVel, dA)
	dB := lin.NewV3().MultMv(p.invInertiaB, lambda)
	bodyB.angVel.Add(bodyB.angVel, dB)
}

// SolvePosition corrects the residual orientation error e = 2*vec(qB *
// r0 * qA^-1), where r0 is the bind-time residual orientation passed by
// the owning constraint (spec.md §4.5.2).
func (p *RotationEulerPart) SolvePosition(bodyA, bodyB *Body, r0 *lin.Q, baumgarte float64) bool {
	if !p.active {
		return false
	}
	qaInv := lin.NewQ().Inv(bodyA.rot)
	residual := lin.NewQ().Mult(r0, qaInv)
	residual = lin.NewQ().Mult(bodyB.rot, residual)
	e := lin.NewV3S(2*residual.X, 2*residual.Y, 2*residual.Z)
	if e.LenSqr() < 1e-12 {
		return false
	}
	lambda := lin.NewV3().MultMv(p.k, e)
	lambda.Scale(lambda, -baumgarte)

	dA := lin.NewV3().MultMv(p.invInertiaA, lambda)
	dA.Scale(dA, -1)
	clampStep(dA, maxPositionAngularStep)
	rotateByAngularStep(bodyA, dA)

	dB := lin.NewV3().MultMv(p.invInertiaB, lambda)
	clampStep(dB, maxPositionAngularStep)
	rotateByAngularStep(bodyB, dB)
	return true
}

// Deactivate zeroes the cached impulse.
func (p *RotationEulerPart) Deactivate() { p.totalLambda.SetS(0, 0, 0) }

// IsActive reports whether the last Setup produced a usable K.
func (p *RotationEulerPart) IsActive() bool { return p.active }

// TotalLambda returns the accumulated impulse.
func (p *RotationEulerPart) TotalLambda() *lin.V3 { return p.totalLambda }

// AnglePart is the 1-DOF algebraic block along a world-space axis (spec.md
// §4.5.3), used by hinges (unlimited), and cone/swing/twist limits
// (one-sided, [0, +inf)). Grounded on the teacher's 1-D solverConstraint
// (physics/solver.go), extended with an inclusive lambda range.
//
// lower/upper bound the measured scalar quantity the part constrains (an
// angle, a distance, a translation), not the impulse directly. When
// lower == upper the part behaves as a bilateral equality (the connecting
// rod, a hinge's off-axis lock): the impulse is unclamped and drives the
// relative velocity along axis to zero every iteration. When lower < upper
// the part is a one-sided limit, pushing back only once currentValue sits
// outside [lower, upper], with the push direction (and impulse sign)
// chosen so the body can always move freely back inside the range.
type AnglePart struct {
	axis                     *lin.V3
	invInertiaA, invInertiaB *lin.M3
	invMassA, invMassB       float64
	k                        float64 // effective mass (scalar)
	lower, upper             float64
	currentValue             float64
	accumulated              float64
	active                   bool
	translational            bool // true when this part models a linear axis (Slider/SixDOF)
}

// NewAnglePart returns an AnglePart whose constrained scalar is held to
// [lower, upper]. Pass lower == upper for a bilateral equality constraint,
// or math.Inf(-1)/math.Inf(1) on one side for a one-sided limit, or both
// infinite for a free (no-op) axis.
func NewAnglePart(lower, upper float64) *AnglePart {
	return &AnglePart{lower: lower, upper: upper}
}

// Setup caches K^-1 = n^T * (I_A^-1 + I_B^-1) * n for a rotational axis,
// or the translational effective mass along n when translational is set,
// along with the current measured value of the constrained scalar.
func (p *AnglePart) Setup(bodyA, bodyB *Body, axis *lin.V3, translational bool, currentValue float64) {
	p.axis = lin.NewV3().Set(axis).Unit()
	p.invInertiaA, p.invInertiaB = bodyA.invInertiaWorld, bodyB.invInertiaWorld
	p.invMassA, p.invMassB = bodyA.invMass, bodyB.invMass
	p.translational = translational
	p.currentValue = currentValue

	var kInv float64
	if translational {
		kInv = p.invMassA + p.invMassB
	} else {
		sum := lin.NewM3().Add(p.invInertiaA, p.invInertiaB)
		tmp := lin.NewV3().MultMv(sum, p.axis)
		kInv = p.axis.Dot(tmp)
	}
	if math.Abs(kInv) < 1e-12 {
		p.active = false
		degenerateAxisWarning("AnglePart.Setup", bodyA.id)
		return
	}
	p.k = 1 / kInv
	p.active = true
}

// WarmStart scales and reapplies the cached accumulated impulse.
func (p *AnglePart) WarmStart(bodyA, bodyB *Body, ratio float64) {
	if !p.active {
		return
	}
	p.accumulated *= ratio
	p.applyImpulse(bodyA, bodyB, p.accumulated)
}

// lambdaRange returns the permitted impulse range for the part's current
// boundary state: unbounded for an equality part, one-sided toward the
// free range when a limit is currently violated, and (0,0) when a limit
// part sits inside its free range (no constraint force).
func (p *AnglePart) lambdaRange() (lo, hi float64, active bool) {
	if p.lower == p.upper {
		return math.Inf(-1), math.Inf(1), true
	}
	if p.currentValue <= p.lower {
		return 0, math.Inf(1), true
	}
	if p.currentValue >= p.upper {
		return math.Inf(-1), 0, true
	}
	return 0, 0, false
}

// SolveVelocity resolves the velocity error along the axis, clamping the
// accumulated impulse into its current boundary range before applying the
// corrected delta (spec.md §4.5.3).
func (p *AnglePart) SolveVelocity(bodyA, bodyB *Body) bool {
	if !p.active {
		return false
	}
	lo, hi, limitActive := p.lambdaRange()
	if !limitActive {
		return false
	}
	var jv float64
	if p.translational {
		rel := lin.NewV3().Sub(bodyA.linVel, bodyB.linVel)
		jv = p.axis.Dot(rel)
	} else {
		rel := lin.NewV3().Sub(bodyA.angVel, bodyB.angVel)
		jv = p.axis.Dot(rel)
	}
	delta := -p.k * jv
	next := clampRange(p.accumulated+delta, lo, hi)
	applied := next - p.accumulated
	p.accumulated = next
	if applied == 0 {
		return false
	}
	p.applyImpulse(bodyA, bodyB, applied)
	return true
}

func (p *AnglePart) applyImpulse(bodyA, bodyB *Body, lambda float64) {
	impulse := lin.NewV3().Scale(p.axis, lambda)
	if p.translational {
		dA := lin.NewV3().Scale(impulse, p.invMassA)
		bodyA.linVel.Add(bodyA.linVel, dA)
		dB := lin.NewV3().Scale(impulse, p.invMassB)
		bodyB.linVel.Sub(bodyB.linVel, dB)
		return
	}
	dA := lin.NewV3().MultMv(p.invInertiaA, impulse)
	bodyA.angVel.Add(bodyA.angVel, dA)
	dB := lin.NewV3().MultMv(p.invInertiaB, impulse)
	bodyB.angVel.Sub(bodyB.angVel, dB)
}

// SolvePosition applies a bounded direct correction toward satisfying the
// axis limit when the current error (signed, caller-supplied) is outside
// [lower, upper].
func (p *AnglePart) SolvePosition(bodyA, bodyB *Body, errorValue, baumgarte float64) bool {
	if !p.active {
		return false
	}
	violation := 0.0
	if errorValue < p.lower {
		violation = errorValue - p.lower
	} else if errorValue > p.upper {
		violation = errorValue - p.upper
	} else {
		return false
	}
	lambda := -baumgarte * p.k * violation
	if p.translational {
		step := lin.NewV3().Scale(p.axis, lambda*p.invMassA)
		clampStep(step, maxPositionLinearStep)
		bodyA.pos.Add(bodyA.pos, step)
		step2 := lin.NewV3().Scale(p.axis, lambda*p.invMassB)
		clampStep(step2, maxPositionLinearStep)
		bodyB.pos.Sub(bodyB.pos, step2)
		return true
	}
	stepA := lin.NewV3().Scale(p.axis, lambda)
	stepA = lin.NewV3().MultMv(p.invInertiaA, stepA)
	clampStep(stepA, maxPositionAngularStep)
	rotateByAngularStep(bodyA, stepA)
	stepB := lin.NewV3().Scale(p.axis, -lambda)
	stepB = lin.NewV3().MultMv(p.invInertiaB, stepB)
	clampStep(stepB, maxPositionAngularStep)
	rotateByAngularStep(bodyB, stepB)
	return true
}

// Deactivate zeroes the cached impulse.
func (p *AnglePart) Deactivate() { p.accumulated = 0 }

// IsActive reports whether the last Setup produced a usable K.
func (p *AnglePart) IsActive() bool { return p.active }

// TotalLambda returns the accumulated impulse.
func (p *AnglePart) TotalLambda() float64 { return p.accumulated }

func clampRange(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}

package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Smoothstep applies the cubic ease-in/ease-out curve 3t² − 2t³ to a
// normalized interpolation factor. Input outside [0, 1] is clamped.
//
// Parameters:
//   - t: the raw interpolation factor
//
// Returns:
//   - float32: the eased factor in [0, 1]
func Smoothstep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Lerp3 linearly interpolates between two 3-vectors.
//
// Parameters:
//   - a: the start value, returned when t = 0
//   - b: the end value, returned when t = 1
//   - t: the interpolation factor
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func Lerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SmoothLerp3 interpolates between two 3-vectors with smoothstep easing.
// Used for position and scale channels, where the eased curve reads softer
// than a straight linear step between keyframes.
//
// Parameters:
//   - a: the start value
//   - b: the end value
//   - t: the raw interpolation factor (eased internally)
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func SmoothLerp3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return Lerp3(a, b, Smoothstep(t))
}

// Slerp spherically interpolates between two quaternions along the shortest
// arc. mgl32.QuatSlerp alone can take the long way around when the inputs
// point into opposite hemispheres, so the second quaternion is negated when
// the dot product is negative.
//
// Parameters:
//   - a: the start rotation, returned when t = 0
//   - b: the end rotation, returned when t = 1
//   - t: the interpolation factor
//
// Returns:
//   - mgl32.Quat: the interpolated unit quaternion
func Slerp(a, b mgl32.Quat, t float32) mgl32.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl32.QuatSlerp(a, b, t)
}

// ComposeSRT builds a local transform matrix from decomposed scale, rotation,
// and translation. The composition order is fixed: scale first, then
// rotation, then translation. Skinning correctness depends on this order, so
// callers must never recompose these factors in a different order.
//
// Parameters:
//   - scale: the scale factor along each axis
//   - rotation: the orientation as a unit quaternion
//   - translation: the position offset
//
// Returns:
//   - mgl32.Mat4: the composed local transform
func ComposeSRT(scale mgl32.Vec3, rotation mgl32.Quat, translation mgl32.Vec3) mgl32.Mat4 {
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	r := rotation.Mat4()
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	return s.Mul4(r).Mul4(t)
}

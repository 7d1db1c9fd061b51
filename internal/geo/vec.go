// Package geo provides the 2- and 3-component vector types shared by
// every stage of the PDR pipeline.
package geo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vec2 is a 2-component double-precision vector, used for positions and
// heading-plane geometry. Values are immutable by convention: operations
// return a new Vec2 rather than mutating the receiver.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return floats.Dot([]float64{v.X, v.Y}, []float64{o.X, o.Y})
}

// LengthSquared returns ‖v‖².
func (v Vec2) LengthSquared() float64 { return v.Dot(v) }

// Length returns ‖v‖.
func (v Vec2) Length() float64 { return floats.Norm([]float64{v.X, v.Y}, 2) }

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 { return v.Sub(o).Length() }

// Vec3 is a 3-component double-precision vector used for raw
// accelerometer, magnetometer, and gyroscope samples.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return floats.Dot([]float64{v.X, v.Y, v.Z}, []float64{o.X, o.Y, o.Z})
}

// LengthSquared returns ‖v‖².
func (v Vec3) LengthSquared() float64 { return v.Dot(v) }

// Length returns ‖v‖.
func (v Vec3) Length() float64 { return floats.Norm([]float64{v.X, v.Y, v.Z}, 2) }

// IsFinite reports whether every component is free of NaN/Inf, per the
// sensor-ingress error policy: samples with a non-finite component are
// dropped silently rather than corrupting filter state.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

package world

import "math"

// Vec2 is a position on the ground plane. Height is never simulated.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Z - o.Z} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Z * f} }
func (v Vec2) Len() float64         { return math.Hypot(v.X, v.Z) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }

// Heading returns the yaw (radians) of v, zero facing +Z.
func (v Vec2) Heading() float64 { return math.Atan2(v.X, v.Z) }

// FromHeading is the unit vector for a yaw in radians.
func FromHeading(rad float64) Vec2 { return Vec2{math.Sin(rad), math.Cos(rad)} }

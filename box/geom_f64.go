package box

import (
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// Rectangle is an axis-aligned image region: top-left corner plus size, in pixels.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect creates a rectangle from its top-left corner and size
func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewRectFrom converts an integer image rectangle
func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Center returns the rectangle midpoint
func (r Rectangle) Center() r2.Point {
	return r2.Point{X: r.X + r.Width/2.0, Y: r.Y + r.Height/2.0}
}

// Area returns width times height
func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

// IntersectionArea returns the overlapping area of two rectangles, 0 when disjoint.
func (r Rectangle) IntersectionArea(other Rectangle) float64 {
	xA := math.Max(r.X, other.X)
	yA := math.Max(r.Y, other.Y)
	xB := math.Min(r.X+r.Width, other.X+other.Width)
	yB := math.Min(r.Y+r.Height, other.Y+other.Height)
	return math.Max(0, xB-xA) * math.Max(0, yB-yA)
}

// Polygon returns the rectangle corners counter-clockwise in image coordinates.
func (r Rectangle) Polygon() []r2.Point {
	return []r2.Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
}

// euclideanDistance returns the planar distance between two points
func euclideanDistance(p1, p2 r2.Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

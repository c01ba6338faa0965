package box

import (
	"math"

	"github.com/golang/geo/r2"
)

// PolygonArea returns the absolute area of a simple polygon given as an open ring.
func PolygonArea(poly []r2.Point) float64 {
	return math.Abs(signedArea(poly))
}

func signedArea(poly []r2.Point) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += poly[i].Cross(poly[(i+1)%n])
	}
	return sum / 2.0
}

// counterClockwise returns poly in counter-clockwise order, copying if it needs reversing.
func counterClockwise(poly []r2.Point) []r2.Point {
	if signedArea(poly) >= 0 {
		return poly
	}
	reversed := make([]r2.Point, len(poly))
	for i := range poly {
		reversed[len(poly)-1-i] = poly[i]
	}
	return reversed
}

// IntersectionArea returns the overlapping area of two convex polygons.
// Sutherland-Hodgman clipping; both rings are normalised to counter-clockwise order first.
func IntersectionArea(subject, clip []r2.Point) float64 {
	if len(subject) < 3 || len(clip) < 3 {
		return 0
	}
	output := counterClockwise(subject)
	clip = counterClockwise(clip)
	for i := range clip {
		if len(output) == 0 {
			return 0
		}
		edgeStart := clip[i]
		edgeEnd := clip[(i+1)%len(clip)]
		input := output
		output = make([]r2.Point, 0, len(input)+2)
		for j := range input {
			current := input[j]
			previous := input[(j+len(input)-1)%len(input)]
			currentInside := isLeftOf(edgeStart, edgeEnd, current)
			previousInside := isLeftOf(edgeStart, edgeEnd, previous)
			if currentInside {
				if !previousInside {
					output = append(output, lineIntersection(previous, current, edgeStart, edgeEnd))
				}
				output = append(output, current)
			} else if previousInside {
				output = append(output, lineIntersection(previous, current, edgeStart, edgeEnd))
			}
		}
	}
	return PolygonArea(output)
}

// isLeftOf reports whether p lies on or to the left of the directed edge a->b
func isLeftOf(a, b, p r2.Point) bool {
	return b.Sub(a).Cross(p.Sub(a)) >= 0
}

// lineIntersection intersects segment p1->p2 with the infinite line through a->b
func lineIntersection(p1, p2, a, b r2.Point) r2.Point {
	d := p2.Sub(p1)
	e := b.Sub(a)
	denom := d.Cross(e)
	if denom == 0 {
		return p1
	}
	t := a.Sub(p1).Cross(e) / denom
	return p1.Add(d.Mul(t))
}

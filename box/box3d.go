package box

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// ShapeType is the kind of shape a 3D object is annotated with.
type ShapeType uint16

const (
	// ShapeBoundingBox is a cuboid described by Size only
	ShapeBoundingBox ShapeType = iota
	// ShapeCylinder uses Size.X as diameter
	ShapeCylinder
	// ShapePolygon carries an explicit footprint
	ShapePolygon
)

// Shape describes a 3D object's extent in its own local frame.
type Shape struct {
	Type ShapeType
	// Size is length (x), width (y) and height (z)
	Size r3.Vector
	// Footprint is the local XY outline for ShapePolygon, as an open ring
	Footprint []r2.Point
}

// LocalFootprint returns the outline in the object frame.
// For bounding boxes the corner order is front-left, rear-left, rear-right, front-right.
func (s Shape) LocalFootprint() []r2.Point {
	switch s.Type {
	case ShapePolygon:
		return s.Footprint
	case ShapeCylinder:
		const segments = 16
		radius := s.Size.X / 2.0
		out := make([]r2.Point, segments)
		for i := 0; i < segments; i++ {
			theta := 2 * math.Pi * float64(i) / segments
			out[i] = r2.Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		}
		return out
	default:
		l, w := s.Size.X/2.0, s.Size.Y/2.0
		return []r2.Point{
			{X: l, Y: w},
			{X: -l, Y: w},
			{X: -l, Y: -w},
			{X: l, Y: -w},
		}
	}
}

// Box3D is an annotated or estimated object in a 3D frame.
type Box3D struct {
	Attributes
	Position r3.Vector
	Rotation quat.Number
	Shape    Shape
	// Velocity is nil when the source provides none
	Velocity *r3.Vector
}

// NewBox3D validates and creates a 3D box.
func NewBox3D(attrs Attributes, position r3.Vector, rotation quat.Number, shape Shape) (*Box3D, error) {
	if err := attrs.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid box attributes")
	}
	if shape.Size.X < 0 || shape.Size.Y < 0 || shape.Size.Z < 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %v", shape.Size)
	}
	if shape.Type == ShapePolygon && len(shape.Footprint) < 3 {
		return nil, errors.Wrapf(ErrInvalidFootprint, "got %d vertices", len(shape.Footprint))
	}
	return &Box3D{
		Attributes: attrs,
		Position:   position,
		Rotation:   rotation,
		Shape:      shape,
	}, nil
}

// Attrs implements Box
func (b *Box3D) Attrs() Attributes {
	return b.Attributes
}

// Center implements Box
func (b *Box3D) Center() r3.Vector {
	return b.Position
}

// Yaw returns heading about the z axis
func (b *Box3D) Yaw() float64 {
	return YawFromQuat(b.Rotation)
}

// DiffYaw returns the absolute heading difference, without wrapping.
func (b *Box3D) DiffYaw(other *Box3D) float64 {
	return math.Abs(b.Yaw() - other.Yaw())
}

// Footprint returns the bird's-eye outline in the box's frame: local footprint rotated by yaw
// and shifted by position. Open ring, no repeated closing vertex.
func (b *Box3D) Footprint() []r2.Point {
	local := b.Shape.LocalFootprint()
	yaw := b.Yaw()
	sin, cos := math.Sincos(yaw)
	out := make([]r2.Point, len(local))
	for i, p := range local {
		out[i] = r2.Point{
			X: cos*p.X - sin*p.Y + b.Position.X,
			Y: sin*p.X + cos*p.Y + b.Position.Y,
		}
	}
	return out
}

// Area implements Box as the footprint area
func (b *Box3D) Area() float64 {
	return PolygonArea(b.Footprint())
}

// HeightInterval returns the vertical extent
func (b *Box3D) HeightInterval() r1.Interval {
	half := b.Shape.Size.Z / 2.0
	return r1.Interval{Lo: b.Position.Z - half, Hi: b.Position.Z + half}
}

// Volume returns footprint area times height
func (b *Box3D) Volume() float64 {
	return b.Area() * b.Shape.Size.Z
}

// InFrame returns the box expressed in FrameBaseLink. Boxes already there are returned as is;
// map-frame boxes are moved by ego2map^-1 composed with their own pose, and need ego2map.
func (b *Box3D) InFrame(ego2map *Transform) (*Box3D, error) {
	if b.FrameID == FrameBaseLink {
		return b, nil
	}
	if ego2map == nil {
		return nil, errors.Wrapf(ErrMissingEgo2Map, "box %q is in %q", b.UUID, b.FrameID)
	}
	inv, err := ego2map.Inverse()
	if err != nil {
		return nil, errors.Wrapf(err, "can't move box %q to %s", b.UUID, FrameBaseLink)
	}
	position, rotation := inv.Apply(b.Position, b.Rotation)
	moved := *b
	moved.Position = position
	moved.Rotation = rotation
	moved.FrameID = FrameBaseLink
	return &moved, nil
}

// PlanarCenterDistance returns the XY distance between two box centers
func PlanarCenterDistance(a, b Box) float64 {
	ca, cb := a.Center(), b.Center()
	return euclideanDistance(r2.Point{X: ca.X, Y: ca.Y}, r2.Point{X: cb.X, Y: cb.Y})
}

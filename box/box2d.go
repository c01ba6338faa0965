package box

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Box2D is an object in image space, described by its region of interest.
type Box2D struct {
	Attributes
	ROI Rectangle
}

// NewBox2D validates and creates a 2D box
func NewBox2D(attrs Attributes, roi Rectangle) (*Box2D, error) {
	if err := attrs.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid box attributes")
	}
	if roi.Width < 0 || roi.Height < 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "got %vx%v", roi.Width, roi.Height)
	}
	return &Box2D{Attributes: attrs, ROI: roi}, nil
}

// Attrs implements Box
func (b *Box2D) Attrs() Attributes {
	return b.Attributes
}

// Center implements Box
func (b *Box2D) Center() r3.Vector {
	c := b.ROI.Center()
	return r3.Vector{X: c.X, Y: c.Y}
}

// Area implements Box
func (b *Box2D) Area() float64 {
	return b.ROI.Area()
}

// Package box holds the object representations compared by the evaluation
// engine: 3D boxes in a vehicle or map frame, 2D regions of interest in an
// image, and the geometry needed to compare them.
package box

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Label is a semantic class name such as "car" or "pedestrian".
type Label string

// LabelUnknown is the sentinel class that the relaxed matching policy treats as a wildcard.
const LabelUnknown Label = "unknown"

// In reports whether l is one of labels
func (l Label) In(labels []Label) bool {
	for _, other := range labels {
		if l == other {
			return true
		}
	}
	return false
}

// FrameID names the coordinate frame a box is expressed in.
type FrameID string

const (
	// FrameBaseLink is the ego vehicle frame
	FrameBaseLink FrameID = "base_link"
	// FrameMap is the global map frame
	FrameMap FrameID = "map"
)

var (
	// ErrInvalidConfidence is returned when a confidence lies outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be within [0, 1]")
	// ErrInvalidSize is returned for negative box dimensions.
	ErrInvalidSize = errors.New("box dimensions must be non-negative")
	// ErrInvalidFootprint is returned when a polygon shape has fewer than three vertices.
	ErrInvalidFootprint = errors.New("polygon footprint needs at least three vertices")
	// ErrMissingEgo2Map is returned when a box outside the ego frame has to be moved into it
	// without an ego pose.
	ErrMissingEgo2Map = errors.New("ego2map is required to leave a non-ego frame")
)

// Attributes are the non-geometric properties shared by every box variant.
type Attributes struct {
	Label      Label
	Confidence float64
	// UUID identifies the object across frames. Empty when the source does not track.
	UUID    string
	FrameID FrameID
}

// Validate checks value ranges.
func (a Attributes) Validate() error {
	if a.Confidence < 0 || a.Confidence > 1 {
		return errors.Wrapf(ErrInvalidConfidence, "got %v", a.Confidence)
	}
	return nil
}

// Box is the capability set the matching and metric layers consume.
// Concrete variants are *Box3D and *Box2D.
type Box interface {
	Attrs() Attributes
	// Center is the 3D position for 3D boxes and the ROI center (z=0) for 2D boxes
	Center() r3.Vector
	// Area is the footprint area for 3D boxes and the ROI area for 2D boxes
	Area() float64
}

// Is3D reports whether b is a 3D box.
func Is3D(b Box) bool {
	_, ok := b.(*Box3D)
	return ok
}

// SameVariant reports whether both boxes share the same concrete type.
func SameVariant(a, b Box) bool {
	switch a.(type) {
	case *Box3D:
		_, ok := b.(*Box3D)
		return ok
	case *Box2D:
		_, ok := b.(*Box2D)
		return ok
	}
	return false
}

// CenterDistance returns Euclidean distance between box centers
func CenterDistance(a, b Box) float64 {
	return a.Center().Sub(b.Center()).Norm()
}

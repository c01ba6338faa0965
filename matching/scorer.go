package matching

import (
	"math"
	"sort"

	"github.com/LdDl/perception-eval/box"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

var (
	// ErrBoxTypeMismatch is returned when a scorer receives two different box variants.
	ErrBoxTypeMismatch = errors.New("boxes are not the same variant")
	// ErrNot3D is returned when a 3D-only scorer receives a non-3D box.
	ErrNot3D = errors.New("scorer requires 3D boxes")
)

// Scorer is a pairwise similarity or distance between two boxes.
type Scorer interface {
	Kind() ScorerKind
	// Score compares two boxes. ego2map is needed only when a box lives in the map frame.
	Score(a, b box.Box, ego2map *box.Transform) (float64, error)
	SmallerIsBetter() bool
	// IsBetterThan reports whether score passes threshold in this scorer's direction
	IsBetterThan(score, threshold float64) bool
}

// NewScorer creates the scorer for a kind
func NewScorer(kind ScorerKind) (Scorer, error) {
	switch kind {
	case ScorerCenterDistance:
		return CenterDistance{}, nil
	case ScorerPlaneDistance:
		return PlaneDistance{}, nil
	case ScorerIoU2D:
		return IoU2D{}, nil
	case ScorerIoU3D:
		return IoU3D{}, nil
	case ScorerHeadingYaw:
		return HeadingYaw{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownScorer, "kind %d", kind)
	}
}

type smallerIsBetter struct{}

func (smallerIsBetter) SmallerIsBetter() bool { return true }

func (smallerIsBetter) IsBetterThan(score, threshold float64) bool { return score <= threshold }

type largerIsBetter struct{}

func (largerIsBetter) SmallerIsBetter() bool { return false }

func (largerIsBetter) IsBetterThan(score, threshold float64) bool { return threshold <= score }

func validatePair(a, b box.Box, require3D bool) error {
	if a == nil || b == nil || !box.SameVariant(a, b) {
		return errors.Wrapf(ErrBoxTypeMismatch, "%T and %T", a, b)
	}
	if require3D && !box.Is3D(a) {
		return errors.Wrapf(ErrNot3D, "got %T", a)
	}
	return nil
}

// baseFramePair moves both 3D boxes into the ego frame.
func baseFramePair(a, b box.Box, ego2map *box.Transform) (*box.Box3D, *box.Box3D, error) {
	a3, err := a.(*box.Box3D).InFrame(ego2map)
	if err != nil {
		return nil, nil, err
	}
	b3, err := b.(*box.Box3D).InFrame(ego2map)
	if err != nil {
		return nil, nil, err
	}
	return a3, b3, nil
}

// commonFramePair leaves boxes alone when they already share a frame.
func commonFramePair(a, b box.Box, ego2map *box.Transform) (*box.Box3D, *box.Box3D, error) {
	a3, b3 := a.(*box.Box3D), b.(*box.Box3D)
	if a3.FrameID == b3.FrameID {
		return a3, b3, nil
	}
	return baseFramePair(a3, b3, ego2map)
}

// CenterDistance is Euclidean distance between box centers (ROI centers for 2D boxes).
type CenterDistance struct{ smallerIsBetter }

// Kind implements Scorer
func (CenterDistance) Kind() ScorerKind { return ScorerCenterDistance }

// Score implements Scorer
func (CenterDistance) Score(a, b box.Box, ego2map *box.Transform) (float64, error) {
	if err := validatePair(a, b, false); err != nil {
		return 0, err
	}
	if box.Is3D(a) {
		a3, b3, err := commonFramePair(a, b, ego2map)
		if err != nil {
			return 0, err
		}
		return box.CenterDistance(a3, b3), nil
	}
	return box.CenterDistance(a, b), nil
}

// PlaneDistance is the RMS distance between the two footprint corners nearest to the ego vehicle.
type PlaneDistance struct{ smallerIsBetter }

// Kind implements Scorer
func (PlaneDistance) Kind() ScorerKind { return ScorerPlaneDistance }

// flippedCorners reorders a bounding box footprint as if the box were turned by 180 degrees.
// sortByRange re-sorts the corners afterwards, so the flip only decides the order of corners
// at equal range from the ego vehicle.
var flippedCorners = [4]int{2, 3, 0, 1}

// Score implements Scorer
func (PlaneDistance) Score(a, b box.Box, ego2map *box.Transform) (float64, error) {
	if err := validatePair(a, b, true); err != nil {
		return 0, err
	}
	a3, b3, err := baseFramePair(a, b, ego2map)
	if err != nil {
		return 0, err
	}
	if a3.Shape.Type != box.ShapeBoundingBox || b3.Shape.Type != box.ShapeBoundingBox {
		return box.PlanarCenterDistance(a3, b3), nil
	}

	cornersA := a3.Footprint()
	cornersB := b3.Footprint()
	if box.WrapAngle(a3.DiffYaw(b3)) > math.Pi/2 {
		flipped := make([]r2.Point, len(cornersA))
		for i, j := range flippedCorners {
			flipped[i] = cornersA[j]
		}
		cornersA = flipped
	}
	sortByRange(cornersA)
	sortByRange(cornersB)

	leftA, rightA := leftRight(cornersA[0], cornersA[1])
	leftB, rightB := leftRight(cornersB[0], cornersB[1])
	dLeft := leftA.Sub(leftB).Norm()
	dRight := rightA.Sub(rightB).Norm()
	distance := math.Sqrt(0.5 * (dLeft*dLeft + dRight*dRight))
	return roundTo(distance, 10), nil
}

func sortByRange(points []r2.Point) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Dot(points[i]) < points[j].Dot(points[j])
	})
}

// leftRight orders two corners as seen from the origin: the one counter-clockwise from the other is left
func leftRight(p, q r2.Point) (r2.Point, r2.Point) {
	if p.Cross(q) >= 0 {
		return q, p
	}
	return p, q
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// IoU2D is area IoU: bird's-eye footprints for 3D boxes, ROIs for 2D boxes.
type IoU2D struct{ largerIsBetter }

// Kind implements Scorer
func (IoU2D) Kind() ScorerKind { return ScorerIoU2D }

// Score implements Scorer
func (IoU2D) Score(a, b box.Box, ego2map *box.Transform) (float64, error) {
	if err := validatePair(a, b, false); err != nil {
		return 0, err
	}
	var intersection, areaA, areaB float64
	switch a := a.(type) {
	case *box.Box2D:
		other := b.(*box.Box2D)
		intersection = a.ROI.IntersectionArea(other.ROI)
		areaA, areaB = a.Area(), other.Area()
	case *box.Box3D:
		a3, b3, err := commonFramePair(a, b, ego2map)
		if err != nil {
			return 0, err
		}
		intersection = box.IntersectionArea(a3.Footprint(), b3.Footprint())
		areaA, areaB = a3.Area(), b3.Area()
	}
	return safeRatio(intersection, areaA+areaB-intersection), nil
}

// IoU3D is volume IoU of two 3D boxes.
type IoU3D struct{ largerIsBetter }

// Kind implements Scorer
func (IoU3D) Kind() ScorerKind { return ScorerIoU3D }

// Score implements Scorer
func (IoU3D) Score(a, b box.Box, ego2map *box.Transform) (float64, error) {
	if err := validatePair(a, b, true); err != nil {
		return 0, err
	}
	a3, b3, err := commonFramePair(a, b, ego2map)
	if err != nil {
		return 0, err
	}
	overlap := a3.HeightInterval().Intersection(b3.HeightInterval())
	height := 0.0
	if !overlap.IsEmpty() {
		height = overlap.Length()
	}
	intersection := box.IntersectionArea(a3.Footprint(), b3.Footprint()) * height
	return safeRatio(intersection, a3.Volume()+b3.Volume()-intersection), nil
}

// HeadingYaw is the absolute heading difference, wrapped to [0, pi].
type HeadingYaw struct{ smallerIsBetter }

// Kind implements Scorer
func (HeadingYaw) Kind() ScorerKind { return ScorerHeadingYaw }

// Score implements Scorer
func (HeadingYaw) Score(a, b box.Box, ego2map *box.Transform) (float64, error) {
	if err := validatePair(a, b, true); err != nil {
		return 0, err
	}
	a3, b3, err := baseFramePair(a, b, ego2map)
	if err != nil {
		return 0, err
	}
	return box.WrapAngle(a3.Yaw() - b3.Yaw()), nil
}

func safeRatio(num, denom float64) float64 {
	if denom <= 0 {
		return 0
	}
	return num / denom
}

// Package metrics folds a frame match history into scalar quality scores.
package metrics

import (
	"math"
	"sort"

	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/matching"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultMinRecall is the low-recall region excluded from AP
	DefaultMinRecall = 0.1
	// DefaultMinPrecision is the precision floor subtracted before averaging
	DefaultMinPrecision = 0.1
	// recallPoints is the number of interpolation points over [0, 1]
	recallPoints = 101
)

// Ap is average precision over an interpolated precision-recall curve.
type Ap struct {
	Scorer    matching.Scorer
	Threshold float64
	// Labels restricts estimations and ground truths; empty means every label
	Labels       []box.Label
	MinRecall    float64
	MinPrecision float64
}

// NewAp creates an AP metric with default recall/precision trims
func NewAp(scorer matching.Scorer, threshold float64, labels ...box.Label) *Ap {
	return &Ap{
		Scorer:       scorer,
		Threshold:    threshold,
		Labels:       labels,
		MinRecall:    DefaultMinRecall,
		MinPrecision: DefaultMinPrecision,
	}
}

// Compute returns AP over frames, 0 when there is no ground truth.
func (a *Ap) Compute(frames []*matching.FrameBoxMatch) (float64, error) {
	buf, err := a.fill(frames, func(_ *matching.BoxMatch, _ *box.Transform) (float64, error) {
		return 1.0, nil
	})
	if err != nil {
		return 0, err
	}
	return buf.averagePrecision(a.MinRecall, a.MinPrecision), nil
}

// ApH is AP where each true positive is weighted by how well its heading agrees.
type ApH struct {
	Ap
}

// NewApH creates an APH metric with default recall/precision trims
func NewApH(scorer matching.Scorer, threshold float64, labels ...box.Label) *ApH {
	return &ApH{Ap: *NewAp(scorer, threshold, labels...)}
}

// Compute returns APH over frames, 0 when there is no ground truth. Boxes must be 3D.
func (a *ApH) Compute(frames []*matching.FrameBoxMatch) (float64, error) {
	buf, err := a.fill(frames, headingCredit)
	if err != nil {
		return 0, err
	}
	return buf.averagePrecision(a.MinRecall, a.MinPrecision), nil
}

// headingCredit is 1 for an exact heading and falls linearly to 0 at pi.
func headingCredit(m *matching.BoxMatch, ego2map *box.Transform) (float64, error) {
	diff, err := matching.HeadingYaw{}.Score(m.Estimation, m.GroundTruth, ego2map)
	if err != nil {
		return 0, errors.Wrap(err, "can't weight true positive by heading")
	}
	return clamp(1-box.WrapAngle(diff)/math.Pi, 0, 1), nil
}

// apBuffer collects per-estimation records for one metric call
type apBuffer struct {
	numGT       int
	tps         []float64
	fps         []float64
	confidences []float64
}

// fill walks every estimation of the selected labels. credit is consulted only for true positives.
func (a *Ap) fill(
	frames []*matching.FrameBoxMatch,
	credit func(*matching.BoxMatch, *box.Transform) (float64, error),
) (*apBuffer, error) {
	buf := &apBuffer{}
	for _, frame := range frames {
		buf.numGT += frame.NumGT(a.Labels...)
		for _, m := range frame.Matches {
			if m.Estimation == nil || !selected(m.Estimation, a.Labels) {
				continue
			}
			tp, err := m.IsTP(a.Scorer, a.Threshold, frame.Ego2Map)
			if err != nil {
				return nil, errors.Wrapf(err, "frame %d", frame.FrameIndex)
			}
			tpValue, fpValue := 0.0, 1.0
			if tp {
				tpValue, err = credit(m, frame.Ego2Map)
				if err != nil {
					return nil, errors.Wrapf(err, "frame %d", frame.FrameIndex)
				}
				fpValue = 0.0
			}
			buf.tps = append(buf.tps, tpValue)
			buf.fps = append(buf.fps, fpValue)
			buf.confidences = append(buf.confidences, m.Estimation.Attrs().Confidence)
		}
	}
	return buf, nil
}

// averagePrecision sorts records by confidence, builds the precision envelope and averages it
// over the recall range [minRecall, 1] above the minPrecision floor.
func (buf *apBuffer) averagePrecision(minRecall, minPrecision float64) float64 {
	if buf.numGT == 0 || len(buf.confidences) == 0 || minPrecision >= 1 {
		return 0.0
	}

	order := make([]int, len(buf.confidences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return buf.confidences[order[i]] > buf.confidences[order[j]]
	})
	tps := make([]float64, len(order))
	fps := make([]float64, len(order))
	for k, idx := range order {
		tps[k] = buf.tps[idx]
		fps[k] = buf.fps[idx]
	}
	tpCum := floats.CumSum(make([]float64, len(tps)), tps)
	fpCum := floats.CumSum(make([]float64, len(fps)), fps)

	precision := make([]float64, len(order))
	recall := make([]float64, len(order))
	for k := range order {
		precision[k] = safeDiv(tpCum[k], tpCum[k]+fpCum[k])
		recall[k] = tpCum[k] / float64(buf.numGT)
	}
	for k := len(precision) - 2; k >= 0; k-- {
		precision[k] = math.Max(precision[k], precision[k+1])
	}

	skip := int(math.Round(100 * minRecall))
	if skip >= recallPoints {
		return 0.0
	}
	sum := 0.0
	for k := skip; k < recallPoints; k++ {
		p := interpolate(float64(k)/float64(recallPoints-1), recall, precision)
		sum += math.Max(p-minPrecision, 0)
	}
	mean := sum / float64(recallPoints-skip)
	return mean / (1 - minPrecision)
}

// interpolate evaluates the piecewise-linear curve (xs, ys) at x. xs must be non-decreasing.
// Left of the curve it returns ys[0], right of it 0.
func interpolate(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x < xs[0] {
		return ys[0]
	}
	if x > xs[n-1] {
		return 0
	}
	// last index with xs[j] <= x
	j := sort.Search(n, func(i int) bool { return xs[i] > x }) - 1
	if j == n-1 || xs[j+1] == xs[j] {
		return ys[j]
	}
	slope := (ys[j+1] - ys[j]) / (xs[j+1] - xs[j])
	return ys[j] + (x-xs[j])*slope
}

func selected(b box.Box, labels []box.Label) bool {
	return len(labels) == 0 || b.Attrs().Label.In(labels)
}

func safeDiv(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

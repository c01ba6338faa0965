package matching

import (
	"github.com/LdDl/perception-eval/box"
	"github.com/pkg/errors"
)

var (
	// ErrEmptyMatch is returned when neither side of a match is set.
	ErrEmptyMatch = errors.New("match needs an estimation or a ground truth")
	// ErrIncompleteMatch is returned when scoring a match that lacks one side.
	ErrIncompleteMatch = errors.New("match has no pair to score")
)

// BoxMatch pairs an estimation with a ground truth. Either side may be nil, never both.
// It stores geometry only: TP/FP/FN is decided when queried with a scorer and a threshold.
type BoxMatch struct {
	Estimation  box.Box
	GroundTruth box.Box
}

// NewBoxMatch creates a match, rejecting an empty pair
func NewBoxMatch(estimation, groundTruth box.Box) (*BoxMatch, error) {
	if estimation == nil && groundTruth == nil {
		return nil, ErrEmptyMatch
	}
	return &BoxMatch{Estimation: estimation, GroundTruth: groundTruth}, nil
}

// IsPaired reports whether both sides are present
func (m *BoxMatch) IsPaired() bool {
	return m.Estimation != nil && m.GroundTruth != nil
}

// IsLabelCorrect reports whether both sides are present and share a label
func (m *BoxMatch) IsLabelCorrect() bool {
	return m.IsPaired() && m.Estimation.Attrs().Label == m.GroundTruth.Attrs().Label
}

// Score evaluates the pair with scorer
func (m *BoxMatch) Score(scorer Scorer, ego2map *box.Transform) (float64, error) {
	if !m.IsPaired() {
		return 0, ErrIncompleteMatch
	}
	return scorer.Score(m.Estimation, m.GroundTruth, ego2map)
}

// IsTP reports a correct detection: paired, same label, and score passes threshold.
func (m *BoxMatch) IsTP(scorer Scorer, threshold float64, ego2map *box.Transform) (bool, error) {
	if !m.IsLabelCorrect() {
		return false, nil
	}
	score, err := m.Score(scorer, ego2map)
	if err != nil {
		return false, err
	}
	return scorer.IsBetterThan(score, threshold), nil
}

// IsFP reports an estimation that is not a TP
func (m *BoxMatch) IsFP(scorer Scorer, threshold float64, ego2map *box.Transform) (bool, error) {
	if m.Estimation == nil {
		return false, nil
	}
	tp, err := m.IsTP(scorer, threshold, ego2map)
	return !tp, err
}

// IsFN reports a ground truth that is not a TP
func (m *BoxMatch) IsFN(scorer Scorer, threshold float64, ego2map *box.Transform) (bool, error) {
	if m.GroundTruth == nil {
		return false, nil
	}
	tp, err := m.IsTP(scorer, threshold, ego2map)
	return !tp, err
}

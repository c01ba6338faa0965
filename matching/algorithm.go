package matching

import (
	"math"
	"sort"

	"github.com/LdDl/perception-eval/box"
	"github.com/pkg/errors"
)

// MatchingAlgorithm assigns estimations to ground truths one-to-one within a frame.
type MatchingAlgorithm interface {
	Kind() AlgorithmKind
	Scorer() Scorer
	Policy() Policy
	// Threshold is the effective eligibility threshold
	Threshold() float64
	// Match returns exactly one BoxMatch per estimation. Unmatched ground truths are not emitted.
	Match(estimations, groundTruths []box.Box, ego2map *box.Transform) ([]*BoxMatch, error)
}

// NewAlgorithm creates a matching algorithm from resolved parts
func NewAlgorithm(kind AlgorithmKind, scorer Scorer, policy Policy, threshold float64) (MatchingAlgorithm, error) {
	base := assignment{scorer: scorer, policy: policy, threshold: threshold}
	switch kind {
	case AlgorithmGreedy:
		return &Greedy{assignment: base}, nil
	case AlgorithmHungarian:
		return &Hungarian{assignment: base}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "kind %d", kind)
	}
}

// assignment holds what every algorithm shares
type assignment struct {
	scorer    Scorer
	policy    Policy
	threshold float64
}

func (a assignment) Scorer() Scorer     { return a.scorer }
func (a assignment) Policy() Policy     { return a.policy }
func (a assignment) Threshold() float64 { return a.threshold }

// Greedy repeatedly takes the globally best remaining pair.
type Greedy struct {
	assignment
}

// Kind implements MatchingAlgorithm
func (g *Greedy) Kind() AlgorithmKind { return AlgorithmGreedy }

// Match implements MatchingAlgorithm
func (g *Greedy) Match(estimations, groundTruths []box.Box, ego2map *box.Transform) ([]*BoxMatch, error) {
	table, err := buildScoreTable(g.scorer, g.policy, g.threshold, estimations, groundTruths, ego2map)
	if err != nil {
		return nil, errors.Wrap(err, "can't build score table")
	}
	remainingEstimations := estimations
	remainingGroundTruths := groundTruths
	matches := make([]*BoxMatch, 0, len(estimations))
	for k := 0; k < len(estimations); k++ {
		i, j, ok := table.best(g.scorer.SmallerIsBetter())
		if !ok {
			break
		}
		matches = append(matches, &BoxMatch{
			Estimation:  remainingEstimations[i],
			GroundTruth: remainingGroundTruths[j],
		})
		// Row belongs to the estimation, column to the ground truth
		table.removeRow(i)
		table.removeColumn(j)
		remainingEstimations = removeAt(remainingEstimations, i)
		remainingGroundTruths = removeAt(remainingGroundTruths, j)
	}
	for _, est := range remainingEstimations {
		matches = append(matches, &BoxMatch{Estimation: est})
	}
	return matches, nil
}

// Hungarian finds the assignment maximising total gain over eligible pairs. Gains rank pairs
// by score and are positive for every eligible pair.
type Hungarian struct {
	assignment
}

// Kind implements MatchingAlgorithm
func (h *Hungarian) Kind() AlgorithmKind { return AlgorithmHungarian }

// Match implements MatchingAlgorithm
func (h *Hungarian) Match(estimations, groundTruths []box.Box, ego2map *box.Transform) ([]*BoxMatch, error) {
	table, err := buildScoreTable(h.scorer, h.policy, h.threshold, estimations, groundTruths, ego2map)
	if err != nil {
		return nil, errors.Wrap(err, "can't build score table")
	}
	rows, cols := table.Dims()

	// Convert scores into positive gains; ineligible and padded cells get 0.
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := table.At(i, j); !math.IsNaN(v) {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
		}
	}
	assigned := make(map[int]int)
	if !math.IsInf(lo, 1) {
		size := rows
		if cols > size {
			size = cols
		}
		gains := make([][]float64, size)
		for i := range gains {
			gains[i] = make([]float64, size)
		}
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				v := table.At(i, j)
				if math.IsNaN(v) {
					continue
				}
				if h.scorer.SmallerIsBetter() {
					gains[i][j] = 1 + hi - v
				} else {
					gains[i][j] = 1 + v - lo
				}
			}
		}
		for i, j := range solveAssignment(gains) {
			if i < rows && j < cols && !math.IsNaN(table.At(i, j)) {
				assigned[i] = j
			}
		}
	}

	matchedRows := make([]int, 0, len(assigned))
	for i := range assigned {
		matchedRows = append(matchedRows, i)
	}
	sort.Ints(matchedRows)
	matches := make([]*BoxMatch, 0, len(estimations))
	for _, i := range matchedRows {
		matches = append(matches, &BoxMatch{
			Estimation:  estimations[i],
			GroundTruth: groundTruths[assigned[i]],
		})
	}
	for i, est := range estimations {
		if _, ok := assigned[i]; !ok {
			matches = append(matches, &BoxMatch{Estimation: est})
		}
	}
	return matches, nil
}

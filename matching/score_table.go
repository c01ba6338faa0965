package matching

import (
	"math"

	"github.com/LdDl/perception-eval/box"
	"github.com/pkg/errors"
)

// scoreTable is an estimations x ground truths matrix. NaN marks a pair that may not be matched.
// Built fresh for every frame.
type scoreTable struct {
	cells [][]float64
	cols  int
}

func newScoreTable(rows, cols int) *scoreTable {
	cells := make([][]float64, rows)
	for i := range cells {
		cells[i] = make([]float64, cols)
		for j := range cells[i] {
			cells[i][j] = math.NaN()
		}
	}
	return &scoreTable{cells: cells, cols: cols}
}

// Dims returns (rows, cols)
func (t *scoreTable) Dims() (int, int) {
	return len(t.cells), t.cols
}

func (t *scoreTable) At(i, j int) float64 {
	return t.cells[i][j]
}

func (t *scoreTable) set(i, j int, v float64) {
	t.cells[i][j] = v
}

// best returns the position of the extremal scored cell.
// Ties keep the first cell in row-major order. ok is false when nothing is scored.
func (t *scoreTable) best(smallerIsBetter bool) (int, int, bool) {
	bestI, bestJ := -1, -1
	bestScore := math.NaN()
	for i, row := range t.cells {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if bestI == -1 ||
				(smallerIsBetter && v < bestScore) ||
				(!smallerIsBetter && v > bestScore) {
				bestI, bestJ, bestScore = i, j, v
			}
		}
	}
	return bestI, bestJ, bestI != -1
}

// removeRow drops estimation i
func (t *scoreTable) removeRow(i int) {
	t.cells = append(t.cells[:i], t.cells[i+1:]...)
}

// removeColumn drops ground truth j from every row
func (t *scoreTable) removeColumn(j int) {
	for i := range t.cells {
		t.cells[i] = append(t.cells[i][:j], t.cells[i][j+1:]...)
	}
	t.cols--
}

// buildScoreTable scores every same-frame pair that passes both the threshold and the policy.
func buildScoreTable(
	scorer Scorer,
	policy Policy,
	threshold float64,
	estimations, groundTruths []box.Box,
	ego2map *box.Transform,
) (*scoreTable, error) {
	table := newScoreTable(len(estimations), len(groundTruths))
	for i, est := range estimations {
		for j, gt := range groundTruths {
			if est.Attrs().FrameID != gt.Attrs().FrameID {
				continue
			}
			score, err := scorer.Score(est, gt, ego2map)
			if err != nil {
				return nil, errors.Wrapf(err, "can't score estimation %d against ground truth %d", i, j)
			}
			if scorer.IsBetterThan(score, threshold) && policy.IsMatchable(est, gt) {
				table.set(i, j, score)
			}
		}
	}
	return table, nil
}

// removeAt returns boxes without index i, leaving the input untouched
func removeAt(boxes []box.Box, i int) []box.Box {
	out := make([]box.Box, 0, len(boxes)-1)
	out = append(out, boxes[:i]...)
	return append(out, boxes[i+1:]...)
}

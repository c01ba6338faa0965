package matching

import (
	"math"
	"testing"

	"github.com/LdDl/perception-eval/box"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAlgorithm(t *testing.T, params MatchingParams) MatchingAlgorithm {
	t.Helper()
	algorithm, err := params.Build()
	require.NoError(t, err)
	return algorithm
}

func TestScoreTableShrinksIndependently(t *testing.T) {
	table := newScoreTable(3, 5)
	for i := 0; i < 3; i++ {
		for j := 0; j < 5; j++ {
			table.set(i, j, float64(10*i+j))
		}
	}
	for k := 1; k <= 3; k++ {
		i, j, ok := table.best(true)
		require.True(t, ok)
		table.removeRow(i)
		table.removeColumn(j)
		rows, cols := table.Dims()
		assert.Equal(t, 3-k, rows)
		assert.Equal(t, 5-k, cols)
	}
	_, _, ok := table.best(true)
	assert.False(t, ok)
}

func TestScoreTableRemovesRowAndColumnNotDiagonal(t *testing.T) {
	table := newScoreTable(2, 3)
	// [ 5 1 7 ]
	// [ 2 9 3 ]
	values := [][]float64{{5, 1, 7}, {2, 9, 3}}
	for i, row := range values {
		for j, v := range row {
			table.set(i, j, v)
		}
	}
	i, j, ok := table.best(true)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, j)
	table.removeRow(i)
	table.removeColumn(j)
	// remaining: [ 2 3 ]
	assert.Equal(t, 2.0, table.At(0, 0))
	assert.Equal(t, 3.0, table.At(0, 1))
}

func TestScoreTableTieBreak(t *testing.T) {
	table := newScoreTable(2, 2)
	table.set(0, 1, 0.5)
	table.set(1, 0, 0.5)
	i, j, ok := table.best(false)
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, j)
}

func TestGreedyMatchInvariants(t *testing.T) {
	gts := boxes(
		newBox3D(t, "car", r3.Vector{X: 0}, 0),
		newBox3D(t, "car", r3.Vector{X: 10}, 0),
		newBox3D(t, "car", r3.Vector{X: 20}, 0),
	)
	ests := boxes(
		newBox3D(t, "car", r3.Vector{X: 10.5}, 0),
		newBox3D(t, "car", r3.Vector{X: 0.2}, 0),
		newBox3D(t, "car", r3.Vector{X: 50}, 0),
		newBox3D(t, "pedestrian", r3.Vector{X: 20}, 0),
	)
	params := DefaultMatchingParams()
	params.MatchableDistance = 5
	algorithm := buildAlgorithm(t, params)

	matches, err := algorithm.Match(ests, gts, nil)
	require.NoError(t, err)
	require.Len(t, matches, len(ests))

	seen := make(map[box.Box]int)
	paired := 0
	for _, m := range matches {
		require.NotNil(t, m.Estimation)
		seen[m.Estimation]++
		if m.GroundTruth != nil {
			paired++
		}
	}
	assert.Len(t, seen, len(ests))
	assert.LessOrEqual(t, paired, 3)
	assert.Equal(t, 2, paired)

	// best pair first
	assert.Same(t, ests[1], matches[0].Estimation)
	assert.Same(t, gts[0], matches[0].GroundTruth)
	assert.Same(t, ests[0], matches[1].Estimation)
	assert.Same(t, gts[1], matches[1].GroundTruth)
	// leftovers in input order
	assert.Same(t, ests[2], matches[2].Estimation)
	assert.Nil(t, matches[2].GroundTruth)
	assert.Same(t, ests[3], matches[3].Estimation)
	assert.Nil(t, matches[3].GroundTruth)

	// inputs untouched
	assert.Len(t, ests, 4)
	assert.Len(t, gts, 3)
}

func TestGreedyPolicies(t *testing.T) {
	gts := boxes(newBox3D(t, box.LabelUnknown, r3.Vector{X: 1}, 0))
	ests := boxes(newBox3D(t, "car", r3.Vector{X: 1}, 0))

	for _, tc := range []struct {
		policy PolicyKind
		paired bool
	}{
		{PolicyStrict, false},
		{PolicyAllowUnknown, true},
		{PolicyAllowAny, true},
	} {
		params := DefaultMatchingParams()
		params.Policy = tc.policy
		matches, err := buildAlgorithm(t, params).Match(ests, gts, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, tc.paired, matches[0].GroundTruth != nil, tc.policy.String())
	}
}

func TestGreedySkipsDifferentFrames(t *testing.T) {
	gt := newBox3D(t, "car", r3.Vector{X: 1}, 0)
	gt.FrameID = box.FrameMap
	est := newBox3D(t, "car", r3.Vector{X: 1}, 0)

	matches, err := buildAlgorithm(t, DefaultMatchingParams()).Match(boxes(est), boxes(gt), box.Identity())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Nil(t, matches[0].GroundTruth)
}

func TestGreedyIoUDefaultThreshold(t *testing.T) {
	params := DefaultMatchingParams()
	params.Scorer = ScorerIoU3D
	algorithm := buildAlgorithm(t, params)
	assert.True(t, math.IsInf(algorithm.Threshold(), -1))

	gts := boxes(
		newBox3D(t, "car", r3.Vector{X: 0}, 0),
		newBox3D(t, "car", r3.Vector{X: 2}, 0),
	)
	ests := boxes(newBox3D(t, "car", r3.Vector{X: 1.9}, 0))
	matches, err := algorithm.Match(ests, gts, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Same(t, gts[1], matches[0].GroundTruth)
}

func TestGreedyDegenerateInputs(t *testing.T) {
	algorithm := buildAlgorithm(t, DefaultMatchingParams())

	t.Run("no ground truths", func(t *testing.T) {
		ests := boxes(newBox3D(t, "car", r3.Vector{}, 0), newBox3D(t, "car", r3.Vector{X: 3}, 0))
		matches, err := algorithm.Match(ests, nil, nil)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		for _, m := range matches {
			assert.Nil(t, m.GroundTruth)
		}
	})

	t.Run("no estimations", func(t *testing.T) {
		matches, err := algorithm.Match(nil, boxes(newBox3D(t, "car", r3.Vector{}, 0)), nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("scorer type error propagates", func(t *testing.T) {
		params := DefaultMatchingParams()
		params.Scorer = ScorerIoU3D
		b2 := newBox2D(t, "car", box.NewRect(0, 0, 1, 1))
		_, err := buildAlgorithm(t, params).Match(boxes(b2), boxes(b2), nil)
		assert.ErrorIs(t, err, ErrNot3D)
	})
}

func TestHungarianBeatsGreedy(t *testing.T) {
	gts := boxes(
		newBox3D(t, "car", r3.Vector{X: 0}, 0),
		newBox3D(t, "car", r3.Vector{X: 3}, 0),
	)
	ests := boxes(
		newBox3D(t, "car", r3.Vector{X: 1}, 0),
		newBox3D(t, "car", r3.Vector{X: -1.5}, 0),
	)
	params := DefaultMatchingParams()
	params.MatchableDistance = 4

	greedy, err := buildAlgorithm(t, params).Match(ests, gts, nil)
	require.NoError(t, err)
	require.Len(t, greedy, 2)
	assert.Same(t, gts[0], greedy[0].GroundTruth)
	assert.Nil(t, greedy[1].GroundTruth)

	params.Algorithm = AlgorithmHungarian
	hungarian := buildAlgorithm(t, params)
	assert.Equal(t, AlgorithmHungarian, hungarian.Kind())
	matches, err := hungarian.Match(ests, gts, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Same(t, ests[0], matches[0].Estimation)
	assert.Same(t, gts[1], matches[0].GroundTruth)
	assert.Same(t, ests[1], matches[1].Estimation)
	assert.Same(t, gts[0], matches[1].GroundTruth)
}

func TestHungarianLeftovers(t *testing.T) {
	params := DefaultMatchingParams()
	params.Algorithm = AlgorithmHungarian
	params.MatchableDistance = 1
	algorithm := buildAlgorithm(t, params)

	gts := boxes(newBox3D(t, "car", r3.Vector{X: 0}, 0))
	ests := boxes(
		newBox3D(t, "car", r3.Vector{X: 30}, 0),
		newBox3D(t, "car", r3.Vector{X: 0.5}, 0),
		newBox3D(t, "car", r3.Vector{X: 60}, 0),
	)
	matches, err := algorithm.Match(ests, gts, nil)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Same(t, ests[1], matches[0].Estimation)
	assert.Same(t, gts[0], matches[0].GroundTruth)
	assert.Same(t, ests[0], matches[1].Estimation)
	assert.Nil(t, matches[1].GroundTruth)
	assert.Same(t, ests[2], matches[2].Estimation)

	none, err := algorithm.Match(boxes(newBox3D(t, "car", r3.Vector{X: 99}, 0)), gts, nil)
	require.NoError(t, err)
	require.Len(t, none, 1)
	assert.Nil(t, none[0].GroundTruth)
}

package evaluation

import (
	"math"
	"testing"

	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/LdDl/perception-eval/matching"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPerceptionEvaluationConfig(t *testing.T) {
	cfg, err := NewPerceptionEvaluationConfig(map[string]any{
		"dataset": "nuscenes",
		"task":    "tracking",
		"filtering": map[string]any{
			"target_labels":  []string{"car", "pedestrian"},
			"max_distance":   50,
			"min_confidence": "0.3",
		},
		"matching": map[string]any{
			"scorer":             "iou3d",
			"policy":             "allow_unknown",
			"algorithm":          "HUNGARIAN",
			"matchable_distance": 0.5,
		},
		"frame_tolerance": 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, "nuscenes", cfg.Dataset)
	assert.Equal(t, TaskTracking, cfg.Task)
	assert.Equal(t, []box.Label{"car", "pedestrian"}, cfg.Filtering.TargetLabels)
	assert.Equal(t, 50.0, cfg.Filtering.MaxDistance)
	assert.Equal(t, 0.3, cfg.Filtering.MinConfidence)
	assert.Equal(t, matching.ScorerIoU3D, cfg.Matching.Scorer)
	assert.Equal(t, matching.PolicyAllowUnknown, cfg.Matching.Policy)
	assert.Equal(t, matching.AlgorithmHungarian, cfg.Matching.Algorithm)
	assert.Equal(t, 0.5, cfg.Matching.MatchableDistance)
	assert.Equal(t, int64(5000), cfg.FrameTolerance)
}

func TestNewPerceptionEvaluationConfigDefaults(t *testing.T) {
	cfg, err := NewPerceptionEvaluationConfig(map[string]any{
		"matching": map[string]any{"scorer": "plane_distance"},
	})
	require.NoError(t, err)
	assert.Equal(t, TaskDetection, cfg.Task)
	assert.Equal(t, matching.ScorerPlaneDistance, cfg.Matching.Scorer)
	assert.Equal(t, matching.PolicyStrict, cfg.Matching.Policy)
	assert.Equal(t, matching.AlgorithmGreedy, cfg.Matching.Algorithm)
	assert.True(t, math.IsInf(cfg.Matching.MatchableDistance, 1))
	assert.Equal(t, groundtruth.DefaultFrameTolerance, cfg.FrameTolerance)
}

func TestNewPerceptionEvaluationConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"unknown scorer", map[string]any{"matching": map[string]any{"scorer": "giou"}}, "unknown scorer"},
		{"unknown policy", map[string]any{"matching": map[string]any{"policy": "lenient"}}, "unknown matching policy"},
		{"unknown algorithm", map[string]any{"matching": map[string]any{"algorithm": "auction"}}, "unknown matching algorithm"},
		{"unknown task", map[string]any{"task": "forecasting"}, "unknown evaluation task"},
		{"unknown key", map[string]any{"frame_tolerence": 10}, "frame_tolerence"},
		{"negative tolerance", map[string]any{"frame_tolerance": -1}, "invalid evaluation config"},
		{"confidence above one", map[string]any{"filtering": map[string]any{"min_confidence": 2}}, "invalid evaluation config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPerceptionEvaluationConfig(tt.raw)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidateRejectsNaNThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matching.MatchableDistance = math.NaN()
	assert.Error(t, cfg.Validate())
}

func TestParseTask(t *testing.T) {
	task, err := ParseTask("Segmentation")
	require.NoError(t, err)
	assert.Equal(t, TaskSegmentation, task)
	assert.Equal(t, "SEGMENTATION", task.String())

	_, err = ParseTask("")
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.Equal(t, "UNKNOWN", Task(42).String())
}

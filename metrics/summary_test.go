package metrics

import (
	"testing"

	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/LdDl/perception-eval/matching"
	"github.com/LdDl/perception-eval/segmentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	var frames []*matching.FrameBoxMatch
	for i := 0; i < 2; i++ {
		gt := object(t, "car", "g1", 0, 0, 1)
		est := object(t, "car", "t1", 0.5, 0, 0.9)
		frames = append(frames, frame(i, []box.Box{gt}, pair(est, gt)))
	}

	scores, err := Summarize(frames, SummaryConfig{
		Scorer:       matching.CenterDistance{},
		Labels:       []box.Label{"car", "pedestrian"},
		Thresholds:   []float64{0.25, 1.0},
		WithHeading:  true,
		WithTracking: true,
	})
	require.NoError(t, err)
	require.Len(t, scores, 4)

	assert.Equal(t, box.Label("car"), scores[0].Label)
	assert.Equal(t, 0.25, scores[0].Threshold)
	assert.Equal(t, 0.0, scores[0].AP)

	assert.Equal(t, 1.0, scores[1].Threshold)
	assert.InDelta(t, 1.0, scores[1].AP, eps)
	assert.InDelta(t, 1.0, scores[1].APH, eps)
	assert.InDelta(t, 1.0, scores[1].MOTA, eps)
	assert.InDelta(t, 0.5, scores[1].MOTP, eps)

	for _, s := range scores[2:] {
		assert.Equal(t, box.Label("pedestrian"), s.Label)
		assert.Equal(t, 0.0, s.AP)
		assert.Equal(t, 0.0, s.MOTA)
	}
}

func TestSummarizeNeedsScorer(t *testing.T) {
	_, err := Summarize(nil, SummaryConfig{Labels: []box.Label{"car"}, Thresholds: []float64{1}})
	assert.Error(t, err)
}

func TestSegmentationIoU(t *testing.T) {
	frames := []*segmentation.FrameSegmentation{
		{Channels: map[groundtruth.CameraChannel]segmentation.Confusion{
			"CAM_FRONT": {TP: 6, FP: 2, FN: 2, TN: 90},
			"CAM_BACK":  {TP: 0, FP: 5, FN: 5, TN: 90},
		}},
		{Channels: map[groundtruth.CameraChannel]segmentation.Confusion{
			"CAM_FRONT": {TP: 2, FP: 0, FN: 0, TN: 98},
		}},
	}

	front := SegmentationIoU(frames, "CAM_FRONT")
	assert.InDelta(t, 8.0/12.0, front.IoU, eps)
	assert.InDelta(t, 0.8, front.Precision, eps)
	assert.InDelta(t, 0.8, front.Recall, eps)

	all := SegmentationIoU(frames)
	assert.InDelta(t, 8.0/22.0, all.IoU, eps)

	assert.Equal(t, SegmentationScore{}, SegmentationIoU(nil))
}

package segmentation

import (
	"testing"

	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewFrameSegmentation(t *testing.T) {
	gts := map[groundtruth.CameraChannel]*mat.Dense{
		"CAM_FRONT": mat.NewDense(2, 2, []float64{
			0, 1,
			2, 2,
		}),
	}
	ests := map[groundtruth.CameraChannel]*mat.Dense{
		"CAM_FRONT": mat.NewDense(2, 2, []float64{
			0, 1,
			1, 0,
		}),
	}
	frame, err := NewFrameSegmentation(100_000, 3, gts, ests)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), frame.UnixTime)
	assert.Equal(t, 3, frame.FrameIndex)
	assert.Equal(t, Confusion{TP: 1, FP: 1, FN: 2, TN: 1}, frame.Channels["CAM_FRONT"])
}

func TestNewFrameSegmentationMissingChannels(t *testing.T) {
	gts := map[groundtruth.CameraChannel]*mat.Dense{
		"CAM_FRONT": mat.NewDense(1, 3, []float64{1, 1, 0}),
	}
	ests := map[groundtruth.CameraChannel]*mat.Dense{
		"CAM_BACK": mat.NewDense(1, 2, []float64{0, 4}),
	}
	frame, err := NewFrameSegmentation(0, 0, gts, ests)
	require.NoError(t, err)

	assert.Equal(t, Confusion{FN: 2, TN: 1}, frame.Channels["CAM_FRONT"])
	assert.Equal(t, Confusion{FP: 1, TN: 1}, frame.Channels["CAM_BACK"])
	assert.Equal(t, Confusion{FP: 1, FN: 2, TN: 2}, frame.Total())
	assert.Equal(t, []groundtruth.CameraChannel{"CAM_BACK", "CAM_FRONT"}, frame.ChannelNames())
}

func TestNewFrameSegmentationShapeMismatch(t *testing.T) {
	gts := map[groundtruth.CameraChannel]*mat.Dense{
		"CAM_FRONT": mat.NewDense(2, 2, nil),
	}
	ests := map[groundtruth.CameraChannel]*mat.Dense{
		"CAM_FRONT": mat.NewDense(2, 3, nil),
	}
	_, err := NewFrameSegmentation(0, 0, gts, ests)
	assert.ErrorIs(t, err, ErrMaskShape)
}

func TestNewFrameSegmentationEmptyMasks(t *testing.T) {
	gts := map[groundtruth.CameraChannel]*mat.Dense{"CAM_FRONT": nil}
	frame, err := NewFrameSegmentation(0, 0, gts, nil)
	require.NoError(t, err)
	assert.Equal(t, Confusion{}, frame.Channels["CAM_FRONT"])
}

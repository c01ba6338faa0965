package metrics

import (
	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/LdDl/perception-eval/segmentation"
)

// SegmentationScore summarises pixel agreement over a segmentation history.
type SegmentationScore struct {
	IoU       float64
	Precision float64
	Recall    float64
}

// SegmentationIoU pools pixel counts over frames, restricted to channels when any are given.
func SegmentationIoU(frames []*segmentation.FrameSegmentation, channels ...groundtruth.CameraChannel) SegmentationScore {
	total := segmentation.Confusion{}
	for _, frame := range frames {
		for channel, c := range frame.Channels {
			if len(channels) > 0 && !hasChannel(channels, channel) {
				continue
			}
			total = total.Add(c)
		}
	}
	tp := float64(total.TP)
	return SegmentationScore{
		IoU:       safeDiv(tp, tp+float64(total.FP)+float64(total.FN)),
		Precision: safeDiv(tp, tp+float64(total.FP)),
		Recall:    safeDiv(tp, tp+float64(total.FN)),
	}
}

func hasChannel(channels []groundtruth.CameraChannel, channel groundtruth.CameraChannel) bool {
	for _, c := range channels {
		if c == channel {
			return true
		}
	}
	return false
}

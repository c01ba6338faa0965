// Package groundtruth holds the annotated frames of one scene and aligns estimation
// timestamps to them.
package groundtruth

import (
	"github.com/LdDl/perception-eval/box"
	"gonum.org/v1/gonum/mat"
)

// DefaultFrameTolerance is the maximum timestamp gap, in microseconds, between an estimation
// and the ground-truth frame it is evaluated against.
const DefaultFrameTolerance int64 = 7500

// CameraChannel names a camera stream such as "CAM_FRONT".
type CameraChannel string

// FrameGroundTruth is one annotated sample. Detection scenes fill Boxes, segmentation scenes
// fill Masks.
type FrameGroundTruth struct {
	UnixTime   int64
	FrameIndex int
	Boxes      []box.Box
	Masks      map[CameraChannel]*mat.Dense
	Ego2Map    *box.Transform
}

// SceneGroundTruth is the read-only ground truth of a scene, built once by a dataset loader.
type SceneGroundTruth struct {
	Frames []*FrameGroundTruth
	// Ego2Sensors holds the static transform from the ego frame to each sensor, keyed by sensor name
	Ego2Sensors map[string]*box.Transform
}

// NewSceneGroundTruth creates a scene from frames in their dataset order
func NewSceneGroundTruth(frames []*FrameGroundTruth, ego2sensors map[string]*box.Transform) *SceneGroundTruth {
	if ego2sensors == nil {
		ego2sensors = make(map[string]*box.Transform)
	}
	return &SceneGroundTruth{
		Frames:      frames,
		Ego2Sensors: ego2sensors,
	}
}

// LookupFrame returns the frame closest in time to unixTime, or nil when even the closest
// one is further than tolerance. On equal distance the earlier frame in Frames wins.
func (s *SceneGroundTruth) LookupFrame(unixTime, tolerance int64) *FrameGroundTruth {
	var nearest *FrameGroundTruth
	var minDiff int64
	for _, frame := range s.Frames {
		diff := absInt64(unixTime - frame.UnixTime)
		if nearest == nil || diff < minDiff {
			nearest = frame
			minDiff = diff
		}
	}
	if nearest == nil || minDiff > tolerance {
		return nil
	}
	return nearest
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

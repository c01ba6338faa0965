package metrics

import (
	"testing"

	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/matching"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func object(t *testing.T, label box.Label, id string, x, yaw, confidence float64) *box.Box3D {
	t.Helper()
	b, err := box.NewBox3D(
		box.Attributes{Label: label, Confidence: confidence, UUID: id, FrameID: box.FrameBaseLink},
		r3.Vector{X: x},
		box.QuatFromYaw(yaw),
		box.Shape{Type: box.ShapeBoundingBox, Size: r3.Vector{X: 4, Y: 2, Z: 1.5}},
	)
	require.NoError(t, err)
	return b
}

func pair(est, gt box.Box) *matching.BoxMatch {
	return &matching.BoxMatch{Estimation: est, GroundTruth: gt}
}

func frame(index int, gts []box.Box, matches ...*matching.BoxMatch) *matching.FrameBoxMatch {
	return &matching.FrameBoxMatch{
		UnixTime:     int64(index) * 100_000,
		FrameIndex:   index,
		Matches:      matches,
		GroundTruths: gts,
	}
}

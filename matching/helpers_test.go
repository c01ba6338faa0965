package matching

import (
	"testing"

	"github.com/LdDl/perception-eval/box"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func newBox3D(t *testing.T, label box.Label, position r3.Vector, yaw float64) *box.Box3D {
	t.Helper()
	b, err := box.NewBox3D(
		box.Attributes{Label: label, Confidence: 0.9, UUID: uuid.NewString(), FrameID: box.FrameBaseLink},
		position,
		box.QuatFromYaw(yaw),
		box.Shape{Type: box.ShapeBoundingBox, Size: r3.Vector{X: 4, Y: 2, Z: 1.5}},
	)
	require.NoError(t, err)
	return b
}

func newBox2D(t *testing.T, label box.Label, roi box.Rectangle) *box.Box2D {
	t.Helper()
	b, err := box.NewBox2D(box.Attributes{Label: label, Confidence: 0.9, FrameID: "camera"}, roi)
	require.NoError(t, err)
	return b
}

func boxes(items ...box.Box) []box.Box {
	return items
}

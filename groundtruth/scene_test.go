package groundtruth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneAt(times ...int64) *SceneGroundTruth {
	frames := make([]*FrameGroundTruth, len(times))
	for i, ts := range times {
		frames[i] = &FrameGroundTruth{UnixTime: ts, FrameIndex: i}
	}
	return NewSceneGroundTruth(frames, nil)
}

func TestLookupFrame(t *testing.T) {
	t.Parallel()
	scene := sceneAt(100_000, 200_000, 300_000)

	t.Run("exact hit", func(t *testing.T) {
		frame := scene.LookupFrame(200_000, DefaultFrameTolerance)
		require.NotNil(t, frame)
		assert.Equal(t, 1, frame.FrameIndex)
	})

	t.Run("nearest within tolerance", func(t *testing.T) {
		frame := scene.LookupFrame(296_000, DefaultFrameTolerance)
		require.NotNil(t, frame)
		assert.Equal(t, 2, frame.FrameIndex)
	})

	t.Run("tolerance is inclusive", func(t *testing.T) {
		frame := scene.LookupFrame(100_000+DefaultFrameTolerance, DefaultFrameTolerance)
		require.NotNil(t, frame)
		assert.Equal(t, 0, frame.FrameIndex)
	})

	t.Run("nothing within tolerance", func(t *testing.T) {
		assert.Nil(t, scene.LookupFrame(150_000, DefaultFrameTolerance))
		assert.Nil(t, scene.LookupFrame(1_000_000, DefaultFrameTolerance))
	})

	t.Run("ties go to the first frame in order", func(t *testing.T) {
		frame := scene.LookupFrame(150_000, 60_000)
		require.NotNil(t, frame)
		assert.Equal(t, 0, frame.FrameIndex)

		unordered := sceneAt(300_000, 100_000)
		frame = unordered.LookupFrame(200_000, 100_000)
		require.NotNil(t, frame)
		assert.Equal(t, 0, frame.FrameIndex)
	})

	t.Run("empty scene", func(t *testing.T) {
		assert.Nil(t, sceneAt().LookupFrame(0, DefaultFrameTolerance))
		assert.NotNil(t, sceneAt().Ego2Sensors)
	})
}

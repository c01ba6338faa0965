package evaluation

import (
	"math"

	"github.com/LdDl/perception-eval/box"
)

// apply keeps the boxes passing every enabled filter. Confidence only filters estimations.
// Distance is measured in the ego frame and only for 3D boxes.
func (p FilterParams) apply(boxes []box.Box, ego2map *box.Transform, isEstimation bool) ([]box.Box, error) {
	out := make([]box.Box, 0, len(boxes))
	for _, b := range boxes {
		attrs := b.Attrs()
		if len(p.TargetLabels) > 0 && !attrs.Label.In(p.TargetLabels) {
			continue
		}
		if isEstimation && attrs.Confidence < p.MinConfidence {
			continue
		}
		if p.MaxDistance > 0 {
			if b3, ok := b.(*box.Box3D); ok {
				inEgo, err := b3.InFrame(ego2map)
				if err != nil {
					return nil, err
				}
				if math.Hypot(inEgo.Position.X, inEgo.Position.Y) > p.MaxDistance {
					continue
				}
			}
		}
		out = append(out, b)
	}
	return out, nil
}

package metrics

import (
	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/matching"
	"github.com/pkg/errors"
)

// SummaryConfig selects the label/threshold grid for Summarize.
type SummaryConfig struct {
	Scorer     matching.Scorer
	Labels     []box.Label
	Thresholds []float64
	// WithHeading adds APH, which needs 3D boxes
	WithHeading bool
	// WithTracking adds MOTA and MOTP
	WithTracking bool
}

// LabelScore is one cell of the summary grid.
type LabelScore struct {
	Label     box.Label
	Threshold float64
	AP        float64
	APH       float64
	MOTA      float64
	MOTP      float64
}

// Summarize computes every requested metric for each label and threshold, reusing one match
// history for the whole sweep.
func Summarize(frames []*matching.FrameBoxMatch, cfg SummaryConfig) ([]LabelScore, error) {
	if cfg.Scorer == nil {
		return nil, errors.New("summary needs a scorer")
	}
	out := make([]LabelScore, 0, len(cfg.Labels)*len(cfg.Thresholds))
	for _, label := range cfg.Labels {
		for _, threshold := range cfg.Thresholds {
			score := LabelScore{Label: label, Threshold: threshold}
			var err error
			score.AP, err = NewAp(cfg.Scorer, threshold, label).Compute(frames)
			if err != nil {
				return nil, errors.Wrapf(err, "AP for %s@%v", label, threshold)
			}
			if cfg.WithHeading {
				score.APH, err = NewApH(cfg.Scorer, threshold, label).Compute(frames)
				if err != nil {
					return nil, errors.Wrapf(err, "APH for %s@%v", label, threshold)
				}
			}
			if cfg.WithTracking {
				score.MOTA, err = NewMota(cfg.Scorer, threshold, label).Compute(frames)
				if err != nil {
					return nil, errors.Wrapf(err, "MOTA for %s@%v", label, threshold)
				}
				score.MOTP, err = NewMotp(cfg.Scorer, threshold, label).Compute(frames)
				if err != nil {
					return nil, errors.Wrapf(err, "MOTP for %s@%v", label, threshold)
				}
			}
			out = append(out, score)
		}
	}
	return out, nil
}

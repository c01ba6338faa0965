package metrics

import (
	"math"

	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/matching"
	"github.com/pkg/errors"
)

// Mota is multi-object tracking accuracy: (TP - FP - ID switches) / GT, floored at 0.
type Mota struct {
	Scorer    matching.Scorer
	Threshold float64
	Labels    []box.Label
}

// NewMota creates a MOTA metric
func NewMota(scorer matching.Scorer, threshold float64, labels ...box.Label) *Mota {
	return &Mota{Scorer: scorer, Threshold: threshold, Labels: labels}
}

// Compute returns MOTA over consecutive frame pairs; 0 for fewer than two frames.
func (m *Mota) Compute(frames []*matching.FrameBoxMatch) (float64, error) {
	buf, err := accumulateClear(frames, m.Scorer, m.Threshold, m.Labels)
	if err != nil {
		return 0, err
	}
	if buf.numGT == 0 {
		return 0.0, nil
	}
	return math.Max((buf.numTP-buf.numFP-float64(buf.numIDSwitch))/float64(buf.numGT), 0), nil
}

// Motp is multi-object tracking precision: mean scorer value over true positives.
type Motp struct {
	Scorer    matching.Scorer
	Threshold float64
	Labels    []box.Label
}

// NewMotp creates a MOTP metric
func NewMotp(scorer matching.Scorer, threshold float64, labels ...box.Label) *Motp {
	return &Motp{Scorer: scorer, Threshold: threshold, Labels: labels}
}

// Compute returns MOTP over consecutive frame pairs; 0 when nothing was a true positive.
func (m *Motp) Compute(frames []*matching.FrameBoxMatch) (float64, error) {
	buf, err := accumulateClear(frames, m.Scorer, m.Threshold, m.Labels)
	if err != nil {
		return 0, err
	}
	if buf.numTP == 0 {
		return 0.0, nil
	}
	return math.Max(buf.score/buf.numTP, 0), nil
}

// clearBuffer holds CLEAR MOT running totals for one metric call
type clearBuffer struct {
	numGT       int
	numTP       float64
	numFP       float64
	numIDSwitch int
	score       float64
}

// accumulateClear walks frame pairs (i-1, i). A current match continuing a previous true
// positive is credited as TP directly; otherwise it is classified and checked for ID switches.
func accumulateClear(
	frames []*matching.FrameBoxMatch,
	scorer matching.Scorer,
	threshold float64,
	labels []box.Label,
) (*clearBuffer, error) {
	buf := &clearBuffer{}
	for i := 1; i < len(frames); i++ {
		prev, cur := frames[i-1], frames[i]
		prevTPs, err := truePositives(prev, scorer, threshold, labels)
		if err != nil {
			return nil, err
		}
		buf.numGT += cur.NumGT(labels...)

		for _, m := range cur.Matches {
			if m.Estimation == nil || !selected(m.Estimation, labels) {
				continue
			}
			continued, switched := false, false
			for _, p := range prevTPs {
				if isSameMatch(m, p) {
					continued = true
					break
				}
				if isIDSwitched(m, p) {
					switched = true
				}
			}
			if continued {
				score, err := m.Score(scorer, cur.Ego2Map)
				if err != nil {
					return nil, errors.Wrapf(err, "frame %d", cur.FrameIndex)
				}
				buf.numTP++
				buf.score += score
				continue
			}
			tp, err := m.IsTP(scorer, threshold, cur.Ego2Map)
			if err != nil {
				return nil, errors.Wrapf(err, "frame %d", cur.FrameIndex)
			}
			if !tp {
				buf.numFP++
				continue
			}
			score, err := m.Score(scorer, cur.Ego2Map)
			if err != nil {
				return nil, errors.Wrapf(err, "frame %d", cur.FrameIndex)
			}
			buf.numTP++
			buf.score += score
			if switched {
				buf.numIDSwitch++
			}
		}
	}
	return buf, nil
}

func truePositives(
	frame *matching.FrameBoxMatch,
	scorer matching.Scorer,
	threshold float64,
	labels []box.Label,
) ([]*matching.BoxMatch, error) {
	out := make([]*matching.BoxMatch, 0, len(frame.Matches))
	for _, m := range frame.Matches {
		if m.Estimation == nil || !selected(m.Estimation, labels) {
			continue
		}
		tp, err := m.IsTP(scorer, threshold, frame.Ego2Map)
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", frame.FrameIndex)
		}
		if tp {
			out = append(out, m)
		}
	}
	return out, nil
}

// sameEstimation compares identity and label; objects without identity never compare equal
func sameEstimation(a, b box.Box) bool {
	aa, ba := a.Attrs(), b.Attrs()
	return aa.UUID != "" && aa.UUID == ba.UUID && aa.Label == ba.Label
}

func sameGroundTruth(a, b box.Box) bool {
	aa, ba := a.Attrs(), b.Attrs()
	return aa.UUID != "" && aa.UUID == ba.UUID
}

// isSameMatch: the same tracked object still points at the same real object
func isSameMatch(cur, prev *matching.BoxMatch) bool {
	if !cur.IsPaired() || !prev.IsPaired() {
		return false
	}
	return sameEstimation(cur.Estimation, prev.Estimation) && sameGroundTruth(cur.GroundTruth, prev.GroundTruth)
}

// isIDSwitched: exactly one side of the pair changed identity. Identity can't change for an
// object that never had one, so any empty UUID rules a switch out.
func isIDSwitched(cur, prev *matching.BoxMatch) bool {
	if !cur.IsPaired() || !prev.IsPaired() {
		return false
	}
	if !hasIdentity(cur.Estimation, prev.Estimation, cur.GroundTruth, prev.GroundTruth) {
		return false
	}
	return sameEstimation(cur.Estimation, prev.Estimation) != sameGroundTruth(cur.GroundTruth, prev.GroundTruth)
}

func hasIdentity(boxes ...box.Box) bool {
	for _, b := range boxes {
		if b.Attrs().UUID == "" {
			return false
		}
	}
	return true
}

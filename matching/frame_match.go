package matching

import (
	"github.com/LdDl/perception-eval/box"
)

// FrameBoxMatch is the match record of one evaluated frame. It is never mutated after creation.
type FrameBoxMatch struct {
	UnixTime   int64
	FrameIndex int
	// Matches holds one entry per estimation, in assignment order
	Matches []*BoxMatch
	Ego2Map *box.Transform
	// GroundTruths are the annotations the frame was matched against, matched or not
	GroundTruths []box.Box
}

// NumEstimation returns how many estimations the frame had
func (f *FrameBoxMatch) NumEstimation() int {
	n := 0
	for _, m := range f.Matches {
		if m.Estimation != nil {
			n++
		}
	}
	return n
}

// NumGT counts ground truths, restricted to labels when any are given.
func (f *FrameBoxMatch) NumGT(labels ...box.Label) int {
	if len(labels) == 0 {
		return len(f.GroundTruths)
	}
	n := 0
	for _, gt := range f.GroundTruths {
		if gt.Attrs().Label.In(labels) {
			n++
		}
	}
	return n
}

// NumTP counts true positives under scorer and threshold
func (f *FrameBoxMatch) NumTP(scorer Scorer, threshold float64) (int, error) {
	n := 0
	for _, m := range f.Matches {
		tp, err := m.IsTP(scorer, threshold, f.Ego2Map)
		if err != nil {
			return 0, err
		}
		if tp {
			n++
		}
	}
	return n, nil
}

// NumFP counts estimations that are not true positives
func (f *FrameBoxMatch) NumFP(scorer Scorer, threshold float64) (int, error) {
	n := 0
	for _, m := range f.Matches {
		fp, err := m.IsFP(scorer, threshold, f.Ego2Map)
		if err != nil {
			return 0, err
		}
		if fp {
			n++
		}
	}
	return n, nil
}

// NumFN counts ground truths left without a true positive. Unmatched ground truths have
// no record of their own, so this is NumGT minus NumTP.
func (f *FrameBoxMatch) NumFN(scorer Scorer, threshold float64) (int, error) {
	tp, err := f.NumTP(scorer, threshold)
	if err != nil {
		return 0, err
	}
	return f.NumGT() - tp, nil
}

// NumTN is always 0: box detection has no negative class.
func (f *FrameBoxMatch) NumTN(_ Scorer, _ float64) (int, error) {
	return 0, nil
}

// Package segmentation compares per-camera class masks pixel by pixel.
package segmentation

import (
	"sort"

	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrMaskShape is returned when an estimated mask and its ground truth differ in size.
var ErrMaskShape = errors.New("mask dimensions differ")

// Confusion is a pixel confusion count. A pixel value is a class id; 0 is background.
type Confusion struct {
	TP int
	FP int
	FN int
	TN int
}

// Add sums two counts
func (c Confusion) Add(other Confusion) Confusion {
	return Confusion{
		TP: c.TP + other.TP,
		FP: c.FP + other.FP,
		FN: c.FN + other.FN,
		TN: c.TN + other.TN,
	}
}

// FrameSegmentation is the record of one evaluated segmentation frame.
type FrameSegmentation struct {
	UnixTime   int64
	FrameIndex int
	Channels   map[groundtruth.CameraChannel]Confusion
}

// NewFrameSegmentation compares estimated masks against ground truth, channel by channel.
// A channel missing from estimations counts every labelled pixel as FN; a channel missing from
// ground truth counts every labelled estimated pixel as FP.
func NewFrameSegmentation(
	unixTime int64,
	frameIndex int,
	groundTruths, estimations map[groundtruth.CameraChannel]*mat.Dense,
) (*FrameSegmentation, error) {
	frame := &FrameSegmentation{
		UnixTime:   unixTime,
		FrameIndex: frameIndex,
		Channels:   make(map[groundtruth.CameraChannel]Confusion, len(groundTruths)),
	}
	for channel, gt := range groundTruths {
		if gt == nil {
			gt = &mat.Dense{}
		}
		est := estimations[channel]
		if est == nil {
			est = zerosLike(gt)
		}
		confusion, err := compareMasks(gt, est)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %s", channel)
		}
		frame.Channels[channel] = confusion
	}
	for channel, est := range estimations {
		if _, ok := groundTruths[channel]; ok || est == nil {
			continue
		}
		confusion, err := compareMasks(zerosLike(est), est)
		if err != nil {
			return nil, errors.Wrapf(err, "channel %s", channel)
		}
		frame.Channels[channel] = confusion
	}
	return frame, nil
}

// Total sums the confusion over every channel
func (f *FrameSegmentation) Total() Confusion {
	total := Confusion{}
	for _, c := range f.Channels {
		total = total.Add(c)
	}
	return total
}

// ChannelNames returns channels in sorted order
func (f *FrameSegmentation) ChannelNames() []groundtruth.CameraChannel {
	names := make([]groundtruth.CameraChannel, 0, len(f.Channels))
	for name := range f.Channels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// zerosLike returns an all-background mask of the same size. Empty masks stay empty.
func zerosLike(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(rows, cols, nil)
}

func compareMasks(gt, est *mat.Dense) (Confusion, error) {
	gr, gc := gt.Dims()
	er, ec := est.Dims()
	if gr != er || gc != ec {
		return Confusion{}, errors.Wrapf(ErrMaskShape, "ground truth %dx%d, estimation %dx%d", gr, gc, er, ec)
	}
	c := Confusion{}
	for i := 0; i < gr; i++ {
		for j := 0; j < gc; j++ {
			g, e := gt.At(i, j), est.At(i, j)
			switch {
			case g == 0 && e == 0:
				c.TN++
			case g == e:
				c.TP++
			default:
				if e != 0 {
					c.FP++
				}
				if g != 0 {
					c.FN++
				}
			}
		}
	}
	return c, nil
}

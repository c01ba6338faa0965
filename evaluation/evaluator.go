// Package evaluation aligns estimations with a scene's ground truth frame by frame and keeps
// the resulting match history for the metrics package.
package evaluation

import (
	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/LdDl/perception-eval/matching"
	"github.com/LdDl/perception-eval/metrics"
	"github.com/LdDl/perception-eval/segmentation"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrEstimationType is returned when the estimation container does not fit the configured task.
	ErrEstimationType = errors.New("estimations do not match the evaluation task")
	// ErrNilScene is returned when an evaluator is created without ground truth.
	ErrNilScene = errors.New("scene ground truth is nil")
)

// Estimations is the per-frame model output handed to AddFrame.
// It is either DetectionEstimations or SegmentationEstimations.
type Estimations interface {
	estimations()
}

// DetectionEstimations are detected or tracked boxes
type DetectionEstimations []box.Box

func (DetectionEstimations) estimations() {}

// SegmentationEstimations are class masks per camera
type SegmentationEstimations map[groundtruth.CameraChannel]*mat.Dense

func (SegmentationEstimations) estimations() {}

// FrameResult is what AddFrame records: *matching.FrameBoxMatch or *segmentation.FrameSegmentation.
type FrameResult interface{}

// Option customises an Evaluator
type Option func(*Evaluator)

// WithLogger replaces the default logger
func WithLogger(logger *logrus.Entry) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithID sets the evaluation identifier instead of a random one
func WithID(id uuid.UUID) Option {
	return func(e *Evaluator) {
		e.id = id
	}
}

// Evaluator matches estimations against one scene. It is not safe for concurrent use:
// callers own the sequencing of AddFrame calls.
type Evaluator struct {
	id        uuid.UUID
	config    PerceptionEvaluationConfig
	scene     *groundtruth.SceneGroundTruth
	algorithm matching.MatchingAlgorithm
	logger    *logrus.Entry

	boxFrames          []*matching.FrameBoxMatch
	segmentationFrames []*segmentation.FrameSegmentation
}

// NewEvaluator validates the config and resolves the matching algorithm before any frame is seen.
func NewEvaluator(config PerceptionEvaluationConfig, scene *groundtruth.SceneGroundTruth, opts ...Option) (*Evaluator, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	algorithm, err := config.Matching.Build()
	if err != nil {
		return nil, errors.Wrap(err, "can't build matching algorithm")
	}
	e := &Evaluator{
		id:        uuid.New(),
		config:    config,
		scene:     scene,
		algorithm: algorithm,
		logger:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithFields(logrus.Fields{
		"evaluation_id": e.id.String(),
		"dataset":       config.Dataset,
		"task":          config.Task.String(),
	})
	e.logger.WithFields(logrus.Fields{
		"scorer":             config.Matching.Scorer.String(),
		"policy":             config.Matching.Policy.String(),
		"algorithm":          config.Matching.Algorithm.String(),
		"matchable_distance": config.Matching.MatchableDistance,
		"frames":             len(scene.Frames),
	}).Info("evaluator ready")
	return e, nil
}

// ID returns the evaluation identifier
func (e *Evaluator) ID() uuid.UUID {
	return e.id
}

// Config returns the evaluator's configuration
func (e *Evaluator) Config() PerceptionEvaluationConfig {
	return e.config
}

// Algorithm returns the resolved matching algorithm
func (e *Evaluator) Algorithm() matching.MatchingAlgorithm {
	return e.algorithm
}

// AddFrame evaluates estimations taken at unixTime. It returns (nil, nil) and records nothing
// when no ground-truth frame lies within the configured tolerance.
func (e *Evaluator) AddFrame(unixTime int64, estimations Estimations) (FrameResult, error) {
	frame := e.scene.LookupFrame(unixTime, e.config.FrameTolerance)
	if frame == nil {
		e.logger.WithField("unix_time", unixTime).Debug("no ground truth within tolerance, skipping frame")
		return nil, nil
	}

	switch est := estimations.(type) {
	case DetectionEstimations:
		if !e.config.Task.usesBoxes() {
			return nil, errors.Wrapf(ErrEstimationType, "got boxes for %s", e.config.Task)
		}
		result, err := e.addBoxFrame(unixTime, frame, est)
		if err != nil {
			return nil, err
		}
		return result, nil
	case SegmentationEstimations:
		if e.config.Task != TaskSegmentation {
			return nil, errors.Wrapf(ErrEstimationType, "got masks for %s", e.config.Task)
		}
		result, err := e.addSegmentationFrame(frame, est)
		if err != nil {
			return nil, err
		}
		return result, nil
	default:
		return nil, errors.Wrapf(ErrEstimationType, "got %T for %s", estimations, e.config.Task)
	}
}

func (e *Evaluator) addBoxFrame(unixTime int64, frame *groundtruth.FrameGroundTruth, estimations DetectionEstimations) (*matching.FrameBoxMatch, error) {
	filteredEstimations, err := e.config.Filtering.apply(estimations, frame.Ego2Map, true)
	if err != nil {
		return nil, errors.Wrapf(err, "can't filter estimations at %d", unixTime)
	}
	filteredGroundTruths, err := e.config.Filtering.apply(frame.Boxes, frame.Ego2Map, false)
	if err != nil {
		return nil, errors.Wrapf(err, "can't filter ground truths of frame %d", frame.FrameIndex)
	}
	matches, err := e.algorithm.Match(filteredEstimations, filteredGroundTruths, frame.Ego2Map)
	if err != nil {
		return nil, errors.Wrapf(err, "can't match frame %d", frame.FrameIndex)
	}
	result := &matching.FrameBoxMatch{
		UnixTime:     frame.UnixTime,
		FrameIndex:   frame.FrameIndex,
		Matches:      matches,
		Ego2Map:      frame.Ego2Map,
		GroundTruths: filteredGroundTruths,
	}
	e.boxFrames = append(e.boxFrames, result)
	e.logger.WithFields(logrus.Fields{
		"unix_time":   unixTime,
		"frame_index": frame.FrameIndex,
		"estimations": len(filteredEstimations),
		"gts":         len(filteredGroundTruths),
	}).Trace("frame matched")
	return result, nil
}

func (e *Evaluator) addSegmentationFrame(frame *groundtruth.FrameGroundTruth, estimations SegmentationEstimations) (*segmentation.FrameSegmentation, error) {
	result, err := segmentation.NewFrameSegmentation(frame.UnixTime, frame.FrameIndex, frame.Masks, estimations)
	if err != nil {
		return nil, errors.Wrapf(err, "can't compare masks of frame %d", frame.FrameIndex)
	}
	e.segmentationFrames = append(e.segmentationFrames, result)
	e.logger.WithFields(logrus.Fields{
		"frame_index": frame.FrameIndex,
		"channels":    len(result.Channels),
	}).Trace("frame segmented")
	return result, nil
}

// FrameBoxMatches returns the box match history in insertion order
func (e *Evaluator) FrameBoxMatches() []*matching.FrameBoxMatch {
	out := make([]*matching.FrameBoxMatch, len(e.boxFrames))
	copy(out, e.boxFrames)
	return out
}

// FrameSegmentations returns the segmentation history in insertion order
func (e *Evaluator) FrameSegmentations() []*segmentation.FrameSegmentation {
	out := make([]*segmentation.FrameSegmentation, len(e.segmentationFrames))
	copy(out, e.segmentationFrames)
	return out
}

// Summarize computes per-label, per-threshold metrics over the box history with the
// evaluator's own scorer. Tracking metrics are included for the tracking task.
func (e *Evaluator) Summarize(labels []box.Label, thresholds []float64, withHeading bool) ([]metrics.LabelScore, error) {
	if !e.config.Task.usesBoxes() {
		return nil, errors.Wrapf(ErrEstimationType, "no box history for %s", e.config.Task)
	}
	scores, err := metrics.Summarize(e.boxFrames, metrics.SummaryConfig{
		Scorer:       e.algorithm.Scorer(),
		Labels:       labels,
		Thresholds:   thresholds,
		WithHeading:  withHeading,
		WithTracking: e.config.Task == TaskTracking,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't summarize evaluation")
	}
	e.logger.WithFields(logrus.Fields{
		"frames": len(e.boxFrames),
		"cells":  len(scores),
	}).Info("evaluation summarized")
	return scores, nil
}

package evaluation

import (
	"reflect"
	"strings"

	"github.com/LdDl/perception-eval/box"
	"github.com/LdDl/perception-eval/groundtruth"
	"github.com/LdDl/perception-eval/matching"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownTask is returned when a task name can't be resolved
	ErrUnknownTask = errors.New("unknown evaluation task")
	// ErrInvalidConfig is returned for out-of-range configuration values
	ErrInvalidConfig = errors.New("invalid evaluation config")
)

// Task is what kind of estimations the evaluator consumes
type Task uint16

const (
	// TaskDetection compares box lists frame by frame
	TaskDetection Task = iota
	// TaskTracking compares box lists whose identities persist across frames
	TaskTracking
	// TaskSegmentation compares per-camera class masks
	TaskSegmentation
)

var taskNames = map[Task]string{
	TaskDetection:    "DETECTION",
	TaskTracking:     "TRACKING",
	TaskSegmentation: "SEGMENTATION",
}

func (t Task) String() string {
	if name, ok := taskNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseTask resolves a task name, case-insensitive
func ParseTask(name string) (Task, error) {
	for task, known := range taskNames {
		if strings.EqualFold(known, name) {
			return task, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownTask, "%q", name)
}

// usesBoxes reports whether the task works on box lists
func (t Task) usesBoxes() bool {
	return t == TaskDetection || t == TaskTracking
}

// FilterParams narrows which objects take part in matching. Zero values disable a filter.
type FilterParams struct {
	TargetLabels []box.Label `mapstructure:"target_labels"`
	// MaxDistance is the largest planar distance from the ego vehicle, in meters
	MaxDistance float64 `mapstructure:"max_distance"`
	// MinConfidence drops low-confidence estimations; ground truths are never dropped by it
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// PerceptionEvaluationConfig is everything an evaluator needs besides the ground truth itself.
type PerceptionEvaluationConfig struct {
	// Dataset names the scene source, used for logging
	Dataset   string                  `mapstructure:"dataset"`
	Task      Task                    `mapstructure:"task"`
	Filtering FilterParams            `mapstructure:"filtering"`
	Matching  matching.MatchingParams `mapstructure:"matching"`
	// FrameTolerance is the maximum gap between an estimation and its ground-truth frame
	FrameTolerance int64 `mapstructure:"frame_tolerance"`
}

// DefaultConfig returns a detection config with default matching and tolerance
func DefaultConfig() PerceptionEvaluationConfig {
	return PerceptionEvaluationConfig{
		Task:           TaskDetection,
		Matching:       matching.DefaultMatchingParams(),
		FrameTolerance: groundtruth.DefaultFrameTolerance,
	}
}

// NewPerceptionEvaluationConfig decodes a raw (JSON/YAML-shaped) map over DefaultConfig.
// Unknown keys and unknown scorer/policy/algorithm/task names are errors.
func NewPerceptionEvaluationConfig(raw map[string]any) (*PerceptionEvaluationConfig, error) {
	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       enumDecodeHook,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't create config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "can't decode evaluation config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and that the matching params resolve.
func (cfg PerceptionEvaluationConfig) Validate() error {
	if cfg.FrameTolerance < 0 {
		return errors.Wrapf(ErrInvalidConfig, "frame tolerance %d is negative", cfg.FrameTolerance)
	}
	if cfg.Filtering.MaxDistance < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max distance %v is negative", cfg.Filtering.MaxDistance)
	}
	if cfg.Filtering.MinConfidence < 0 || cfg.Filtering.MinConfidence > 1 {
		return errors.Wrapf(ErrInvalidConfig, "min confidence %v outside [0, 1]", cfg.Filtering.MinConfidence)
	}
	if _, ok := taskNames[cfg.Task]; !ok {
		return errors.Wrapf(ErrUnknownTask, "kind %d", cfg.Task)
	}
	if _, err := cfg.Matching.Build(); err != nil {
		return errors.Wrap(err, "invalid matching params")
	}
	return nil
}

var (
	scorerKindType    = reflect.TypeOf(matching.ScorerKind(0))
	policyKindType    = reflect.TypeOf(matching.PolicyKind(0))
	algorithmKindType = reflect.TypeOf(matching.AlgorithmKind(0))
	taskType          = reflect.TypeOf(Task(0))
)

// enumDecodeHook turns names like "IOU3D" or "allow_unknown" into their enum values.
func enumDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	name := reflect.ValueOf(data).String()
	switch to {
	case scorerKindType:
		return matching.ParseScorerKind(name)
	case policyKindType:
		return matching.ParsePolicyKind(name)
	case algorithmKindType:
		return matching.ParseAlgorithmKind(name)
	case taskType:
		return ParseTask(name)
	}
	return data, nil
}

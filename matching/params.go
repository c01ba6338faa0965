package matching

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownScorer is returned when a scorer name can't be resolved
	ErrUnknownScorer = errors.New("unknown scorer")
	// ErrUnknownPolicy is returned when a policy name can't be resolved
	ErrUnknownPolicy = errors.New("unknown matching policy")
	// ErrUnknownAlgorithm is returned when an algorithm name can't be resolved
	ErrUnknownAlgorithm = errors.New("unknown matching algorithm")
)

// ScorerKind is for pairwise similarity/distance function type
type ScorerKind uint16

const (
	// ScorerCenterDistance is Euclidean distance between centers
	ScorerCenterDistance ScorerKind = iota
	// ScorerPlaneDistance is distance between the nearest footprint edges
	ScorerPlaneDistance
	// ScorerIoU2D is bird's-eye (or image) area IoU
	ScorerIoU2D
	// ScorerIoU3D is volume IoU
	ScorerIoU3D
	// ScorerHeadingYaw is absolute heading difference
	ScorerHeadingYaw
)

var scorerNames = map[ScorerKind]string{
	ScorerCenterDistance: "CENTER_DISTANCE",
	ScorerPlaneDistance:  "PLANE_DISTANCE",
	ScorerIoU2D:          "IOU2D",
	ScorerIoU3D:          "IOU3D",
	ScorerHeadingYaw:     "HEADING_YAW",
}

func (k ScorerKind) String() string {
	if name, ok := scorerNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseScorerKind resolves a scorer name, case-insensitive
func ParseScorerKind(name string) (ScorerKind, error) {
	for kind, known := range scorerNames {
		if strings.EqualFold(known, name) {
			return kind, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownScorer, "%q", name)
}

// PolicyKind is for pairwise eligibility predicate type
type PolicyKind uint16

const (
	// PolicyStrict requires identical labels
	PolicyStrict PolicyKind = iota
	// PolicyAllowUnknown also accepts pairs where either side is unknown
	PolicyAllowUnknown
	// PolicyAllowAny accepts every pair
	PolicyAllowAny
)

var policyNames = map[PolicyKind]string{
	PolicyStrict:       "STRICT",
	PolicyAllowUnknown: "ALLOW_UNKNOWN",
	PolicyAllowAny:     "ALLOW_ANY",
}

func (k PolicyKind) String() string {
	if name, ok := policyNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParsePolicyKind resolves a policy name, case-insensitive
func ParsePolicyKind(name string) (PolicyKind, error) {
	for kind, known := range policyNames {
		if strings.EqualFold(known, name) {
			return kind, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownPolicy, "%q", name)
}

// AlgorithmKind is for algorithm type for assigning estimations to ground truths
type AlgorithmKind uint16

const (
	// AlgorithmGreedy repeatedly takes the best remaining pair
	AlgorithmGreedy AlgorithmKind = iota
	// AlgorithmHungarian solves the assignment optimally (Kuhn-Munkres)
	AlgorithmHungarian
)

var algorithmNames = map[AlgorithmKind]string{
	AlgorithmGreedy:    "GREEDY",
	AlgorithmHungarian: "HUNGARIAN",
}

func (k AlgorithmKind) String() string {
	if name, ok := algorithmNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseAlgorithmKind resolves an algorithm name, case-insensitive
func ParseAlgorithmKind(name string) (AlgorithmKind, error) {
	for kind, known := range algorithmNames {
		if strings.EqualFold(known, name) {
			return kind, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownAlgorithm, "%q", name)
}

// MatchingParams configures how estimations are assigned to ground truths.
type MatchingParams struct {
	Scorer    ScorerKind    `mapstructure:"scorer"`
	Policy    PolicyKind    `mapstructure:"policy"`
	Algorithm AlgorithmKind `mapstructure:"algorithm"`
	// MatchableDistance is the eligibility threshold for a pair. +Inf means "no threshold"
	// for either scorer direction.
	MatchableDistance float64 `mapstructure:"matchable_distance"`
}

// DefaultMatchingParams returns center distance, strict labels, greedy, no threshold.
func DefaultMatchingParams() MatchingParams {
	return MatchingParams{
		Scorer:            ScorerCenterDistance,
		Policy:            PolicyStrict,
		Algorithm:         AlgorithmGreedy,
		MatchableDistance: math.Inf(1),
	}
}

// Build resolves the params into a ready matching algorithm.
func (p MatchingParams) Build() (MatchingAlgorithm, error) {
	scorer, err := NewScorer(p.Scorer)
	if err != nil {
		return nil, err
	}
	policy, err := NewPolicy(p.Policy)
	if err != nil {
		return nil, err
	}
	threshold := p.MatchableDistance
	if math.IsNaN(threshold) {
		return nil, errors.New("matchable distance must be a number")
	}
	// An unbounded threshold must admit everything whichever way the scorer ranks.
	if math.IsInf(threshold, 1) && !scorer.SmallerIsBetter() {
		threshold = math.Inf(-1)
	}
	return NewAlgorithm(p.Algorithm, scorer, policy, threshold)
}

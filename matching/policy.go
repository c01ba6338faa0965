package matching

import (
	"github.com/LdDl/perception-eval/box"
	"github.com/pkg/errors"
)

// Policy decides whether a pair may ever be matched, regardless of geometry.
type Policy interface {
	Kind() PolicyKind
	IsMatchable(a, b box.Box) bool
}

// NewPolicy creates the policy for a kind
func NewPolicy(kind PolicyKind) (Policy, error) {
	switch kind {
	case PolicyStrict:
		return StrictPolicy{}, nil
	case PolicyAllowUnknown:
		return AllowUnknownPolicy{}, nil
	case PolicyAllowAny:
		return AllowAnyPolicy{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownPolicy, "kind %d", kind)
	}
}

// StrictPolicy matches only identical labels.
type StrictPolicy struct{}

// Kind implements Policy
func (StrictPolicy) Kind() PolicyKind { return PolicyStrict }

// IsMatchable implements Policy
func (StrictPolicy) IsMatchable(a, b box.Box) bool {
	return a.Attrs().Label == b.Attrs().Label
}

// AllowUnknownPolicy matches identical labels or pairs where either label is unknown.
type AllowUnknownPolicy struct{}

// Kind implements Policy
func (AllowUnknownPolicy) Kind() PolicyKind { return PolicyAllowUnknown }

// IsMatchable implements Policy
func (AllowUnknownPolicy) IsMatchable(a, b box.Box) bool {
	la, lb := a.Attrs().Label, b.Attrs().Label
	return la == lb || la == box.LabelUnknown || lb == box.LabelUnknown
}

// AllowAnyPolicy matches every pair.
type AllowAnyPolicy struct{}

// Kind implements Policy
func (AllowAnyPolicy) Kind() PolicyKind { return PolicyAllowAny }

// IsMatchable implements Policy
func (AllowAnyPolicy) IsMatchable(_, _ box.Box) bool {
	return true
}

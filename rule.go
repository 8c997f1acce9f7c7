package gooey

import (
	"fmt"
	"iter"
	"math"
	"math/rand/v2"
)

// Rule yields a duration or delay in seconds. It is evaluated fresh every
// time a value is needed, so pacing can vary from pulse to pulse.
type Rule interface {
	Next() float64
}

// Const is a Rule that always yields the same value.
type Const float64

// Next returns the constant value.
func (c Const) Next() float64 { return float64(c) }

// RuleFunc adapts a zero-argument function to a Rule.
type RuleFunc func() float64

// Next calls f.
func (f RuleFunc) Next() float64 { return f() }

// SeqRule is a resumable generator: each Next pulls one value from the
// sequence. An exhausted sequence yields 0.
type SeqRule struct {
	next func() (float64, bool)
	stop func()
}

// NewSeqRule wraps seq. Call Stop when the rule is no longer needed to
// release the sequence. An animator holding the rule stops it in
// MeshAnimator.Release, which Creature.Destroy calls for the bell. Stop may be
// called more than once.
func NewSeqRule(seq iter.Seq[float64]) *SeqRule {
	next, stop := iter.Pull(seq)
	return &SeqRule{next: next, stop: stop}
}

// Next pulls the next value from the sequence.
func (r *SeqRule) Next() float64 {
	v, ok := r.next()
	if !ok {
		return 0
	}
	return v
}

// Stop releases the underlying sequence.
func (r *SeqRule) Stop() {
	r.stop()
}

// TriangularRule draws from a triangular distribution over [Min, Max] peaking
// at Mode. Used for the randomized pause between bell pulses.
type TriangularRule struct {
	Min, Max, Mode float64
}

// Next draws one value.
func (r TriangularRule) Next() float64 {
	return triangular(rand.Float64(), r.Min, r.Max, r.Mode)
}

// triangular maps a uniform sample u in [0,1) to the triangular distribution.
func triangular(u, lo, hi, mode float64) float64 {
	if hi <= lo {
		return lo
	}
	c := (mode - lo) / (hi - lo)
	if u < c {
		return lo + math.Sqrt(u*(hi-lo)*(mode-lo))
	}
	return hi - math.Sqrt((1-u)*(hi-lo)*(hi-mode))
}

// evalRule evaluates r, treating nil, NaN and negative results as zero.
func evalRule(r Rule) float64 {
	if r == nil {
		return 0
	}
	v := r.Next()
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// RuleSpec is the persisted form of a Rule.
type RuleSpec struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value,omitempty"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
	Mode  float64 `json:"mode,omitempty"`
}

// Rule builds the Rule described by the spec. A nil spec yields a nil Rule.
func (s *RuleSpec) Rule() (Rule, error) {
	if s == nil {
		return nil, nil
	}
	switch s.Kind {
	case "", "const":
		return Const(s.Value), nil
	case "triangular":
		if s.Max < s.Min || s.Mode < s.Min || s.Mode > s.Max {
			return nil, fmt.Errorf("triangular rule [%v, %v] mode %v: %w", s.Min, s.Max, s.Mode, ErrInvalidConfiguration)
		}
		return TriangularRule{Min: s.Min, Max: s.Max, Mode: s.Mode}, nil
	default:
		return nil, fmt.Errorf("rule kind %q: %w", s.Kind, ErrInvalidConfiguration)
	}
}

// specForRule converts a Rule back to its persisted form. Rules that cannot be
// persisted (functions, sequences) return nil.
func specForRule(r Rule) *RuleSpec {
	switch r := r.(type) {
	case Const:
		return &RuleSpec{Kind: "const", Value: float64(r)}
	case TriangularRule:
		return &RuleSpec{Kind: "triangular", Min: r.Min, Max: r.Max, Mode: r.Mode}
	default:
		return nil
	}
}

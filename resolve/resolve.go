// Package resolve picks the controller method that serves a request.
package resolve

import (
	"errors"
	"fmt"

	"github.com/bronystylecrazy/amvisie/controller"
)

var (
	ErrNotFound  = errors.New("resolve: no method matches verb")
	ErrAmbiguous = errors.New("resolve: ambiguous method match")
)

// Names is the set of request value names available for binding.
type Names map[string]struct{}

func NewNames(names ...string) Names {
	n := make(Names, len(names))
	for _, name := range names {
		n[name] = struct{}{}
	}
	return n
}

func (n Names) Add(names ...string) {
	for _, name := range names {
		n[name] = struct{}{}
	}
}

func (n Names) Has(name string) bool {
	_, ok := n[name]
	return ok
}

type Outcome int

const (
	Matched Outcome = iota
	NotFound
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case NotFound:
		return "not found"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the tagged outcome of a resolution. Method is set for Matched
// and Ambiguous; Conflict names the method that tied with it.
type Result struct {
	Outcome  Outcome
	Verb     string
	Method   *controller.Method
	Score    int
	Conflict *controller.Method
}

// Err converts a failed result into an error wrapping ErrNotFound or
// ErrAmbiguous.
func (r Result) Err() error {
	switch r.Outcome {
	case NotFound:
		return fmt.Errorf("%w %s", ErrNotFound, r.Verb)
	case Ambiguous:
		return fmt.Errorf("%w: %s and %s both match verb %s", ErrAmbiguous, r.Conflict.Name, r.Method.Name, r.Verb)
	default:
		return nil
	}
}

// Resolve selects the method for verb. A non-empty explicit name is looked up
// literally as CanonicalVerb(verb)+explicit and bypasses scoring. Otherwise
// candidates prefixed by verb are scored in order; a candidate whose score
// equals the best so far makes the result Ambiguous.
func Resolve(verb, explicit string, candidates []*controller.Method, available Names) Result {
	if explicit != "" {
		want := controller.CanonicalVerb(verb) + explicit
		for _, m := range candidates {
			if m.Name == want {
				return Result{Outcome: Matched, Verb: verb, Method: m, Score: Score(m, available)}
			}
		}
		return Result{Outcome: NotFound, Verb: verb}
	}

	var (
		best      *controller.Method
		bestScore int
	)
	for _, m := range candidates {
		if !m.HasPrefix(verb) {
			continue
		}
		score := Score(m, available)
		switch {
		case best == nil || score > bestScore:
			best, bestScore = m, score
		case score == bestScore:
			return Result{Outcome: Ambiguous, Verb: verb, Method: m, Score: score, Conflict: best}
		}
	}
	if best == nil {
		return Result{Outcome: NotFound, Verb: verb}
	}
	return Result{Outcome: Matched, Verb: verb, Method: best, Score: bestScore}
}

// Score counts the scalar and list parameters of m whose names are
// available. A method without required parameters scores one extra point
// when nothing is available.
func Score(m *controller.Method, available Names) int {
	score := 0
	for _, p := range m.Params {
		switch p.Kind {
		case controller.Scalar, controller.Array:
			if available.Has(p.Name) {
				score++
			}
		}
	}
	if m.RequiredCount() == 0 && len(available) == 0 {
		score++
	}
	return score
}

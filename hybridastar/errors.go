package hybridastar

import "github.com/pkg/errors"

// ErrorKind classifies why a Plan call failed. All kinds are terminal to
// the current call and are never retried internally (spec.md §7).
type ErrorKind int

const (
	// ErrInvalidInput covers a start/end pose outside XYbounds or a config
	// missing required fields.
	ErrInvalidInput ErrorKind = iota
	// ErrStartCollision means the vehicle box at the start pose overlaps
	// an obstacle.
	ErrStartCollision
	// ErrEndCollision means the vehicle box at the end pose overlaps an
	// obstacle.
	ErrEndCollision
	// ErrRSGeneratorFailed means the start-to-goal Reed-Shepp shot could
	// not be constructed; this is fatal to the whole plan.
	ErrRSGeneratorFailed
	// ErrSearchExhausted means the priority queue emptied with no final
	// node reached.
	ErrSearchExhausted
	// ErrInvalidHorizon means the search returned fewer than 3 samples,
	// leaving the partitioner unable to classify the initial gear.
	ErrInvalidHorizon
	// ErrCancelled means the caller's context was cancelled cooperatively
	// between search-loop iterations.
	ErrCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidInput:
		return "invalid_input"
	case ErrStartCollision:
		return "start_collision"
	case ErrEndCollision:
		return "end_collision"
	case ErrRSGeneratorFailed:
		return "rs_generator_failed"
	case ErrSearchExhausted:
		return "search_exhausted"
	case ErrInvalidHorizon:
		return "invalid_horizon"
	case ErrCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// PlanError is the tagged result Plan surfaces to the caller on failure,
// carrying both a machine-checkable Kind and a human-readable cause.
type PlanError struct {
	Kind ErrorKind
	Err  error
}

func (e *PlanError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

// Unwrap allows errors.Is/errors.As to see through to the underlying cause.
func (e *PlanError) Unwrap() error { return e.Err }

func newPlanError(kind ErrorKind, msg string) *PlanError {
	return &PlanError{Kind: kind, Err: errors.New(msg)}
}

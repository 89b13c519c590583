package run

import "fmt"

// Phase names the step of the cycle a fatal failure came from.
type Phase string

const (
	PhaseLease    Phase = "lease"
	PhaseFetch    Phase = "fetch"
	PhaseStore    Phase = "store"
	PhaseSnapshot Phase = "snapshot"
)

// Error is a fatal run failure carrying the target, the phase that broke,
// and the cause. Per-item normalization failures never surface here; they
// are counted in the summary instead.
type Error struct {
	Target string
	Phase  Phase
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("run %s: %s: %v", e.Target, e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

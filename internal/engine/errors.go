package engine

import "fmt"

// IterationLimitError reports a phase fixpoint that did not quiesce
// within the iteration cap: some rule kept firing on fresh states.
type IterationLimitError struct {
	Phase Phase
	Limit int
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("engine: %s fixpoint exceeded %d iterations", e.Phase, e.Limit)
}

// CycleError reports a detected rule cycle: applying a rule produced a
// state already visited within the same phase invocation. Distinct from
// IterationLimitError so genuinely diverging rule sets can be told apart
// from oscillating ones.
type CycleError struct {
	Phase     Phase
	Rule      string
	Iteration int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("engine: %s fixpoint cycled at iteration %d (last rule %q)", e.Phase, e.Iteration, e.Rule)
}

// ExternalCallError wraps a failure of an injected collaborator (NLU,
// NLG, device). The information state is guaranteed unchanged when one
// of these is returned.
type ExternalCallError struct {
	Boundary string
	Err      error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("engine: %s call failed: %v", e.Boundary, e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

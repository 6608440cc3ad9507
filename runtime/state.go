package runtime

// State is the lifecycle position of an Executor.
type State int

const (
	StateCreated State = iota
	StateRuntimeReady
	StateContextReady
	StateModulesPreloaded
	StateExecuting
	StateDraining
	StateCompleted
	StateFailed
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRuntimeReady:
		return "runtime_ready"
	case StateContextReady:
		return "context_ready"
	case StateModulesPreloaded:
		return "modules_preloaded"
	case StateExecuting:
		return "executing"
	case StateDraining:
		return "draining"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	}
	return "unknown"
}

// Terminal reports whether no further lifecycle transitions can happen.
func (s State) Terminal() bool {
	return s == StateReleased
}

package anneal

import "fmt"

// Status is the controller's search state.
type Status int

const (
	Evaluating Status = iota // a candidate is being scored, or none has finished yet
	Applying                 // a configuration was just installed on the live world
	Rejected                 // the last candidate was discarded
	Waiting                  // accepted as current, live world unchanged
	Done                     // frozen on the best configuration
)

func (s Status) String() string {
	switch s {
	case Evaluating:
		return "evaluating"
	case Applying:
		return "applying"
	case Rejected:
		return "rejected"
	case Waiting:
		return "waiting"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

package sim

import "fmt"

// Phase is the signal state of an intersection.
type Phase int

const (
	PhaseNS     Phase = iota // north/south green
	PhaseEW                  // east/west green
	PhaseAllRed              // clearance, nobody moves
)

func (p Phase) String() string {
	switch p {
	case PhaseNS:
		return "NS"
	case PhaseEW:
		return "EW"
	case PhaseAllRed:
		return "ALL_RED"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Permits reports whether a vehicle heading d may enter under this phase.
func (p Phase) Permits(d Direction) bool {
	switch p {
	case PhaseNS:
		return d.Vertical()
	case PhaseEW:
		return !d.Vertical()
	default:
		return false
	}
}

// opposite toggles between the two green phases.
func (p Phase) opposite() Phase {
	if p == PhaseNS {
		return PhaseEW
	}
	return PhaseNS
}

// Intersection is one signalised grid node. Its topology never changes during
// a run; durations change when the controller applies a configuration.
type Intersection struct {
	Row, Col int
	X, Y     float64

	Phase     Phase
	LastGreen Phase   // green phase that preceded the current ALL_RED
	Elapsed   float64 // seconds spent in the current phase

	Durations      PhaseDurations
	AllRedDuration float64

	// Live per-tick counters, rolled into the Prev fields at the end of a tick.
	WaitingVehicles  int
	WaitingTimeTotal float64
	longestWait      float64

	PrevWaitingVehicles  int
	PrevWaitingTimeTotal float64

	Heat       float64 // congestion telemetry in [0, MaxHeat]
	ChangedFor float64 // seconds left on the "just changed" marker
}

// MaxHeat caps the congestion heat scalar.
const MaxHeat = 10.0

// NewIntersection creates a node in the NS phase with elapsed seeded to offset.
func NewIntersection(row, col int, x, y float64, durations PhaseDurations, allRed, offset float64) *Intersection {
	return &Intersection{
		Row:            row,
		Col:            col,
		X:              x,
		Y:              y,
		Phase:          PhaseNS,
		LastGreen:      PhaseEW,
		Elapsed:        offset,
		Durations:      durations,
		AllRedDuration: allRed,
	}
}

// Update advances the phase machine by dt. At most one transition happens per
// call, so ALL_RED is never skipped however large dt is.
func (in *Intersection) Update(dt float64) {
	in.Elapsed += dt
	if in.ChangedFor > 0 {
		in.ChangedFor = max(0, in.ChangedFor-dt)
	}

	switch in.Phase {
	case PhaseNS:
		if in.Elapsed >= in.Durations.NS {
			in.enterAllRed(PhaseNS)
		}
	case PhaseEW:
		if in.Elapsed >= in.Durations.EW {
			in.enterAllRed(PhaseEW)
		}
	case PhaseAllRed:
		if in.Elapsed >= in.AllRedDuration {
			in.Phase = in.LastGreen.opposite()
			in.Elapsed = 0
		}
	}
}

func (in *Intersection) enterAllRed(from Phase) {
	in.Phase = PhaseAllRed
	in.LastGreen = from
	in.Elapsed = 0
}

// PhaseDuration returns the length of the current phase.
func (in *Intersection) PhaseDuration() float64 {
	switch in.Phase {
	case PhaseNS:
		return in.Durations.NS
	case PhaseEW:
		return in.Durations.EW
	default:
		return in.AllRedDuration
	}
}

// Apply installs new durations and restarts the current phase. When the
// durations differ from the installed ones the node is marked changed for
// flash seconds. Returns whether the durations changed.
func (in *Intersection) Apply(d PhaseDurations, flash float64) bool {
	changed := in.Durations != d
	in.Durations = d
	in.Elapsed = 0
	if changed {
		in.ChangedFor = flash
	}
	return changed
}

// Changed reports whether the node was updated recently.
func (in *Intersection) Changed() bool {
	return in.ChangedFor > 0
}

func (in *Intersection) recordWaiting(stopped float64) {
	in.WaitingVehicles++
	in.WaitingTimeTotal += stopped
	in.longestWait = max(in.longestWait, stopped)
}

// congested is the heat charging condition for the current tick.
func (in *Intersection) congested(queueThreshold int, waitThreshold float64) bool {
	return in.WaitingVehicles >= queueThreshold || in.longestWait > waitThreshold
}

func (in *Intersection) rollCounters() {
	in.PrevWaitingVehicles = in.WaitingVehicles
	in.PrevWaitingTimeTotal = in.WaitingTimeTotal
	in.WaitingVehicles = 0
	in.WaitingTimeTotal = 0
	in.longestWait = 0
}

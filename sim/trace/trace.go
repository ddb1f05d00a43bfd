package trace

// OutcomeKind classifies how the controller consumed one evaluation.
type OutcomeKind string

const (
	// OutcomeInitialized is the first successful evaluation; it seeds current and best.
	OutcomeInitialized OutcomeKind = "initialized"
	// OutcomeImproved was accepted and beat the best fitness.
	OutcomeImproved OutcomeKind = "improved"
	// OutcomeAccepted was accepted by the Metropolis test without beating the best.
	OutcomeAccepted OutcomeKind = "accepted"
	// OutcomeRejected lost the Metropolis draw.
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeGridlock processed zero vehicles and was rejected unconditionally.
	OutcomeGridlock OutcomeKind = "gridlock"
	// OutcomeFailed could not be evaluated at all.
	OutcomeFailed OutcomeKind = "failed"
)

// EvaluationRecord captures one consumed evaluation.
type EvaluationRecord struct {
	JobID       string      `yaml:"job_id"`
	Clock       float64     `yaml:"clock"` // live simulation clock when the outcome was consumed
	Kind        OutcomeKind `yaml:"kind"`
	Horizon     float64     `yaml:"horizon"`     // scored seconds of the evaluation
	Temperature float64     `yaml:"temperature"` // before cooling

	Fitness             float64 `yaml:"fitness"`
	Delta               float64 `yaml:"delta"` // fitness - current fitness; 0 when not compared
	AcceptProbability   float64 `yaml:"accept_probability"`
	ThroughputPerMinute float64 `yaml:"throughput_per_minute"`
	VehiclesProcessed   int     `yaml:"vehicles_processed"`
}

// SearchTrace collects evaluation records in consumption order.
type SearchTrace struct {
	Records []EvaluationRecord `yaml:"records"`
}

// NewSearchTrace creates an empty trace ready for recording.
func NewSearchTrace() *SearchTrace {
	return &SearchTrace{Records: make([]EvaluationRecord, 0)}
}

// Record appends an evaluation record.
func (st *SearchTrace) Record(record EvaluationRecord) {
	st.Records = append(st.Records, record)
}

// Len returns the number of records.
func (st *SearchTrace) Len() int {
	if st == nil {
		return 0
	}
	return len(st.Records)
}

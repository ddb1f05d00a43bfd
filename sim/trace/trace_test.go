package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTrace_RecordKeepsOrder(t *testing.T) {
	st := NewSearchTrace()
	assert.Equal(t, 0, st.Len())

	st.Record(EvaluationRecord{JobID: "a", Kind: OutcomeInitialized})
	st.Record(EvaluationRecord{JobID: "b", Kind: OutcomeRejected})

	assert.Equal(t, 2, st.Len())
	assert.Equal(t, "a", st.Records[0].JobID)
	assert.Equal(t, "b", st.Records[1].JobID)
}

func TestSearchTrace_NilLen(t *testing.T) {
	var st *SearchTrace
	assert.Equal(t, 0, st.Len())
}

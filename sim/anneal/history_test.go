package anneal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		h.Push(v)
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{3, 4, 5}, h.Values())
}

func TestHistory_ValuesIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Push(1)
	vals := h.Values()
	vals[0] = 99
	assert.Equal(t, []float64{1}, h.Values())
}

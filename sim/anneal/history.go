package anneal

// History is a fixed-capacity record of fitness samples; the oldest sample
// is evicted when it is full.
type History struct {
	capacity int
	values   []float64
}

// NewHistory creates an empty history holding at most capacity samples.
func NewHistory(capacity int) *History {
	return &History{capacity: capacity, values: make([]float64, 0, capacity)}
}

// Push appends v, dropping the oldest sample when full.
func (h *History) Push(v float64) {
	if len(h.values) == h.capacity {
		copy(h.values, h.values[1:])
		h.values = h.values[:h.capacity-1]
	}
	h.values = append(h.values, v)
}

// Values returns a copy of the samples, oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, len(h.values))
	copy(out, h.values)
	return out
}

// Len returns the number of samples held.
func (h *History) Len() int {
	return len(h.values)
}

package sim

// VehicleView is the read-only state of a vehicle for a renderer.
type VehicleView struct {
	ID        int64
	X, Y      float64
	Direction Direction
	State     VehicleState
	Velocity  float64
}

// IntersectionView is the read-only state of an intersection for a renderer.
type IntersectionView struct {
	Row, Col  int
	X, Y      float64
	Phase     Phase
	Changed   bool
	Heat      float64
	Durations PhaseDurations
}

// Snapshot is a deep copy of the world, safe to hand to another goroutine.
type Snapshot struct {
	Clock         float64
	Width, Height float64
	CellSize      float64
	RoadWidth     float64
	Rows, Cols    int

	Vehicles      []VehicleView
	Intersections []IntersectionView

	AvgWaitTime       float64
	Fitness           float64
	VehiclesProcessed int
	VehiclesSpawned   int
}

// Snapshot copies the current state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Clock:             w.Clock,
		Width:             w.Config.Width(),
		Height:            w.Config.Height(),
		CellSize:          w.Config.CellSize,
		RoadWidth:         w.Config.RoadWidth,
		Rows:              w.Config.Rows,
		Cols:              w.Config.Cols,
		Vehicles:          make([]VehicleView, len(w.Vehicles)),
		Intersections:     make([]IntersectionView, len(w.Intersections)),
		AvgWaitTime:       w.AvgWaitTime,
		Fitness:           w.Fitness,
		VehiclesProcessed: w.VehiclesProcessed,
		VehiclesSpawned:   w.VehiclesSpawned,
	}
	for i, v := range w.Vehicles {
		s.Vehicles[i] = VehicleView{
			ID:        v.ID,
			X:         v.X,
			Y:         v.Y,
			Direction: v.Direction,
			State:     v.State,
			Velocity:  v.Velocity,
		}
	}
	for i, in := range w.Intersections {
		s.Intersections[i] = IntersectionView{
			Row:       in.Row,
			Col:       in.Col,
			X:         in.X,
			Y:         in.Y,
			Phase:     in.Phase,
			Changed:   in.Changed(),
			Heat:      in.Heat,
			Durations: in.Durations,
		}
	}
	return s
}

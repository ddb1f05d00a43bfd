package sim

import (
	"fmt"
	"math"
)

// Direction is the heading of a vehicle. Screen coordinates: y grows southwards.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case South:
		return "S"
	case East:
		return "E"
	case West:
		return "W"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Vertical reports whether d travels along a column.
func (d Direction) Vertical() bool {
	return d == North || d == South
}

// Unit returns the unit vector of travel.
func (d Direction) Unit() (dx, dy float64) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	default:
		return -1, 0
	}
}

// VehicleState is either moving or waiting.
type VehicleState int

const (
	Moving VehicleState = iota
	Waiting
)

func (s VehicleState) String() string {
	if s == Waiting {
		return "waiting"
	}
	return "moving"
}

// Vehicle is a car travelling straight along one lane until it leaves the bounds.
type Vehicle struct {
	ID        int64
	X, Y      float64 // centre
	SpawnX    float64
	SpawnY    float64
	Direction Direction

	Velocity     float64
	MaxSpeed     float64
	Acceleration float64

	State       VehicleState
	StoppedTime float64 // continuous seconds waiting; 0 while moving
	Age         float64
	EnteredGrid bool

	// Nearest is the index of the closest intersection, used only to
	// attribute waiting statistics. -1 when the grid is empty.
	Nearest int
}

// NewVehicle places a stationary vehicle at (x, y).
func NewVehicle(id int64, x, y float64, d Direction, maxSpeed, accel float64) *Vehicle {
	return &Vehicle{
		ID:           id,
		X:            x,
		Y:            y,
		SpawnX:       x,
		SpawnY:       y,
		Direction:    d,
		MaxSpeed:     maxSpeed,
		Acceleration: accel,
		Nearest:      -1,
	}
}

// Front returns the leading edge of the vehicle.
func (v *Vehicle) Front(carLength float64) (x, y float64) {
	dx, dy := v.Direction.Unit()
	return v.X + dx*carLength/2, v.Y + dy*carLength/2
}

// relative projects (tx, ty) onto the vehicle's frame measured from (fx, fy):
// ahead is positive in the direction of travel, lateral is the signed offset
// across it.
func (v *Vehicle) relative(fx, fy, tx, ty float64) (ahead, lateral float64) {
	switch v.Direction {
	case North:
		return fy - ty, tx - fx
	case South:
		return ty - fy, tx - fx
	case East:
		return tx - fx, ty - fy
	default:
		return fx - tx, ty - fy
	}
}

// Update advances the vehicle by dt given its road's speed factor and the
// rest of the world. The traffic slice may include v itself.
func (v *Vehicle) Update(dt, speedFactor float64, intersections []*Intersection, traffic []*Vehicle, cfg *WorldConfig) {
	v.Age += dt
	if !v.EnteredGrid && math.Hypot(v.X-v.SpawnX, v.Y-v.SpawnY) >= cfg.EntryDistance {
		v.EnteredGrid = true
	}
	v.Nearest = nearestIntersection(v.X, v.Y, intersections)

	if v.blockedBySignal(intersections, cfg) || v.blockedByTraffic(traffic, cfg) {
		v.Velocity = 0
		v.State = Waiting
		v.StoppedTime += dt
		return
	}

	if v.State == Waiting {
		v.State = Moving
		v.StoppedTime = 0
	}
	target := v.MaxSpeed * speedFactor
	v.Velocity = math.Min(v.Velocity+v.Acceleration*dt, target)

	dist := v.signalLimit(v.Velocity*dt, intersections, cfg)
	dx, dy := v.Direction.Unit()
	v.X += dx * dist
	v.Y += dy * dist
}

// stopLineMargin keeps a vehicle held at a stop line inside the stop window
// on the next tick.
const stopLineMargin = 1e-3

// signalLimit caps a move of dist so the front edge does not cross the stop
// line of a red intersection ahead. Large time steps would otherwise carry a
// vehicle over the whole stop window in one move.
func (v *Vehicle) signalLimit(dist float64, intersections []*Intersection, cfg *WorldConfig) float64 {
	if !v.EnteredGrid {
		return dist
	}
	fx, fy := v.Front(cfg.CarLength)
	half := cfg.RoadWidth / 2
	for _, in := range intersections {
		if in.Phase.Permits(v.Direction) {
			continue
		}
		ahead, lateral := v.relative(fx, fy, in.X, in.Y)
		if math.Abs(lateral) > half || ahead <= half {
			continue
		}
		dist = math.Min(dist, math.Max(0, ahead-half-stopLineMargin))
	}
	return dist
}

// blockedBySignal: the front edge sits in the stop window of an intersection
// whose phase forbids this direction. Vehicles already inside the box clear it.
func (v *Vehicle) blockedBySignal(intersections []*Intersection, cfg *WorldConfig) bool {
	if !v.EnteredGrid {
		return false
	}
	fx, fy := v.Front(cfg.CarLength)
	half := cfg.RoadWidth / 2
	for _, in := range intersections {
		if in.Phase.Permits(v.Direction) {
			continue
		}
		ahead, lateral := v.relative(fx, fy, in.X, in.Y)
		if math.Abs(lateral) > half {
			continue
		}
		if ahead > half && ahead <= half+cfg.NearDistance {
			return true
		}
	}
	return false
}

// blockedByTraffic applies the hysteresis gap: a waiting vehicle needs
// StartGap to move off, a moving one only stops below StopGap.
func (v *Vehicle) blockedByTraffic(traffic []*Vehicle, cfg *WorldConfig) bool {
	minGap := cfg.StopGap
	if v.State == Waiting {
		minGap = cfg.StartGap
	}
	for _, o := range traffic {
		if o == v || o.Direction != v.Direction {
			continue
		}
		ahead, lateral := v.relative(v.X, v.Y, o.X, o.Y)
		if ahead <= 0 || math.Abs(lateral) > cfg.LaneTolerance {
			continue
		}
		if ahead-cfg.CarLength < minGap {
			return true
		}
	}
	return false
}

func nearestIntersection(x, y float64, intersections []*Intersection) int {
	best, bestDist := -1, math.Inf(1)
	for i, in := range intersections {
		if d := math.Hypot(in.X-x, in.Y-y); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

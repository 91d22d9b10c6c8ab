package engine

// Lane is an independent decision cadence. Lanes share nothing but the tick
// counter they are driven by; there is no cross-lane ordering guarantee.
type Lane string

const (
	LaneDefense   Lane = "defense"
	LaneFire      Lane = "fire"
	LaneCommand   Lane = "command"
	LaneEquipment Lane = "equipment"
	LaneSweep     Lane = "sweep"
)

type laneState struct {
	interval int
	counter  int
}

// Scheduler decides, per lane, whether the current tick is a work tick.
// "Adaptive" timing is purely skip-based: a lane that isn't due does nothing
// this tick; nothing ever sleeps or yields.
type Scheduler struct {
	lanes map[Lane]*laneState
}

func NewScheduler() *Scheduler {
	return &Scheduler{lanes: make(map[Lane]*laneState)}
}

// Due increments the lane's counter and reports whether the lane should run
// this tick. interval is recomputed by the caller once per pass (typically
// from the last assessed threat level) and applied immediately — a lane that
// has already waited longer than a newly shortened interval fires now.
func (s *Scheduler) Due(l Lane, interval int) bool {
	if interval <= 0 {
		interval = 1
	}
	st, ok := s.lanes[l]
	if !ok {
		st = &laneState{}
		s.lanes[l] = st
	}
	st.interval = interval
	st.counter++
	if st.counter >= st.interval {
		st.counter = 0
		return true
	}
	return false
}

// Interval returns the lane's current interval (0 if the lane never ran).
func (s *Scheduler) Interval(l Lane) int {
	if st, ok := s.lanes[l]; ok {
		return st.interval
	}
	return 0
}

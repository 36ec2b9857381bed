package sim

// Timer is an event on the virtual timeline
type Timer struct {
	WakeTime uint64 // capture ticks
	Handler  func(*Timer) uint8
	Next     *Timer
}

// Handler results
const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler dispatches timers in wake-time order against a virtual clock.
// It is not safe for concurrent use; the simulated board drives it from
// one goroutine.
type Scheduler struct {
	timerList *Timer
	now       uint64
}

// Now returns the virtual time in capture ticks
func (s *Scheduler) Now() uint64 {
	return s.now
}

// ScheduleTimer adds a timer to the schedule
func (s *Scheduler) ScheduleTimer(t *Timer) {
	s.insertTimer(t)
}

// insertTimer inserts a timer in sorted order by WakeTime. Timers with
// equal wake times run in insertion order.
func (s *Scheduler) insertTimer(t *Timer) {
	if s.timerList == nil || t.WakeTime < s.timerList.WakeTime {
		t.Next = s.timerList
		s.timerList = t
		return
	}

	current := s.timerList
	for current.Next != nil && current.Next.WakeTime <= t.WakeTime {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// NextWake returns the wake time of the earliest timer
func (s *Scheduler) NextWake() (uint64, bool) {
	if s.timerList == nil {
		return 0, false
	}
	return s.timerList.WakeTime, true
}

// RunUntil advances the clock to until, dispatching every timer due on
// the way. A handler returning SF_RESCHEDULE must move WakeTime forward.
func (s *Scheduler) RunUntil(until uint64) {
	for s.timerList != nil && s.timerList.WakeTime <= until {
		timer := s.timerList
		s.timerList = timer.Next
		timer.Next = nil

		if timer.WakeTime > s.now {
			s.now = timer.WakeTime
		}

		if timer.Handler(timer) == SF_RESCHEDULE {
			s.insertTimer(timer)
		}
	}
	if until > s.now {
		s.now = until
	}
}

// Pending returns the number of scheduled timers
func (s *Scheduler) Pending() int {
	n := 0
	for t := s.timerList; t != nil; t = t.Next {
		n++
	}
	return n
}

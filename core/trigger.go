package core

import "time"

// LowTicks returns the ticks the trigger output stays low each period
func (c TriggerConfig) LowTicks() uint32 {
	if c.HighTicks >= c.PeriodTicks {
		return 0
	}
	return c.PeriodTicks - c.HighTicks
}

// Period returns the trigger period in wall time
func (c TriggerConfig) Period() time.Duration {
	return ticksToDuration(c.PeriodTicks, c.ClockHz)
}

// High returns the trigger pulse width in wall time
func (c TriggerConfig) High() time.Duration {
	return ticksToDuration(c.HighTicks, c.ClockHz)
}

// ticksToDuration converts ticks of a clockHz clock to a duration
func ticksToDuration(ticks, clockHz uint32) time.Duration {
	if clockHz == 0 {
		return 0
	}
	return time.Duration(uint64(ticks) * uint64(time.Second) / uint64(clockHz))
}

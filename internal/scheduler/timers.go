package scheduler

import "time"

// Accumulator turns elapsed time into whole-period firings. The remainder
// is carried over, so firings do not drift over long runs.
type Accumulator struct {
	Period time.Duration
	acc    time.Duration
}

// Add accumulates d and returns how many whole periods were consumed.
func (a *Accumulator) Add(d time.Duration) int {
	if a.Period <= 0 || d <= 0 {
		return 0
	}
	a.acc += d
	n := int(a.acc / a.Period)
	a.acc -= time.Duration(n) * a.Period
	return n
}

// Remainder returns the time accumulated towards the next firing.
func (a *Accumulator) Remainder() time.Duration {
	return a.acc
}

// Countdown counts from Period down to zero, one unit per Step. Reaching
// zero fires once and reloads Period.
type Countdown struct {
	period int
	value  int
}

func NewCountdown(period int) *Countdown {
	if period < 1 {
		period = 1
	}
	return &Countdown{period: period, value: period}
}

// Step decrements the counter and reports whether it fired.
func (c *Countdown) Step() bool {
	c.value--
	if c.value <= 0 {
		c.value = c.period
		return true
	}
	return false
}

// Value returns the units left until the next firing.
func (c *Countdown) Value() int {
	return c.value
}

// Reset reloads the full period.
func (c *Countdown) Reset() {
	c.value = c.period
}

// CountUp counts from zero up to Period, one unit per Step. Reaching
// Period fires once and restarts from zero.
type CountUp struct {
	period int
	value  int
}

func NewCountUp(period int) *CountUp {
	if period < 1 {
		period = 1
	}
	return &CountUp{period: period}
}

// Step increments the counter and reports whether it fired.
func (c *CountUp) Step() bool {
	c.value++
	if c.value >= c.period {
		c.value = 0
		return true
	}
	return false
}

// Value returns the units counted since the last firing.
func (c *CountUp) Value() int {
	return c.value
}

// Remaining returns the units left until the next firing.
func (c *CountUp) Remaining() int {
	return c.period - c.value
}

// Reset restarts the count from zero.
func (c *CountUp) Reset() {
	c.value = 0
}

func seconds(d time.Duration) int {
	return int(d / time.Second)
}

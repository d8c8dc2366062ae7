// Package backoff holds the adaptive poll interval math used by the
// driver discovery loop. Pure functions, no timers.
package backoff

import (
	"math"
	"time"
)

// Policy bounds an exponential poll backoff. Each consecutive empty poll
// widens the interval by Factor up to MaxSteps times; the interval never
// exceeds Max.
type Policy struct {
	Min      time.Duration
	Max      time.Duration
	Factor   float64
	MaxSteps int
}

// Interval returns the poll interval after the given number of
// consecutive misses: min(Min * Factor^min(misses, MaxSteps), Max).
func (p Policy) Interval(misses int) time.Duration {
	if misses <= 0 {
		return p.Min
	}
	steps := misses
	if steps > p.MaxSteps {
		steps = p.MaxSteps
	}
	d := time.Duration(float64(p.Min) * math.Pow(p.Factor, float64(steps)))
	if d > p.Max {
		return p.Max
	}
	return d
}

// Counter tracks consecutive misses against a policy
type Counter struct {
	policy Policy
	misses int
}

// NewCounter returns a counter at zero misses
func NewCounter(policy Policy) *Counter {
	return &Counter{policy: policy}
}

// Miss records an empty poll and returns the next interval
func (c *Counter) Miss() time.Duration {
	c.misses++
	return c.policy.Interval(c.misses)
}

// Hit resets the counter and returns the base interval
func (c *Counter) Hit() time.Duration {
	c.misses = 0
	return c.policy.Min
}

// Reset clears the miss count without returning an interval
func (c *Counter) Reset() {
	c.misses = 0
}

// Current returns the interval for the present miss count
func (c *Counter) Current() time.Duration {
	return c.policy.Interval(c.misses)
}

// Misses returns the consecutive miss count
func (c *Counter) Misses() int {
	return c.misses
}

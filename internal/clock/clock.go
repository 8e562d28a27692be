// Package clock keeps the device wall clock: a free-running local clock
// corrected by the offset measured at the last successful NTP sync.
package clock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/beevik/ntp"

	"github.com/i474232898/weather-clock/internal/common"
)

// Querier measures the offset between the local clock and a time server.
type Querier interface {
	Offset(ctx context.Context, server string, timeout time.Duration) (time.Duration, error)
}

// State is the Clock Source's slice of the scheduler state.
type State struct {
	Synced      bool          `json:"synced"`
	Offset      time.Duration `json:"offset"`
	LastSync    time.Time     `json:"lastSync"`
	LastAttempt time.Time     `json:"lastAttempt"`
	LastError   common.Kind   `json:"lastError,omitempty"`
	Syncs       int           `json:"syncs"`
	Failures    int           `json:"failures"`
}

// Clock supplies the corrected wall time and device uptime.
type Clock struct {
	server  string
	timeout time.Duration
	querier Querier
	loc     *time.Location

	offset time.Duration
	start  time.Time
	local  func() time.Time
}

// New creates a clock synced against server. loc may be nil for UTC.
func New(server string, timeout time.Duration, loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{
		server:  server,
		timeout: timeout,
		querier: NTPQuerier{},
		loc:     loc,
		start:   time.Now(),
		local:   time.Now,
	}
}

// Now returns the current corrected wall time in the configured zone.
func (c *Clock) Now() time.Time {
	return c.local().Add(c.offset).In(c.loc)
}

// Uptime returns the time elapsed since the clock was created.
func (c *Clock) Uptime() time.Duration {
	return c.local().Sub(c.start)
}

// Location returns the display time zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Resync queries the time server once. On failure the previous offset is
// kept and the clock keeps free-running.
func (c *Clock) Resync(ctx context.Context, st *State) error {
	st.LastAttempt = c.local()

	offset, err := c.querier.Offset(ctx, c.server, c.timeout)
	if err != nil {
		err = fmt.Errorf("ntp %s: %w", c.server, common.Tag(err))
		st.LastError = common.KindOf(err)
		st.Failures++
		log.Printf("clock: resync failed: %v", err)
		return err
	}

	c.offset = offset
	st.Synced = true
	st.Offset = offset
	st.LastSync = c.Now()
	st.LastError = common.KindNone
	st.Syncs++
	log.Printf("INFO: clock: synced with %s, offset %s", c.server, offset)
	return nil
}

// NTPQuerier queries a real NTP server.
type NTPQuerier struct{}

func (NTPQuerier) Offset(ctx context.Context, server string, timeout time.Duration) (time.Duration, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}

	resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, common.NewError(common.KindMalformedResponse, err)
	}
	return resp.ClockOffset, nil
}

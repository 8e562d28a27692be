package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-clock/internal/clock"
	"github.com/i474232898/weather-clock/internal/common"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/netmon"
	"github.com/i474232898/weather-clock/internal/weather"
)

func TestAccumulatorKeepsRemainder(t *testing.T) {
	a := Accumulator{Period: time.Second}
	assert.Equal(t, 2, a.Add(2500*time.Millisecond))
	assert.Equal(t, 500*time.Millisecond, a.Remainder())
	assert.Equal(t, 0, a.Add(400*time.Millisecond))
	assert.Equal(t, 1, a.Add(100*time.Millisecond))
	assert.Zero(t, a.Remainder())
	assert.Equal(t, 0, a.Add(-time.Second))
}

func TestAccumulatorNoDrift(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := Accumulator{Period: time.Second}

	var total time.Duration
	fired := 0
	for i := 0; i < 10000; i++ {
		d := time.Duration(rng.Intn(1500)) * time.Millisecond
		total += d
		fired += a.Add(d)

		assert.Equal(t, total-a.Remainder(), time.Duration(fired)*time.Second)
		require.GreaterOrEqual(t, a.Remainder(), time.Duration(0))
		require.Less(t, a.Remainder(), time.Second)
	}
}

func TestCountdownFiresOncePerPeriod(t *testing.T) {
	c := NewCountdown(7200)
	fired := 0
	for i := 1; i <= 7200; i++ {
		if c.Step() {
			fired++
			assert.Equal(t, 7200, i)
		}
		require.GreaterOrEqual(t, c.Value(), 0)
		require.LessOrEqual(t, c.Value(), 7200)
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, 7200, c.Value())
}

func TestCountUpFiresOncePerPeriod(t *testing.T) {
	c := NewCountUp(600)
	fired := 0
	for i := 1; i <= 600; i++ {
		if c.Step() {
			fired++
			assert.Equal(t, 600, i)
		}
		require.LessOrEqual(t, c.Value(), 600)
	}
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.Value())
	assert.Equal(t, 600, c.Remaining())
}

type fakeClock struct {
	now     time.Time
	uptime  time.Duration
	resyncs int
	err     error
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Uptime() time.Duration { return c.uptime }

func (c *fakeClock) Resync(ctx context.Context, st *clock.State) error {
	c.resyncs++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("resync without deadline")
	}
	if c.err != nil {
		st.LastError = common.KindOf(c.err)
		return c.err
	}
	st.Synced = true
	return nil
}

type fakeWeather struct {
	calls     int
	connected []bool
	reading   weather.Sample
	err       error
}

func (w *fakeWeather) Refresh(ctx context.Context, connected bool, st *weather.State) error {
	w.calls++
	w.connected = append(w.connected, connected)
	if w.err != nil {
		st.LastError = common.KindOf(w.err)
		return w.err
	}
	st.Sample = w.reading
	st.HasSample = true
	return nil
}

type fakeMonitor struct {
	polls int
	state netmon.State
}

func (m *fakeMonitor) Poll(st *netmon.State) {
	m.polls++
	*st = m.state
}

type fakeSink struct {
	frames []display.Frame
}

func (s *fakeSink) Present(f display.Frame) error {
	s.frames = append(s.frames, f)
	return nil
}
func (s *fakeSink) FrameDelay() time.Duration { return time.Millisecond }

type harness struct {
	loop    *Loop
	clock   *fakeClock
	weather *fakeWeather
	monitor *fakeMonitor
	sink    *fakeSink
	mono    time.Time
}

func newHarness() *harness {
	h := &harness{
		clock:   &fakeClock{now: time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)},
		weather: &fakeWeather{reading: weather.Sample{Temperature: 21, Humidity: 40, UVIndex: 3, Units: weather.UnitsMetric}},
		monitor: &fakeMonitor{state: netmon.State{Connected: true, RSSI: -55, HasRSSI: true, Address: "10.0.0.7", Tier: netmon.TierGood}},
		sink:    &fakeSink{},
		mono:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	h.loop = New(Config{
		NTPSyncInterval:  2 * time.Hour,
		WeatherInterval:  10 * time.Minute,
		ConnPollInterval: 5 * time.Second,
		AuxInterval:      time.Minute,
		NetworkTimeout:   time.Second,
	}, h.clock, h.weather, h.monitor, h.sink)
	h.loop.monotonic = func() time.Time { return h.mono }
	h.loop.Tick(context.Background())
	return h
}

// advance moves time forward by d in frame-sized steps.
func (h *harness) advance(d, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		h.mono = h.mono.Add(step)
		h.clock.now = h.clock.now.Add(step)
		h.clock.uptime += step
		h.loop.Tick(context.Background())
	}
}

func TestLoopCadences(t *testing.T) {
	h := newHarness()
	h.advance(2*time.Hour, 250*time.Millisecond)

	assert.Equal(t, 1, h.clock.resyncs)
	assert.Equal(t, 12, h.weather.calls)
	assert.Equal(t, 1440, h.monitor.polls)
	assert.Equal(t, 1+4*7200, len(h.sink.frames))

	snap := h.loop.Snapshot()
	assert.Equal(t, 7200, snap.NextSync)
	assert.Equal(t, 600, snap.NextWeather)
	assert.True(t, snap.Clock.Synced)
}

func TestLoopCatchesUpAfterStall(t *testing.T) {
	h := newHarness()
	// A single 12.5s gap, as after a blocking network call.
	h.advance(12500*time.Millisecond, 12500*time.Millisecond)

	assert.Equal(t, 2, h.monitor.polls)
	assert.Equal(t, 7200-12, h.loop.Snapshot().NextSync)
	assert.Equal(t, 500*time.Millisecond, h.loop.second.Remainder())
}

func TestLoopFrameContents(t *testing.T) {
	h := newHarness()
	h.advance(10*time.Minute, time.Second)

	f := h.sink.frames[len(h.sink.frames)-1]
	assert.Equal(t, "00:09", f.Clock)
	assert.Equal(t, "00", f.Seconds)
	assert.Equal(t, "2024-05-02", f.Date)
	assert.Equal(t, "THU", f.Weekday)
	assert.Equal(t, "21.0°C", f.Temperature)
	assert.Equal(t, display.ColorGreen, f.TemperatureColor)
	assert.Equal(t, "40%", f.Humidity)
	assert.Equal(t, display.ColorYellow, f.UVColor)
	assert.Equal(t, "010.000.000.007", f.Address)
	assert.Equal(t, [3]display.Color{display.ColorGreen, display.ColorGreen, display.ColorYellow}, f.Signal)
	assert.Equal(t, "01:50:00", f.NextSync)
	assert.Equal(t, "10:00", f.NextWeather)
}

func TestLoopDateFollowsClockBetweenAuxUpdates(t *testing.T) {
	h := newHarness()
	h.advance(30*time.Second, time.Second)
	assert.Equal(t, "2024-05-01", h.sink.frames[len(h.sink.frames)-1].Date)

	// A resync moves the clock a day ahead, well before the next aux update.
	h.clock.now = time.Date(2024, 5, 3, 0, 0, 5, 0, time.UTC)
	h.advance(time.Second, time.Second)

	f := h.sink.frames[len(h.sink.frames)-1]
	assert.Equal(t, "2024-05-03", f.Date)
	assert.Equal(t, "FRI", f.Weekday)
}

func TestLoopWeatherFailureKeepsDisplay(t *testing.T) {
	h := newHarness()
	h.advance(10*time.Minute, time.Second)
	before := h.sink.frames[len(h.sink.frames)-1]

	h.weather.err = common.NewError(common.KindTimeout, context.DeadlineExceeded)
	h.weather.reading = weather.Sample{Temperature: 40, Units: weather.UnitsMetric}
	h.advance(10*time.Minute, time.Second)

	after := h.sink.frames[len(h.sink.frames)-1]
	assert.Equal(t, before.Temperature, after.Temperature)
	assert.Equal(t, before.TemperatureColor, after.TemperatureColor)
	assert.Equal(t, common.KindTimeout, h.loop.Snapshot().Weather.LastError)
}

func TestLoopPassesConnectivityToWeather(t *testing.T) {
	h := newHarness()
	h.monitor.state = netmon.State{Tier: netmon.TierDisconnected}
	h.advance(10*time.Minute, time.Second)

	require.NotEmpty(t, h.weather.connected)
	assert.False(t, h.weather.connected[len(h.weather.connected)-1])
	f := h.sink.frames[len(h.sink.frames)-1]
	assert.Equal(t, "---.---.---.---", f.Address)
	assert.Equal(t, [3]display.Color{display.ColorRed, display.ColorRed, display.ColorRed}, f.Signal)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.loop.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

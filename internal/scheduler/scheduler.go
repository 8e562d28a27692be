package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-clock/internal/clock"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/netmon"
	"github.com/i474232898/weather-clock/internal/telemetry"
	"github.com/i474232898/weather-clock/internal/weather"
)

// ClockSource is the part of clock.Clock the loop uses.
type ClockSource interface {
	Now() time.Time
	Uptime() time.Duration
	Resync(ctx context.Context, st *clock.State) error
}

// WeatherSource is the part of weather.Service the loop uses.
type WeatherSource interface {
	Refresh(ctx context.Context, connected bool, st *weather.State) error
}

// ConnectivityMonitor is the part of netmon.Monitor the loop uses.
type ConnectivityMonitor interface {
	Poll(st *netmon.State)
}

// Config holds the loop cadences.
type Config struct {
	NTPSyncInterval  time.Duration
	WeatherInterval  time.Duration
	ConnPollInterval time.Duration
	AuxInterval      time.Duration
	// NetworkTimeout bounds each blocking network call.
	NetworkTimeout time.Duration
}

// State is the single instance of device state. Each subsystem is handed a
// pointer to its own field only.
type State struct {
	Clock       clock.State   `json:"clock"`
	Weather     weather.State `json:"weather"`
	Conn        netmon.State  `json:"connectivity"`
	NextSync    int           `json:"nextSyncSeconds"`
	NextWeather int           `json:"nextWeatherSeconds"`
	Ticks       uint64        `json:"ticks"`
}

// Loop is the cooperative refresh loop. All methods except Snapshot must be
// called from the goroutine that runs the loop.
type Loop struct {
	cfg     Config
	clock   ClockSource
	weather WeatherSource
	monitor ConnectivityMonitor
	sink    display.Sink

	state State
	frame display.Frame

	second Accumulator
	conn   Accumulator
	aux    Accumulator

	ntpTimer     *Countdown
	weatherTimer *CountUp

	monotonic func() time.Time
	last      time.Time

	mu        sync.RWMutex
	published State
}

// New creates a new Loop.
func New(cfg Config, clk ClockSource, wx WeatherSource, mon ConnectivityMonitor, sink display.Sink) *Loop {
	if cfg.NetworkTimeout <= 0 {
		cfg.NetworkTimeout = 10 * time.Second
	}
	l := &Loop{
		cfg:          cfg,
		clock:        clk,
		weather:      wx,
		monitor:      mon,
		sink:         sink,
		second:       Accumulator{Period: time.Second},
		conn:         Accumulator{Period: cfg.ConnPollInterval},
		aux:          Accumulator{Period: cfg.AuxInterval},
		ntpTimer:     NewCountdown(seconds(cfg.NTPSyncInterval)),
		weatherTimer: NewCountUp(seconds(cfg.WeatherInterval)),
		monotonic:    time.Now,
	}
	l.frame.BlankWeather()
	return l
}

// State returns the loop-owned state for boot-time seeding.
func (l *Loop) State() *State {
	return &l.state
}

// Snapshot returns a copy of the state as of the last tick. Safe for
// concurrent use.
func (l *Loop) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.published
}

// PollConnectivity refreshes the connectivity state and its display fields.
func (l *Loop) PollConnectivity() {
	l.monitor.Poll(&l.state.Conn)
	if l.state.Conn.HasRSSI {
		telemetry.SignalStrength.Set(float64(l.state.Conn.RSSI))
	}
	l.updateConnFields()
}

// Resync runs one clock resync bounded by the network timeout.
func (l *Loop) Resync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.NetworkTimeout)
	defer cancel()

	err := l.clock.Resync(ctx, &l.state.Clock)
	telemetry.ObserveRefresh("clock", err, l.clock.Now())
	return err
}

// RefreshWeather runs one weather refresh bounded by the network timeout.
func (l *Loop) RefreshWeather(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.NetworkTimeout)
	defer cancel()

	err := l.weather.Refresh(ctx, l.state.Conn.Connected, &l.state.Weather)
	telemetry.ObserveRefresh("weather", err, l.clock.Now())
	l.updateWeatherFields()
	return err
}

// Tick runs one loop iteration: feed elapsed time into the accumulators,
// fire due actions, then present a frame.
func (l *Loop) Tick(ctx context.Context) {
	now := l.monotonic()
	if l.last.IsZero() {
		l.last = now
		l.updateAll()
	}
	elapsed := now.Sub(l.last)
	l.last = now

	for n := l.second.Add(elapsed); n > 0; n-- {
		l.onSecond(ctx)
	}
	for n := l.conn.Add(elapsed); n > 0; n-- {
		l.PollConnectivity()
	}
	for n := l.aux.Add(elapsed); n > 0; n-- {
		l.updateAll()
	}

	l.state.Ticks++
	if err := l.sink.Present(l.frame); err != nil {
		log.Printf("scheduler: present failed: %v", err)
	}
	l.publish()
}

// Run ticks until ctx is cancelled, pausing for the sink's frame delay
// between iterations.
func (l *Loop) Run(ctx context.Context) error {
	log.Println("INFO: scheduler: refresh loop started")
	for {
		l.Tick(ctx)

		timer := time.NewTimer(l.sink.FrameDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("INFO: scheduler: refresh loop stopped")
			return nil
		case <-timer.C:
		}
	}
}

func (l *Loop) onSecond(ctx context.Context) {
	if l.ntpTimer.Step() {
		_ = l.Resync(ctx)
	}
	if l.weatherTimer.Step() {
		_ = l.RefreshWeather(ctx)
	}
	l.updateClockFields()
}

func (l *Loop) updateAll() {
	l.updateClockFields()
	l.updateDateFields()
	l.updateConnFields()
	l.updateWeatherFields()
}

func (l *Loop) updateClockFields() {
	now := l.clock.Now()
	l.frame.Clock = display.ClockText(now)
	l.frame.Seconds = display.SecondsText(now)
	// Midnight or a resync jump must not wait for the aux bucket.
	if display.DateText(now) != l.frame.Date {
		l.updateDateFields()
	}

	l.state.NextSync = l.ntpTimer.Value()
	l.state.NextWeather = l.weatherTimer.Remaining()
	l.frame.NextSync = display.CountdownText(l.state.NextSync)
	l.frame.NextWeather = display.MinSecText(l.state.NextWeather)
	l.frame.Uptime = display.CountdownText(seconds(l.clock.Uptime()))
}

func (l *Loop) updateDateFields() {
	now := l.clock.Now()
	l.frame.Date = display.DateText(now)
	l.frame.Weekday = display.WeekdayText(now)
}

func (l *Loop) updateConnFields() {
	c := l.state.Conn
	if c.Connected {
		l.frame.Address = display.AddressText(c.Address)
	} else {
		l.frame.Address = display.AddressText("")
	}
	l.frame.Signal = display.SignalColors(c.Tier.Pattern())
}

func (l *Loop) updateWeatherFields() {
	st := l.state.Weather
	if !st.HasSample {
		l.frame.BlankWeather()
		return
	}
	s := st.Sample
	l.frame.Temperature = display.TemperatureText(s.Temperature, s.Units.TemperatureSuffix())
	l.frame.TemperatureColor = display.TemperatureColor(s.TemperatureC())
	l.frame.Humidity = display.HumidityText(s.Humidity)
	l.frame.HumidityColor = display.HumidityColor(s.Humidity)
	l.frame.UV = display.UVText(s.UVIndex)
	l.frame.UVColor = display.UVColor(s.UVIndex)
	telemetry.Temperature.Set(s.TemperatureC())
}

func (l *Loop) publish() {
	l.mu.Lock()
	l.published = l.state
	l.mu.Unlock()
}

package netmon

import (
	"log"
	"time"
)

// Level is one segment of the three-segment signal indicator.
type Level int

const (
	LevelPoor Level = iota
	LevelFair
	LevelGood
)

// Tier is a discrete connection quality class.
type Tier int

const (
	TierDisconnected Tier = iota
	TierPoor
	TierWeak
	TierFair
	TierGood
	TierExcellent
)

var tierNames = map[Tier]string{
	TierDisconnected: "disconnected",
	TierPoor:         "poor",
	TierWeak:         "weak",
	TierFair:         "fair",
	TierGood:         "good",
	TierExcellent:    "excellent",
}

func (t Tier) String() string {
	if n, ok := tierNames[t]; ok {
		return n
	}
	return "unknown"
}

// MarshalText renders the tier by name in JSON.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// RSSI thresholds in dBm, inclusive lower bounds.
const (
	excellentRSSI = -50
	goodRSSI      = -60
	fairRSSI      = -70
	weakRSSI      = -80
)

// Classify maps attachment state and RSSI to a tier.
func Classify(connected bool, rssi int) Tier {
	switch {
	case !connected:
		return TierDisconnected
	case rssi >= excellentRSSI:
		return TierExcellent
	case rssi >= goodRSSI:
		return TierGood
	case rssi >= fairRSSI:
		return TierFair
	case rssi >= weakRSSI:
		return TierWeak
	default:
		return TierPoor
	}
}

// Pattern returns the indicator segments for t.
func (t Tier) Pattern() [3]Level {
	switch t {
	case TierExcellent:
		return [3]Level{LevelGood, LevelGood, LevelGood}
	case TierGood:
		return [3]Level{LevelGood, LevelGood, LevelFair}
	case TierFair:
		return [3]Level{LevelGood, LevelFair, LevelFair}
	case TierWeak:
		return [3]Level{LevelFair, LevelFair, LevelFair}
	case TierPoor:
		return [3]Level{LevelFair, LevelFair, LevelPoor}
	default:
		return [3]Level{LevelPoor, LevelPoor, LevelPoor}
	}
}

// Reading is one probe of the network stack. RSSI is only meaningful when
// HasRSSI is set; wired links and drivers without a wireless entry leave it
// unset.
type Reading struct {
	Connected bool
	RSSI      int
	HasRSSI   bool
	Address   string
}

// ClassifyReading is Classify for a probe result. A connected link with no
// signal measurement gets the weakest connected tier.
func ClassifyReading(r Reading) Tier {
	if r.Connected && !r.HasRSSI {
		return TierPoor
	}
	return Classify(r.Connected, r.RSSI)
}

// Prober reads the current attachment from the network stack.
type Prober interface {
	Probe() (Reading, error)
}

// State is the Connectivity Monitor's slice of the scheduler state.
// Address is empty unless Connected.
type State struct {
	Connected bool      `json:"connected"`
	RSSI      int       `json:"rssi"`
	HasRSSI   bool      `json:"hasRssi"`
	Address   string    `json:"address,omitempty"`
	Tier      Tier      `json:"tier"`
	PolledAt  time.Time `json:"polledAt"`
}

// Monitor polls a Prober.
type Monitor struct {
	prober Prober
	now    func() time.Time
}

func NewMonitor(prober Prober) *Monitor {
	return &Monitor{prober: prober, now: time.Now}
}

// Poll overwrites st with the current attachment. A probe error reads as
// disconnected.
func (m *Monitor) Poll(st *State) {
	r, err := m.prober.Probe()
	if err != nil {
		log.Printf("DEBUG: netmon: probe failed: %v", err)
		r = Reading{}
	}
	if !r.Connected {
		r.Address = ""
		r.RSSI = 0
		r.HasRSSI = false
	}
	if !r.HasRSSI {
		r.RSSI = 0
	}

	*st = State{
		Connected: r.Connected,
		RSSI:      r.RSSI,
		HasRSSI:   r.HasRSSI,
		Address:   r.Address,
		Tier:      ClassifyReading(r),
		PolledAt:  m.now(),
	}
}

package netmon

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTiers(t *testing.T) {
	cases := []struct {
		connected bool
		rssi      int
		want      Tier
		pattern   [3]Level
	}{
		{true, -45, TierExcellent, [3]Level{LevelGood, LevelGood, LevelGood}},
		{true, -55, TierGood, [3]Level{LevelGood, LevelGood, LevelFair}},
		{true, -65, TierFair, [3]Level{LevelGood, LevelFair, LevelFair}},
		{true, -75, TierWeak, [3]Level{LevelFair, LevelFair, LevelFair}},
		{true, -85, TierPoor, [3]Level{LevelFair, LevelFair, LevelPoor}},
		{false, -45, TierDisconnected, [3]Level{LevelPoor, LevelPoor, LevelPoor}},
	}

	prev := TierExcellent + 1
	for _, c := range cases {
		got := Classify(c.connected, c.rssi)
		assert.Equal(t, c.want, got, "rssi %d", c.rssi)
		assert.Equal(t, c.pattern, got.Pattern())
		assert.Less(t, got, prev, "tiers must get strictly worse")
		prev = got
	}
}

func TestClassifyBoundaries(t *testing.T) {
	assert.Equal(t, TierExcellent, Classify(true, -50))
	assert.Equal(t, TierGood, Classify(true, -51))
	assert.Equal(t, TierWeak, Classify(true, -80))
	assert.Equal(t, TierPoor, Classify(true, -81))
}

type stubProber struct {
	r   Reading
	err error
}

func (s stubProber) Probe() (Reading, error) { return s.r, s.err }

func TestPoll(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m := NewMonitor(stubProber{r: Reading{Connected: true, RSSI: -62, HasRSSI: true, Address: "192.168.1.7"}})
	m.now = func() time.Time { return now }

	var st State
	m.Poll(&st)
	assert.Equal(t, State{Connected: true, RSSI: -62, HasRSSI: true, Address: "192.168.1.7", Tier: TierFair, PolledAt: now}, st)

	// Up with an address but no wireless entry: no signal was measured.
	m.prober = stubProber{r: Reading{Connected: true, Address: "192.168.1.7"}}
	m.Poll(&st)
	assert.True(t, st.Connected)
	assert.False(t, st.HasRSSI)
	assert.Equal(t, TierPoor, st.Tier)
	assert.Equal(t, [3]Level{LevelFair, LevelFair, LevelPoor}, st.Tier.Pattern())

	m.prober = stubProber{err: errors.New("no such interface")}
	m.Poll(&st)
	assert.False(t, st.Connected)
	assert.Empty(t, st.Address)
	assert.Equal(t, TierDisconnected, st.Tier)

	m.prober = stubProber{r: Reading{Connected: false, Address: "10.0.0.2"}}
	m.Poll(&st)
	assert.Empty(t, st.Address)
}

func TestParseWireless(t *testing.T) {
	content := `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
 wlan0: 0000   54.  -56.  -256        0      0      0      0      0        0
`
	rssi, ok, err := parseWireless(strings.NewReader(content), "wlan0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, -56, rssi)

	_, ok, err = parseWireless(strings.NewReader(content), "wlan1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parseWireless(strings.NewReader(" wlan0: 0000 54. bogus"), "wlan0")
	assert.Error(t, err)
}

func TestHeaderOnlyWirelessFileHasNoRSSI(t *testing.T) {
	header := "Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE\n" +
		" face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22\n"

	rssi, ok, err := parseWireless(strings.NewReader(header), "wlan0")
	require.NoError(t, err)
	assert.False(t, ok)

	r := Reading{Connected: true, Address: "10.0.0.2", RSSI: rssi, HasRSSI: ok}
	assert.Equal(t, TierPoor, ClassifyReading(r))
	assert.Equal(t, TierExcellent, ClassifyReading(Reading{Connected: true, RSSI: -40, HasRSSI: true}))
	assert.Equal(t, TierDisconnected, ClassifyReading(Reading{}))
}

func TestTierJSONName(t *testing.T) {
	b, err := TierGood.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "good", string(b))
}

package boot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-clock/internal/common"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/led"
)

func ok(context.Context) error { return nil }

func TestRunReady(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, PhaseBooting, m.Status().Phase)

	var ran []string
	step := func(name string, optional bool, err error) Step {
		return Step{Name: name, Optional: optional, Run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	err := m.Run(context.Background(),
		step("storage", false, nil),
		step("ntp", true, errors.New("i/o timeout")),
		step("coordinates", false, nil),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"storage", "ntp", "coordinates"}, ran)
	assert.Equal(t, Status{Phase: PhaseReady}, m.Status())
}

func TestRunFatalHaltIsTerminal(t *testing.T) {
	m := NewMachine()
	called := false

	err := m.Run(context.Background(),
		Step{Name: "storage", Run: func(context.Context) error {
			return common.NewError(common.KindStorageUnavailable, errors.New("read-only file system"))
		}},
		Step{Name: "network", Run: func(context.Context) error { called = true; return nil }},
	)
	require.Error(t, err)
	assert.False(t, called)

	st := m.Status()
	assert.Equal(t, PhaseFatalHalt, st.Phase)
	assert.Equal(t, "storage", st.Step)
	assert.Equal(t, common.KindStorageUnavailable, st.Kind)

	// No transition out of FatalHalt.
	require.Error(t, m.Run(context.Background(), Step{Name: "retry", Run: ok}))
	assert.Equal(t, PhaseFatalHalt, m.Status().Phase)
}

type captureSink struct{ frames []display.Frame }

func (c *captureSink) Present(f display.Frame) error {
	c.frames = append(c.frames, f)
	return nil
}
func (c *captureSink) FrameDelay() time.Duration { return 0 }

func TestHaltBlocksUntilRestart(t *testing.T) {
	m := NewMachine()
	_ = m.Run(context.Background(), Step{Name: "network", Run: func(context.Context) error {
		return common.NewError(common.KindNotConnected, nil)
	}})

	sink := &captureSink{}
	animator := led.NewAnimator(&led.VirtualStrip{}, 255)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Halt(ctx, sink, animator)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Halt returned before cancellation")
	case <-time.After(50 * time.Millisecond):
	}
	cancel()
	<-done

	require.Len(t, sink.frames, 1)
	assert.Equal(t, "network: not_connected", sink.frames[0].Status)
	assert.Equal(t, led.ModeBlink, animator.Mode())
}

func TestHaltNoopWhenReady(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Run(context.Background(), Step{Name: "storage", Run: ok}))
	sink := &captureSink{}
	m.Halt(context.Background(), sink, nil)
	assert.Empty(t, sink.frames)
}

package boot

import (
	"context"
	"fmt"
	"log"

	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/led"
)

// Halt shows the fatal status on the sink, switches the LED to the blink
// pattern and blocks until ctx is done. It returns immediately if the
// machine is not in FatalHalt.
func (m *Machine) Halt(ctx context.Context, sink display.Sink, animator *led.Animator) {
	st := m.Status()
	if st.Phase != PhaseFatalHalt {
		return
	}

	f := display.Frame{
		Status:      haltMessage(st),
		StatusColor: display.ColorRed,
	}
	f.BlankWeather()
	if err := sink.Present(f); err != nil {
		log.Printf("boot: failed to present halt screen: %v", err)
	}
	if animator != nil {
		animator.Blink(led.RGB{R: 255})
	}

	log.Printf("ERROR: boot: halted at %s (%s); restart required", st.Step, st.Kind)
	<-ctx.Done()
}

func haltMessage(st Status) string {
	if st.Kind != "" {
		return fmt.Sprintf("%s: %s", st.Step, st.Kind)
	}
	return st.Step + " failed"
}

// Package led drives the status LED: a color-wheel animation in normal
// operation and a red blink pattern after a fatal boot error.
package led

import (
	"fmt"
	"sync"
	"time"
)

// BlinkHalfPeriod is how long the blink pattern stays on, then off.
const BlinkHalfPeriod = 500 * time.Millisecond

// RGB is a 24-bit LED color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Driver sets the LED color.
type Driver interface {
	SetColor(c RGB) error
}

// Wheel maps a position on a 256-step color wheel to a color. The wheel
// goes red -> green -> blue -> red.
func Wheel(pos uint8) RGB {
	switch {
	case pos < 85:
		return RGB{255 - pos*3, pos * 3, 0}
	case pos < 170:
		pos -= 85
		return RGB{0, 255 - pos*3, pos * 3}
	default:
		pos -= 170
		return RGB{pos * 3, 0, 255 - pos*3}
	}
}

// Scale applies a 0-255 brightness to c.
func Scale(c RGB, brightness uint8) RGB {
	s := func(v uint8) uint8 { return uint8(uint16(v) * uint16(brightness) / 255) }
	return RGB{s(c.R), s(c.G), s(c.B)}
}

// Mode selects the animation.
type Mode int

const (
	ModeCycle Mode = iota
	ModeBlink
)

// Animator advances the LED animation one step per Step call.
type Animator struct {
	mu         sync.Mutex
	driver     Driver
	brightness uint8
	mode       Mode
	pos        uint8
	blinkOn    bool
	blinkColor RGB

	// blinkSteps is the number of steps per blink half-period; blinkCount
	// counts steps within the current one.
	blinkSteps int
	blinkCount int
}

func NewAnimator(driver Driver, brightness uint8) *Animator {
	return &Animator{driver: driver, brightness: brightness, blinkColor: RGB{255, 0, 0}, blinkSteps: 1}
}

// SetStepInterval tells the animator how often Step is called, so the blink
// pattern keeps BlinkHalfPeriod whatever the animation cadence.
func (a *Animator) SetStepInterval(d time.Duration) {
	steps := 1
	if d > 0 && d < BlinkHalfPeriod {
		steps = int(BlinkHalfPeriod / d)
	}
	a.mu.Lock()
	a.blinkSteps = steps
	a.blinkCount = 0
	a.mu.Unlock()
}

// SetBrightness changes the brightness applied from the next step on.
func (a *Animator) SetBrightness(b uint8) {
	a.mu.Lock()
	a.brightness = b
	a.mu.Unlock()
}

// Blink switches to the blink pattern in color c.
func (a *Animator) Blink(c RGB) {
	a.mu.Lock()
	a.mode = ModeBlink
	a.blinkColor = c
	a.blinkOn = false
	a.blinkCount = 0
	a.mu.Unlock()
}

// Mode returns the current animation.
func (a *Animator) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Step computes the next color and sends it to the driver.
func (a *Animator) Step() error {
	a.mu.Lock()
	var c RGB
	switch a.mode {
	case ModeBlink:
		if a.blinkCount == 0 {
			a.blinkOn = !a.blinkOn
		}
		a.blinkCount = (a.blinkCount + 1) % a.blinkSteps
		if a.blinkOn {
			c = a.blinkColor
		}
	default:
		c = Wheel(a.pos)
		a.pos++
	}
	c = Scale(c, a.brightness)
	a.mu.Unlock()

	return a.driver.SetColor(c)
}

// VirtualStrip is a Driver that records the last color set, for boards
// without an addressable LED and for the status API.
type VirtualStrip struct {
	mu      sync.RWMutex
	current RGB
	writes  uint64
}

func (v *VirtualStrip) SetColor(c RGB) error {
	v.mu.Lock()
	v.current = c
	v.writes++
	v.mu.Unlock()
	return nil
}

// Color returns the last color set.
func (v *VirtualStrip) Color() RGB {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Writes returns how many times the color was set.
func (v *VirtualStrip) Writes() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.writes
}

package display

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Panel geometry of the 1.47" portrait LCD.
const (
	PanelWidth  = 172
	PanelHeight = 320
)

var (
	face       = basicfont.Face7x13
	background = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// Framebuffer renders frames into an in-memory image. The refresh loop
// writes it; the HTTP API reads the last image as PNG.
type Framebuffer struct {
	mu     sync.RWMutex
	img    *image.RGBA
	last   Frame
	frames uint64
	delay  time.Duration
}

// NewFramebuffer creates a blank panel-sized framebuffer.
func NewFramebuffer(delay time.Duration) *Framebuffer {
	img := image.NewRGBA(image.Rect(0, 0, PanelWidth, PanelHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	return &Framebuffer{img: img, delay: delay}
}

func (fb *Framebuffer) FrameDelay() time.Duration {
	return fb.delay
}

// Present renders f, replacing the previous image.
func (fb *Framebuffer) Present(f Frame) error {
	img := image.NewRGBA(image.Rect(0, 0, PanelWidth, PanelHeight))
	render(img, f)

	fb.mu.Lock()
	fb.img = img
	fb.last = f
	fb.frames++
	fb.mu.Unlock()
	return nil
}

// Last returns the most recently presented frame.
func (fb *Framebuffer) Last() Frame {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.last
}

// Frames returns how many frames have been presented.
func (fb *Framebuffer) Frames() uint64 {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.frames
}

// PNG encodes the current image.
func (fb *Framebuffer) PNG() ([]byte, error) {
	fb.mu.RLock()
	img := fb.img
	fb.mu.RUnlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Image returns the current image. Callers must not modify it.
func (fb *Framebuffer) Image() image.Image {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.img
}

func render(img *image.RGBA, f Frame) {
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	white := ColorWhite.RGBA()
	grey := ColorGrey.RGBA()

	drawText(img, 8, 20, f.Date+" "+f.Weekday, white, 1)
	drawSignal(img, PanelWidth-36, 8, f.Signal)

	drawText(img, 8, 80, f.Clock, white, 3)
	drawText(img, 8+5*7*3+4, 80, f.Seconds, grey, 2)

	drawText(img, 8, 120, "TEMP", grey, 1)
	drawText(img, 8, 150, f.Temperature, f.TemperatureColor.RGBA(), 2)
	drawText(img, 8, 175, "HUM", grey, 1)
	drawText(img, 48, 175, f.Humidity, f.HumidityColor.RGBA(), 1)
	drawText(img, 96, 175, "UV", grey, 1)
	drawText(img, 120, 175, f.UV, f.UVColor.RGBA(), 1)

	drawText(img, 8, 215, "NTP  "+f.NextSync, grey, 1)
	drawText(img, 8, 232, "WX   "+f.NextWeather, grey, 1)
	drawText(img, 8, 249, "UP   "+f.Uptime, grey, 1)
	drawText(img, 8, 275, f.Address, white, 1)

	if f.Status != "" {
		drawText(img, 8, 305, f.Status, f.StatusColor.RGBA(), 1)
	}
}

// drawText draws s with its baseline at (x, y), scaled by an integer factor.
func drawText(dst *image.RGBA, x, y int, s string, c color.Color, scale int) {
	if s == "" {
		return
	}
	if scale <= 1 {
		d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face, Dot: fixed.P(x, y)}
		d.DrawString(s)
		return
	}

	w := font.MeasureString(face, s).Ceil()
	h := face.Ascent + face.Descent
	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{Dst: tmp, Src: image.NewUniform(c), Face: face, Dot: fixed.P(0, face.Ascent)}
	d.DrawString(s)

	r := image.Rect(x, y-face.Ascent*scale, x+w*scale, y+face.Descent*scale)
	xdraw.NearestNeighbor.Scale(dst, r, tmp, tmp.Bounds(), xdraw.Over, nil)
}

// drawSignal draws three ascending bars.
func drawSignal(dst *image.RGBA, x, y int, bars [3]Color) {
	for i, c := range bars {
		h := 4 * (i + 1)
		r := image.Rect(x+i*9, y+12-h, x+i*9+6, y+12)
		draw.Draw(dst, r, image.NewUniform(c.RGBA()), image.Point{}, draw.Src)
	}
}

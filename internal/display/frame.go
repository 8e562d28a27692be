package display

import "time"

// Frame is everything the panel shows. It carries only formatted text and
// palette colors, never raw values.
type Frame struct {
	Clock   string `json:"clock"`
	Seconds string `json:"seconds"`
	Date    string `json:"date"`
	Weekday string `json:"weekday"`

	Temperature      string `json:"temperature"`
	TemperatureColor Color  `json:"temperatureColor"`
	Humidity         string `json:"humidity"`
	HumidityColor    Color  `json:"humidityColor"`
	UV               string `json:"uv"`
	UVColor          Color  `json:"uvColor"`

	NextSync    string `json:"nextSync"`
	NextWeather string `json:"nextWeather"`
	Uptime      string `json:"uptime"`

	Address string   `json:"address"`
	Signal  [3]Color `json:"signal"`

	// Status is empty in normal operation; the boot sequence and the fatal
	// halt screen use it.
	Status      string `json:"status,omitempty"`
	StatusColor Color  `json:"statusColor,omitempty"`
}

// BlankWeather fills the weather fields with placeholders.
func (f *Frame) BlankWeather() {
	f.Temperature, f.Humidity, f.UV = noValue, noValue, noValue
	f.TemperatureColor, f.HumidityColor, f.UVColor = ColorGrey, ColorGrey, ColorGrey
}

// Sink consumes frames. FrameDelay is the pause the refresh loop takes
// after presenting each frame.
type Sink interface {
	Present(f Frame) error
	FrameDelay() time.Duration
}

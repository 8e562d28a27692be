package display

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/i474232898/weather-clock/internal/netmon"
)

const (
	noValue   = "--"
	noAddress = "---.---.---.---"
)

// ClockText formats hours and minutes, e.g. "07:05".
func ClockText(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// SecondsText formats the seconds field, e.g. "09".
func SecondsText(t time.Time) string {
	return fmt.Sprintf("%02d", t.Second())
}

// DateText formats the date, e.g. "2024-05-01".
func DateText(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// WeekdayText returns the upper-case three-letter weekday, e.g. "WED".
func WeekdayText(t time.Time) string {
	return strings.ToUpper(t.Weekday().String()[:3])
}

// CountdownText formats a number of seconds as HH:MM:SS.
func CountdownText(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// MinSecText formats a number of seconds as MM:SS.
func MinSecText(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// AddressText pads every IPv4 octet to three digits, e.g. "192.168.001.007".
func AddressText(addr string) string {
	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return noAddress
	}
	return fmt.Sprintf("%03d.%03d.%03d.%03d", ip[0], ip[1], ip[2], ip[3])
}

// TemperatureText formats a temperature with one decimal and its unit suffix.
func TemperatureText(v float64, suffix string) string {
	return fmt.Sprintf("%.1f%s", v, suffix)
}

// HumidityText formats relative humidity, e.g. "45%".
func HumidityText(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// UVText formats the UV index with one decimal.
func UVText(uvi float64) string {
	return fmt.Sprintf("%.1f", uvi)
}

// SignalColors maps indicator segments to palette colors.
func SignalColors(p [3]netmon.Level) [3]Color {
	var out [3]Color
	for i, l := range p {
		switch l {
		case netmon.LevelGood:
			out[i] = ColorGreen
		case netmon.LevelFair:
			out[i] = ColorYellow
		default:
			out[i] = ColorRed
		}
	}
	return out
}

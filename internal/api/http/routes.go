package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-clock/internal/boot"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/led"
	"github.com/i474232898/weather-clock/internal/scheduler"
	"github.com/i474232898/weather-clock/internal/store"
	"github.com/i474232898/weather-clock/internal/weather"
)

var validate = validator.New()

// Device is the read-only view of the running clock the API mirrors.
type Device struct {
	SessionID string
	Location  weather.Location
	Boot      *boot.Machine
	Loop      *scheduler.Loop
	History   weather.History
	Screen    *display.Framebuffer
	LED       *led.VirtualStrip
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, dev *Device) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"session": dev.SessionID,
			"boot":    dev.Boot.Status(),
		}
		if dev.Loop != nil {
			resp["state"] = dev.Loop.Snapshot()
		}
		if dev.LED != nil {
			resp["led"] = dev.LED.Color().String()
		}
		return c.JSON(resp)
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		if dev.Loop == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "device is not running")
		}
		st := dev.Loop.Snapshot().Weather
		if !st.HasSample {
			return fiber.NewError(fiber.StatusNotFound, "no weather data yet")
		}
		return c.JSON(fiber.Map{
			"location":  dev.Location,
			"sample":    st.Sample,
			"lastError": st.LastError,
		})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if dev.History == nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather history kept")
		}
		samples, err := dev.History.GetRange(dev.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"location": dev.Location,
			"from":     req.From,
			"to":       req.To,
			"samples":  samples,
		})
	})

	v1.Get("/display", func(c *fiber.Ctx) error {
		if dev.Screen == nil {
			return fiber.NewError(fiber.StatusNotFound, "no framebuffer")
		}
		return c.JSON(dev.Screen.Last())
	})

	v1.Get("/display.png", func(c *fiber.Ctx) error {
		if dev.Screen == nil {
			return fiber.NewError(fiber.StatusNotFound, "no framebuffer")
		}
		data, err := dev.Screen.PNG()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode frame")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(data)
	})
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/weather-clock/internal/api/http"
	"github.com/i474232898/weather-clock/internal/boot"
	"github.com/i474232898/weather-clock/internal/clock"
	"github.com/i474232898/weather-clock/internal/common"
	"github.com/i474232898/weather-clock/internal/config"
	"github.com/i474232898/weather-clock/internal/display"
	"github.com/i474232898/weather-clock/internal/led"
	"github.com/i474232898/weather-clock/internal/netmon"
	"github.com/i474232898/weather-clock/internal/scheduler"
	"github.com/i474232898/weather-clock/internal/store"
	"github.com/i474232898/weather-clock/internal/telemetry"
	"github.com/i474232898/weather-clock/internal/weather"
	"github.com/i474232898/weather-clock/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sessionID := uuid.NewString()
	log.Printf("INFO: weather-clock starting, session %s, location %s", sessionID, cfg.Location.Key())

	telemetry.Register()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	clk := clock.New(cfg.NTPServer, cfg.NTPTimeout, cfg.Timezone)

	geo, prov := buildBackends(cfg, httpClient)
	cache := store.NewFileCache(cfg.CacheDir)
	history := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	service := weather.NewService(cfg.Location, cfg.Units, geo, prov, cache, history, clk)

	monitor := netmon.NewMonitor(netmon.NewLinuxProber(cfg.Interface))
	screen := display.NewFramebuffer(cfg.FrameDelay)

	strip := &led.VirtualStrip{}
	animator := led.NewAnimator(strip, uint8(cfg.LEDBrightness))
	ledRunner := led.NewRunner(animator, cfg.LEDInterval)
	if err := ledRunner.Start(); err != nil {
		log.Fatalf("failed to start led runner: %v", err)
	}
	defer ledRunner.Stop()

	loop := scheduler.New(scheduler.Config{
		NTPSyncInterval:  cfg.NTPSyncInterval,
		WeatherInterval:  cfg.WeatherInterval,
		ConnPollInterval: cfg.ConnPollInterval,
		AuxInterval:      cfg.AuxInterval,
		NetworkTimeout:   cfg.HTTPTimeout,
	}, clk, service, monitor, screen)

	machine := boot.NewMachine()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp()
	httpapi.RegisterRoutes(app, &httpapi.Device{
		SessionID: sessionID,
		Location:  cfg.Location,
		Boot:      machine,
		Loop:      loop,
		History:   history,
		Screen:    screen,
		LED:       strip,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	defer shutdown(app)

	steps := bootSteps(cfg, cache, service, loop, screen)
	if err := machine.Run(ctx, steps...); err != nil {
		machine.Halt(ctx, screen, animator)
		shutdown(app)
		ledRunner.Stop()
		os.Exit(1)
	}

	log.Printf("INFO: boot complete, refreshing every %s", cfg.WeatherInterval)
	if err := loop.Run(ctx); err != nil {
		log.Printf("ERROR: refresh loop: %v", err)
	}
}

func buildBackends(cfg *config.AppConfig, client *http.Client) (weather.Geocoder, weather.Provider) {
	var geo weather.Geocoder
	switch cfg.Geocoder {
	case "google":
		geo = providers.NewGoogleGeocoder(cfg.GoogleAPIKey)
	default:
		geo = providers.NewOpenWeatherGeocoder(client, cfg.OpenWeatherAPIKey)
	}

	var prov weather.Provider
	switch cfg.WeatherProvider {
	case "weatherapi":
		prov = providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey)
	case "openmeteo":
		prov = providers.NewOpenMeteoProvider(client)
	default:
		prov = providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey)
	}

	log.Printf("INFO: using geocoder %s and provider %s", geo.Name(), prov.Name())
	return geo, prov
}

// bootSteps lists the start-up sequence. Storage, network attach and
// coordinate resolution are fatal; everything else degrades.
func bootSteps(cfg *config.AppConfig, cache *store.FileCache, service *weather.Service, loop *scheduler.Loop, screen display.Sink) []boot.Step {
	st := loop.State()

	return []boot.Step{
		{
			Name: "storage",
			Run: func(context.Context) error {
				showStatus(screen, "mounting storage")
				return cache.Check()
			},
		},
		{
			Name: "network",
			Run: func(ctx context.Context) error {
				showStatus(screen, "connecting to "+cfg.Interface)
				return waitForNetwork(ctx, loop, cfg.BootConnectTimeout, cfg.ConnPollInterval)
			},
		},
		{
			Name:     "time sync",
			Optional: true,
			Run: func(ctx context.Context) error {
				showStatus(screen, "syncing time")
				return loop.Resync(ctx)
			},
		},
		{
			Name:     "cached weather",
			Optional: true,
			Run: func(context.Context) error {
				if !service.LoadCached(&st.Weather) {
					return errors.New("no usable cached sample")
				}
				return nil
			},
		},
		{
			Name: "coordinates",
			Run: func(ctx context.Context) error {
				showStatus(screen, "locating "+cfg.Location.City)
				ctx, cancel := context.WithTimeout(ctx, cfg.HTTPTimeout)
				defer cancel()
				coords, err := service.ResolveCoordinates(ctx)
				if err != nil {
					return err
				}
				st.Weather.Coordinates = &coords
				return nil
			},
		},
		{
			Name:     "weather",
			Optional: true,
			Run: func(ctx context.Context) error {
				showStatus(screen, "fetching weather")
				return loop.RefreshWeather(ctx)
			},
		},
	}
}

// waitForNetwork polls connectivity until the interface has an address or
// the timeout passes.
func waitForNetwork(ctx context.Context, loop *scheduler.Loop, timeout, every time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		loop.PollConnectivity()
		if loop.State().Conn.Connected {
			log.Printf("INFO: network up, address %s", loop.State().Conn.Address)
			return nil
		}
		if time.Now().After(deadline) {
			return common.NewError(common.KindNotConnected, fmt.Errorf("no address after %s", timeout))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(every):
		}
	}
}

func showStatus(screen display.Sink, msg string) {
	f := display.Frame{Status: msg, StatusColor: display.ColorWhite}
	f.BlankWeather()
	if err := screen.Present(f); err != nil {
		log.Printf("boot: present failed: %v", err)
	}
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-clock",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-clock",
		})
	})
	return app
}

func shutdown(app *fiber.App) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

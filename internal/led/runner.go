package led

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Runner steps an Animator on its own cadence, independent of the refresh
// loop.
type Runner struct {
	scheduler *gocron.Scheduler
	animator  *Animator
	interval  time.Duration
}

// NewRunner creates a new Runner.
func NewRunner(animator *Animator, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	animator.SetStepInterval(interval)

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Runner{
		scheduler: s,
		animator:  animator,
		interval:  interval,
	}
}

// Start schedules the animation job and starts the underlying scheduler.
func (r *Runner) Start() error {
	_, err := r.scheduler.Every(r.interval).Do(func() {
		if err := r.animator.Step(); err != nil {
			log.Printf("led: step failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future steps.
func (r *Runner) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}

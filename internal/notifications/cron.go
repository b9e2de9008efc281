package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// CronSchedule wires the Ticker's four periodic jobs (plus the implicit
// unsnooze sweep) onto a single gocron scheduler. One process runs one
// CronSchedule; it owns the scheduler's lifetime.
type CronSchedule struct {
	scheduler gocron.Scheduler
	log       zerolog.Logger
}

// NewCronSchedule builds and starts the scheduler, registering every
// periodic reminder job:
//   - morning ticker: daily per morningCron (default 09:00)
//   - day-of ticker: every dayOfInterval (default 15 minutes)
//   - carry-over ticker: daily
//   - auto-dismissal ticker: hourly
//   - unsnooze sweep: every dayOfInterval, alongside the day-of ticker
func NewCronSchedule(t *Ticker, morningCron string, dayOfInterval time.Duration, log zerolog.Logger) (*CronSchedule, error) {
	if morningCron == "" {
		morningCron = "0 9 * * *"
	}
	if dayOfInterval <= 0 {
		dayOfInterval = 15 * time.Minute
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("notifications: create scheduler: %w", err)
	}

	cs := &CronSchedule{scheduler: s, log: log.With().Str("component", "notifications.cron").Logger()}

	jobs := []struct {
		name string
		def  gocron.JobDefinition
		run  func(context.Context) error
	}{
		{"morning-ticker", gocron.CronJob(morningCron, false), t.RunMorning},
		{"day-of-ticker", gocron.DurationJob(dayOfInterval), t.RunDayOf},
		{"carry-over-ticker", gocron.CronJob("0 0 * * *", false), t.RunCarryOver},
		{"auto-dismiss-ticker", gocron.DurationJob(time.Hour), t.RunAutoDismiss},
		{"unsnooze-sweep", gocron.DurationJob(dayOfInterval), t.RunUnsnooze},
	}

	for _, j := range jobs {
		name := j.name
		run := j.run
		_, err := s.NewJob(j.def, gocron.NewTask(func() {
			if err := run(context.Background()); err != nil {
				cs.log.Error().Err(err).Str("job", name).Msg("ticker run failed")
			}
		}), gocron.WithName(name))
		if err != nil {
			return nil, fmt.Errorf("notifications: register job %s: %w", name, err)
		}
	}

	s.Start()
	return cs, nil
}

// Stop shuts down the scheduler, waiting for any in-flight job to finish.
func (cs *CronSchedule) Stop() error {
	return cs.scheduler.Shutdown()
}

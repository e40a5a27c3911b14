package backup

import (
	"time"

	"github.com/go-co-op/gocron"

	applog "github.com/Estelle64/pluie-app/internal/log"
)

// Scheduler periodically re-evaluates backup staleness and surfaces the
// reminder in the log, the way the page reload did in the browser app.
type Scheduler struct {
	scheduler *gocron.Scheduler
	tracker   *Tracker
	interval  time.Duration
	logger    *applog.Logger
}

// NewScheduler creates a reminder scheduler checking every interval.
func NewScheduler(tracker *Tracker, interval time.Duration, logger *applog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		tracker:   tracker,
		interval:  interval,
		logger:    logger.WithComponent(applog.ComponentBackup),
	}
}

// Start schedules the periodic check and runs the scheduler in the
// background. The first check fires immediately.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(func() {
		switch r := s.tracker.Check(); r {
		case ReminderNone:
			s.logger.Debug("Backup check passed")
		default:
			s.logger.Warn("Backup reminder", "message", r.Message())
		}
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future checks.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

package registrations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"
)

// ReminderJob periodically records trip.reminder events for approved
// registrations whose trip starts a configured number of days from today.
// Each (registration, lead) pair is recorded at most once.
type ReminderJob struct {
	store    ReminderStore
	interval time.Duration
	leadDays []int
	log      *logger.Logger
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewReminderJob(store ReminderStore, cfg config.ReminderConfig) *ReminderJob {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderJob{
		store:    store,
		interval: interval,
		leadDays: cfg.LeadDays,
		log:      logger.GetDefault().WithComponent("reminders"),
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

func (j *ReminderJob) Start(ctx context.Context) {
	j.wg.Add(1)
	go j.loop(ctx)
	j.log.Info("trip reminder job started",
		slog.Duration("interval", j.interval),
		slog.Any("lead_days", j.leadDays))
}

func (j *ReminderJob) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
	})
	j.wg.Wait()
}

func (j *ReminderJob) loop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.tick(ctx)
	for {
		select {
		case <-ticker.C:
			j.tick(ctx)
		case <-j.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (j *ReminderJob) tick(ctx context.Context) {
	n, err := j.RunOnce(ctx)
	if err != nil {
		j.log.Error("trip reminder run failed", slog.Any("error", err))
		return
	}
	if n > 0 {
		j.log.Info("trip reminders recorded", slog.Int("count", n))
	}
}

// RunOnce records reminders due today and returns how many were new
func (j *ReminderJob) RunOnce(ctx context.Context) (int, error) {
	now := j.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	recorded := 0
	for _, lead := range j.leadDays {
		from := today.AddDate(0, 0, lead)
		candidates, err := j.store.ApprovedStartingBetween(ctx, from, from.AddDate(0, 0, 1))
		if err != nil {
			return recorded, err
		}
		for _, c := range candidates {
			created, err := j.store.RecordReminder(ctx, reminderKey(c, lead), outbox.TripReminderPayload{
				RegistrationID: c.RegistrationID,
				TripID:         c.TripID,
				TripTitle:      c.TripTitle,
				Destination:    c.Destination,
				UserID:         c.UserID,
				StartDate:      c.StartDate,
				DaysUntil:      lead,
			})
			if err != nil {
				return recorded, err
			}
			if created {
				recorded++
			}
		}
	}
	return recorded, nil
}

func reminderKey(c ReminderCandidate, lead int) string {
	return fmt.Sprintf("%s:%s:%d", outbox.EventTripReminder, c.RegistrationID, lead)
}

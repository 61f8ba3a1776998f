// Package reminder implements the periodic renewal sweep. Its one guarantee
// is idempotency: for a fixed (farm, threshold) pair at most one reminder
// goes out per calendar day, across repeated sweeps and process restarts,
// because the mark that gates each dispatch is persisted with the farm.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/dates"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

// Sender delivers reminder texts to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// DefaultThresholds is the day-offset set used when none is configured.
var DefaultThresholds = []int{3, 2, 1, 0}

type Scheduler struct {
	store      *store.Store
	sender     Sender
	thresholds []int
	logger     logging.Logger
}

func NewScheduler(st *store.Store, sender Sender, thresholds []int, logger logging.Logger) *Scheduler {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	return &Scheduler{store: st, sender: sender, thresholds: thresholds, logger: logger}
}

// Sweep evaluates every reminder-enabled farm against now and dispatches
// the reminders whose threshold is crossed today and not yet marked. It
// returns how many reminders were sent.
//
// A delivery failure for one farm is logged and leaves its mark unset, so
// the next sweep the same day retries that farm; it never blocks the rest
// of the sweep. Marks are persisted as soon as they are set, so a crash
// mid-sweep cannot re-send what already went out.
func (s *Scheduler) Sweep(ctx context.Context, now time.Time) int {
	agg := s.store.Load(ctx)
	fired := 0

	for _, farm := range agg.Farms {
		if !farm.ReminderEnabled || farm.ChatID == 0 {
			continue
		}

		renewal := dates.NextRenewal(farm.RenewalDay, now)
		diff := dates.DaysUntil(now, renewal)

		for _, threshold := range s.thresholds {
			if diff != threshold || farm.FiredOn(threshold, now) {
				continue
			}

			if err := s.sender.SendText(ctx, farm.ChatID, reminderText(farm, threshold)); err != nil {
				s.logger.Error(ctx, "reminder delivery failed",
					"farm", farm.Name, "threshold", threshold, "error", err)
				continue
			}

			farm.MarkFired(threshold, now, renewal)
			if err := s.store.Save(ctx, agg); err != nil {
				s.logger.Error(ctx, "persisting reminder mark",
					"farm", farm.Name, "threshold", threshold, "error", err)
			}
			fired++
		}
	}

	s.logger.Debug(ctx, "sweep finished", "fired", fired, "farms", len(agg.Farms))
	return fired
}

func reminderText(f *models.Farm, threshold int) string {
	switch threshold {
	case 0:
		return fmt.Sprintf("🚨 <b>%s</b> is due for payment TODAY!", f.Name)
	case 1:
		return fmt.Sprintf("🔔 <b>%s</b> renews in <b>1 day</b>.", f.Name)
	default:
		return fmt.Sprintf("⏰ <b>%s</b> renews in <b>%d days</b>.", f.Name, threshold)
	}
}

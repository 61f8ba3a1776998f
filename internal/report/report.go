// Package report builds the one-shot query responses: statistics, due-today
// and next-7-days listings, and the exportable snapshots. Everything here is
// pure over an already loaded aggregate; callers send the results.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/dates"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

// upcomingWindowDays is the horizon of the stats and weekly listings.
const upcomingWindowDays = 7

type upcoming struct {
	farm    *models.Farm
	renewal time.Time
	days    int
}

func upcomingWithin(agg *store.Aggregate, now time.Time, window int) []upcoming {
	var res []upcoming
	for _, f := range agg.Farms {
		renewal := dates.NextRenewal(f.RenewalDay, now)
		if d := dates.DaysUntil(now, renewal); d >= 0 && d <= window {
			res = append(res, upcoming{farm: f, renewal: renewal, days: d})
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].days < res[j].days })
	return res
}

func dueLabel(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// Stats summarizes the whole portfolio: counts, monthly total, and what is
// due within the next 7 days.
func Stats(agg *store.Aggregate, now time.Time) string {
	if len(agg.Farms) == 0 {
		return "📭 No data to summarize yet."
	}

	var total int64
	active := 0
	for _, f := range agg.Farms {
		total += f.Price
		if f.ReminderEnabled {
			active++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `📊 <b>Statistics</b>

📦 Farms: <b>%d</b>
💰 Monthly total: <b>%s</b>
🔔 Reminders on: <b>%d/%d</b>

⏰ Due within %d days:`, len(agg.Farms), models.FormatPrice(total), active, len(agg.Farms), upcomingWindowDays)

	up := upcomingWithin(agg, now, upcomingWindowDays)
	if len(up) == 0 {
		b.WriteString(" none.")
		return b.String()
	}
	b.WriteString("\n\n")
	for _, u := range up {
		fmt.Fprintf(&b, "• %s - %s - %s\n", u.farm.Name, dueLabel(u.days), models.FormatPrice(u.farm.Price))
	}
	return b.String()
}

// Daily lists the farms whose renewal resolves to today.
func Daily(agg *store.Aggregate, now time.Time) string {
	if len(agg.Farms) == 0 {
		return "📭 No data yet."
	}

	today := now.Format(models.InputDateLayout)
	var due []*models.Farm
	for _, f := range agg.Farms {
		if dates.DaysUntil(now, dates.NextRenewal(f.RenewalDay, now)) == 0 {
			due = append(due, f)
		}
	}
	if len(due) == 0 {
		return fmt.Sprintf("📅 Nothing is due today (%s).", today)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>Due today (%s)</b>\n\n", today)
	for _, f := range due {
		fmt.Fprintf(&b, "• %s - %s - %s\n", f.Name, models.FormatPrice(f.Price), f.OwnerEmail)
	}
	return b.String()
}

// Weekly lists everything due within the next 7 days, soonest first.
func Weekly(agg *store.Aggregate, now time.Time) string {
	if len(agg.Farms) == 0 {
		return "📭 No data yet."
	}

	up := upcomingWithin(agg, now, upcomingWindowDays)
	if len(up) == 0 {
		return "📆 Nothing is due in the next 7 days."
	}

	var b strings.Builder
	b.WriteString("📆 <b>Due in the next 7 days</b>\n\n")
	for _, u := range up {
		fmt.Fprintf(&b, "• %s - %s - %s (day %d)\n",
			u.farm.Name, models.FormatPrice(u.farm.Price), dueLabel(u.days), u.renewal.Day())
	}
	return b.String()
}

package flows

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

// historyDisplayCap bounds how many entries a history listing shows; the
// full log stays in storage.
const historyDisplayCap = 20

func (m *Machine) handleHistory(agg *store.Aggregate, text string) Effect {
	farm := agg.FindFarm(text)
	if farm == nil {
		return invalid(fmt.Sprintf("❌ <b>%s</b> not found. Enter the farm name:", text))
	}
	return complete(historyText(farm))
}

func historyText(f *models.Farm) string {
	if len(f.History) == 0 {
		return fmt.Sprintf("🕒 <b>Reminder history - %s</b>\n\nNo reminders sent yet.", f.Name)
	}

	entries := make([]models.HistoryEntry, len(f.History))
	copy(entries, f.History)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	if len(entries) > historyDisplayCap {
		entries = entries[:historyDisplayCap]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🕒 <b>Reminder history - %s</b>\n\n", f.Name)
	for _, h := range entries {
		fmt.Fprintf(&b, "• %s: %s\n", models.FormatDate(h.Date), models.ThresholdLabel(h.Kind))
	}
	return b.String()
}

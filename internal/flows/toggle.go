package flows

import (
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

func (m *Machine) handleToggle(agg *store.Aggregate, text string) Effect {
	farm := agg.FindFarm(text)
	if farm == nil {
		return invalid(fmt.Sprintf("❌ <b>%s</b> not found. Enter the farm name:", text))
	}

	farm.ReminderEnabled = !farm.ReminderEnabled
	if farm.ReminderEnabled {
		return complete(fmt.Sprintf("✅ 🔔 Reminders ON for <b>%s</b>.", farm.Name))
	}
	return complete(fmt.Sprintf("✅ 🔕 Reminders OFF for <b>%s</b>.", farm.Name))
}

package flows

import (
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

func (m *Machine) handleView(agg *store.Aggregate, text string) Effect {
	farm := agg.FindFarm(text)
	if farm == nil {
		return invalid(fmt.Sprintf("❌ <b>%s</b> not found. Enter the farm name:", text))
	}

	eff := complete(farmDetail(farm))
	eff.Buttons = copyEmailButtons(farm)
	return eff
}

func farmDetail(f *models.Farm) string {
	start := models.FormatDate(f.StartDate)
	if start == "" {
		start = "(none)"
	}

	var members string
	if len(f.Members) == 0 {
		members = "   (none)\n"
	} else {
		for i, m := range f.Members {
			members += fmt.Sprintf("   %d. %s\n", i+1, m)
		}
	}

	reminders := "🔔 on"
	if !f.ReminderEnabled {
		reminders = "🔕 off"
	}

	return fmt.Sprintf(`📦 <b>Details: %s</b>

👤 <b>Owner:</b> %s
👥 <b>Members:</b>
%s📅 <b>Start:</b> %s
📅 <b>Renewal:</b> day %d of every month
💰 <b>Price:</b> %s
🔔 <b>Reminders:</b> %s

🔐 Passwords and 2FA are NOT shown here.
Use /get_login to view a stored email login.
`, f.Name, f.OwnerEmail, members, start, f.RenewalDay, models.FormatPrice(f.Price), reminders)
}

// copyEmailButtons builds one copy button per email so the user can tap to
// have the address echoed back for copying.
func copyEmailButtons(f *models.Farm) [][]Button {
	var rows [][]Button
	rows = append(rows, []Button{{Label: "📋 Copy owner email", Payload: "ce|" + f.OwnerEmail}})
	for _, m := range f.Members {
		rows = append(rows, []Button{{Label: "📋 Copy " + m, Payload: "ce|" + m}})
	}
	return rows
}

package flows

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
	"github.com/google/uuid"
)

// maxMembers is how many member emails the add flow asks for.
const maxMembers = 5

func (m *Machine) handleAdd(chatID int64, agg *store.Aggregate, st *models.ConversationState, text string) Effect {
	s := st.Add

	switch s.Step {
	case models.AddStepName:
		if text == "" {
			return invalid("❌ The name cannot be empty. Enter the <b>name</b>:")
		}
		if agg.NameTaken(text) {
			return invalid(fmt.Sprintf("❌ <b>%s</b> already exists. Enter a different name:", text))
		}
		s.Farm.Name = text
		s.Step = models.AddStepOwner
		return prompt(fmt.Sprintf("✅ Name: <b>%s</b>\n\nEnter the <b>owner email</b>:", s.Farm.Name))

	case models.AddStepOwner:
		if text == "" {
			return invalid("❌ The owner email cannot be empty. Enter the <b>owner email</b>:")
		}
		s.Farm.OwnerEmail = text
		s.Farm.Members = []string{}
		s.MemberOrdinal = 1
		s.Step = models.AddStepMember
		return prompt("Enter <b>member email 1</b> (or type <code>skip</code> if none):")

	case models.AddStepMember:
		if !isSkip(text) && text != "" {
			s.Farm.Members = append(s.Farm.Members, text)
		}
		if s.MemberOrdinal < maxMembers {
			s.MemberOrdinal++
			return prompt(fmt.Sprintf("Enter <b>member email %d</b> (or <code>skip</code>):", s.MemberOrdinal))
		}
		s.Step = models.AddStepStart
		return prompt("Enter the <b>start date</b> (DD/MM/YYYY):")

	case models.AddStepStart:
		iso, err := parseInputDate(text)
		if err != nil {
			return invalid("❌ Wrong format, use DD/MM/YYYY.")
		}
		s.Farm.StartDate = iso
		s.Step = models.AddStepRenewal
		return prompt(fmt.Sprintf("✅ Start date: <b>%s</b>\n\nEnter the <b>monthly renewal day</b> (1-31):", text))

	case models.AddStepRenewal:
		day, err := parseDay(text)
		if err != nil {
			return invalid("❌ Enter a number between 1 and 31.")
		}
		s.Farm.RenewalDay = day
		s.Step = models.AddStepPrice
		return prompt(fmt.Sprintf("✅ Renewal: <b>day %d</b>\n\nEnter the <b>price</b> (e.g. 50000):", day))

	case models.AddStepPrice:
		price, err := parsePrice(text)
		if err != nil {
			return invalid("❌ Enter a valid amount.")
		}
		farm := s.Farm
		farm.ID = uuid.NewString()
		farm.Price = price
		farm.ChatID = chatID
		farm.ReminderEnabled = true
		farm.Logins = map[string]models.LoginEntry{}
		farm.History = []models.HistoryEntry{}
		farm.Marks = map[int]string{}
		agg.Farms = append(agg.Farms, &farm)
		return complete(addSummary(&farm))
	}

	return invalid("❌ Unexpected input.")
}

func addSummary(f *models.Farm) string {
	var members strings.Builder
	if len(f.Members) == 0 {
		members.WriteString("   (none)\n")
	} else {
		for i, m := range f.Members {
			fmt.Fprintf(&members, "   %d. %s\n", i+1, m)
		}
	}

	return fmt.Sprintf(`✅ <b>Farm added!</b>

📦 <b>Name:</b> %s
👤 <b>Owner:</b> %s
👥 <b>Members:</b>
%s📅 <b>Start:</b> %s
📅 <b>Renewal:</b> day %d of every month
💰 <b>Price:</b> %s
`, f.Name, f.OwnerEmail, members.String(), models.FormatDate(f.StartDate), f.RenewalDay, models.FormatPrice(f.Price))
}

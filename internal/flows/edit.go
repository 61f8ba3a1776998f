package flows

import (
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

func (m *Machine) handleEdit(agg *store.Aggregate, st *models.ConversationState, text string) Effect {
	s := st.Edit

	if s.Step == models.EditStepSelect {
		farm := agg.FindFarm(text)
		if farm == nil {
			return invalid(fmt.Sprintf("❌ <b>%s</b> not found. Enter the farm name:", text))
		}
		s.FarmID = farm.ID
		s.Step = models.EditStepField
		return prompt("Choose the field to edit:\n1 - Owner email\n2 - Renewal day\n3 - Price\nEnter 1 / 2 / 3:")
	}

	// The farm can disappear mid-flow if another chat deletes it.
	farm := agg.FindFarmByID(s.FarmID)
	if farm == nil {
		return complete("❌ That farm no longer exists.")
	}

	switch s.Step {
	case models.EditStepField:
		switch text {
		case "1":
			s.Step = models.EditStepOwner
			return prompt("Enter the new owner email:")
		case "2":
			s.Step = models.EditStepRenewal
			return prompt("Enter the new renewal day (1-31):")
		case "3":
			s.Step = models.EditStepPrice
			return prompt("Enter the new price:")
		default:
			return invalid("❌ Enter 1 / 2 / 3.")
		}

	case models.EditStepOwner:
		if text == "" {
			return invalid("❌ The owner email cannot be empty. Enter the new owner email:")
		}
		farm.OwnerEmail = text
		return complete(fmt.Sprintf("✅ Updated the owner email of <b>%s</b>.", farm.Name))

	case models.EditStepRenewal:
		day, err := parseDay(text)
		if err != nil {
			return invalid("❌ Enter a number between 1 and 31.")
		}
		farm.RenewalDay = day
		return complete(fmt.Sprintf("✅ Updated the renewal day of <b>%s</b>.", farm.Name))

	case models.EditStepPrice:
		price, err := parsePrice(text)
		if err != nil {
			return invalid("❌ Enter a valid amount.")
		}
		farm.Price = price
		return complete(fmt.Sprintf("✅ Updated the price of <b>%s</b>.", farm.Name))
	}

	return invalid("❌ Unexpected input.")
}

package flows

import (
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

func (m *Machine) handleDelete(agg *store.Aggregate, text string) Effect {
	farm := agg.FindFarm(text)
	if farm == nil {
		return invalid(fmt.Sprintf("❌ <b>%s</b> not found. Enter the farm name:", text))
	}

	// Login entries and reminder history go with the farm.
	agg.DeleteFarm(farm.ID)
	return complete(fmt.Sprintf("✅ Deleted <b>%s</b>.", farm.Name))
}

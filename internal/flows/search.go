package flows

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

// handleSearch matches the keyword case-insensitively as a substring of the
// farm name, owner email, or any member email. Unlike the lookup steps of
// other flows, the search flow terminates whether or not anything matched.
func (m *Machine) handleSearch(agg *store.Aggregate, text string) Effect {
	kw := strings.ToLower(text)

	var results []*models.Farm
	for _, f := range agg.Farms {
		if matchesKeyword(f, kw) {
			results = append(results, f)
		}
	}

	if len(results) == 0 {
		return complete(fmt.Sprintf("❌ Nothing found for <b>%s</b>.", text))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 <b>Results (%d)</b>\n\n", len(results))
	for i, f := range results {
		fmt.Fprintf(&b, "<b>%d. %s</b>\n   👤 %s\n   📅 day %d\n   💰 %s\n\n",
			i+1, f.Name, f.OwnerEmail, f.RenewalDay, models.FormatPrice(f.Price))
	}
	return complete(b.String())
}

func matchesKeyword(f *models.Farm, kw string) bool {
	if strings.Contains(strings.ToLower(f.Name), kw) || strings.Contains(strings.ToLower(f.OwnerEmail), kw) {
		return true
	}
	for _, m := range f.Members {
		if strings.Contains(strings.ToLower(m), kw) {
			return true
		}
	}
	return false
}

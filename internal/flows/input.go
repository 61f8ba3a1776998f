package flows

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/common"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
)

// skipSentinel bypasses an optional step, recording an empty value.
const skipSentinel = "skip"

func isSkip(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), skipSentinel)
}

// parseDay validates a renewal day-of-month in [1,31].
func parseDay(text string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || day < 1 || day > 31 {
		return 0, common.ErrValidation
	}
	return day, nil
}

// parsePrice accepts digits with optional thousands separators ("50,000",
// "50.000") and normalizes to a non-negative integer amount.
func parsePrice(text string) (int64, error) {
	cleaned := strings.NewReplacer(",", "", ".", "", " ", "").Replace(strings.TrimSpace(text))
	price, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || price < 0 {
		return 0, common.ErrValidation
	}
	return price, nil
}

// parseInputDate parses the user-facing DD/MM/YYYY form into the storage
// format.
func parseInputDate(text string) (string, error) {
	d, err := time.Parse(models.InputDateLayout, strings.TrimSpace(text))
	if err != nil {
		return "", common.ErrValidation
	}
	return d.Format(models.DateLayout), nil
}

// parseOrdinal validates a 1-based list selection against a list of size n.
func parseOrdinal(text string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || i < 1 || i > n {
		return 0, common.ErrValidation
	}
	return i, nil
}

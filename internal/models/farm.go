// Package models defines the persisted entities of the farmkeeper aggregate.
package models

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage format for calendar dates.
// InputDateLayout is what users type.
const (
	DateLayout      = "2006-01-02"
	InputDateLayout = "02/01/2006"
)

// LoginEntry is the encrypted credential bundle for one email inside one
// farm. Ciphertext is produced and consumed exclusively by the vault.
type LoginEntry struct {
	Ciphertext string `json:"enc"`
	JoinDate   string `json:"join_date,omitempty"`
	UsageDays  int    `json:"usage_days,omitempty"`
	Profile    string `json:"profile,omitempty"`
}

// HistoryEntry records one dispatched reminder.
type HistoryEntry struct {
	Kind        string `json:"type"`
	Date        string `json:"date"`
	RenewalDate string `json:"renewal_date"`
}

// Farm is a billed entity with a recurring monthly renewal.
//
// Marks holds the per-threshold idempotency stamps: the last calendar day a
// reminder fired for that many-days-out threshold. It is the sole guard
// against double-firing within a day, so it must persist with the farm.
type Farm struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	OwnerEmail      string                `json:"owner_email"`
	Members         []string              `json:"members"`
	StartDate       string                `json:"start_date"`
	RenewalDay      int                   `json:"renewal_day"`
	Price           int64                 `json:"price"`
	ChatID          int64                 `json:"chat_id"`
	ReminderEnabled bool                  `json:"reminder_enabled"`
	Logins          map[string]LoginEntry `json:"email_logins"`
	History         []HistoryEntry        `json:"reminder_history"`
	Marks           map[int]string        `json:"reminder_marks"`
}

// Emails returns the owner email followed by the member emails, in the
// order list-selection steps present them.
func (f *Farm) Emails() []string {
	emails := make([]string, 0, len(f.Members)+1)
	emails = append(emails, f.OwnerEmail)
	emails = append(emails, f.Members...)
	return emails
}

// NameMatches reports whether name equals the farm name under the
// case-insensitive uniqueness rule.
func (f *Farm) NameMatches(name string) bool {
	return strings.EqualFold(f.Name, strings.TrimSpace(name))
}

// MarkFired stamps the idempotency mark for threshold on day and appends the
// matching history entry.
func (f *Farm) MarkFired(threshold int, day time.Time, renewal time.Time) {
	if f.Marks == nil {
		f.Marks = map[int]string{}
	}
	f.Marks[threshold] = day.Format(DateLayout)
	f.History = append(f.History, HistoryEntry{
		Kind:        ThresholdKind(threshold),
		Date:        day.Format(DateLayout),
		RenewalDate: renewal.Format(DateLayout),
	})
}

// FiredOn reports whether the reminder for threshold already fired on day.
func (f *Farm) FiredOn(threshold int, day time.Time) bool {
	return f.Marks[threshold] == day.Format(DateLayout)
}

// ThresholdKind names a reminder threshold for history entries: "0day",
// "1day", "3days" and so on.
func ThresholdKind(threshold int) string {
	switch threshold {
	case 0:
		return "0day"
	case 1:
		return "1day"
	default:
		return strconv.Itoa(threshold) + "days"
	}
}

// ThresholdLabel is the human-readable form used in history listings.
func ThresholdLabel(kind string) string {
	switch kind {
	case "0day":
		return "due day"
	case "1day":
		return "1 day before"
	case "2days":
		return "2 days before"
	case "3days":
		return "3 days before"
	default:
		return kind
	}
}

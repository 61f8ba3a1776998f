package report

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
)

func testAggregate() *store.Aggregate {
	return &store.Aggregate{
		Farms: []*models.Farm{
			{
				ID: "f1", Name: "Alpha", OwnerEmail: "owner@a.test",
				Members: []string{"m1@a.test", "m2@a.test"}, StartDate: "2024-01-15",
				RenewalDay: 15, Price: 1200000, ChatID: 42, ReminderEnabled: true,
			},
			{
				ID: "f2", Name: "Beta", OwnerEmail: "owner@b.test",
				StartDate: "2024-02-25", RenewalDay: 25, Price: 800000, ChatID: 42,
			},
		},
		States:      map[string]*models.ConversationState{},
		Credentials: map[string]json.RawMessage{},
	}
}

func TestStats(t *testing.T) {
	agg := testAggregate()
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	got := Stats(agg, now)
	require.Contains(t, got, "Farms: <b>2</b>")
	require.Contains(t, got, "2,000,000")
	require.Contains(t, got, "Reminders on: <b>1/2</b>")
	// Alpha renews on the 15th, one day out. Beta is outside the window.
	require.Contains(t, got, "Alpha - tomorrow")
	require.NotContains(t, got, "Beta")
}

func TestStatsEmpty(t *testing.T) {
	got := Stats(&store.Aggregate{}, time.Now())
	require.Contains(t, got, "No data")
}

func TestDaily(t *testing.T) {
	agg := testAggregate()

	due := Daily(agg, time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC))
	require.Contains(t, due, "Due today (15/03/2024)")
	require.Contains(t, due, "Alpha")
	require.NotContains(t, due, "Beta")

	quiet := Daily(agg, time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC))
	require.Contains(t, quiet, "Nothing is due today")
}

func TestWeekly(t *testing.T) {
	agg := testAggregate()

	got := Weekly(agg, time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC))
	require.Contains(t, got, "Alpha")
	require.NotContains(t, got, "Beta")

	// Both fall inside the window here, soonest first.
	agg.Farms[1].RenewalDay = 18
	got = Weekly(agg, time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC))
	if strings.Index(got, "Alpha") > strings.Index(got, "Beta") {
		t.Fatalf("expected Alpha before Beta:\n%s", got)
	}

	got = Weekly(agg, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	require.Contains(t, got, "Nothing is due")
}

func TestExportCSV(t *testing.T) {
	now := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)
	f, err := ExportCSV(testAggregate(), now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(f.Name, "farms_20240314_"))
	require.True(t, strings.HasSuffix(f.Name, ".csv"))

	rows, err := csv.NewReader(strings.NewReader(string(f.Content))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"name", "owner_email", "members", "start_date", "renewal_day", "price", "chat_id"}, rows[0])
	require.Equal(t, []string{"Alpha", "owner@a.test", "m1@a.test;m2@a.test", "2024-01-15", "15", "1200000", "42"}, rows[1])
}

func TestBackupJSON(t *testing.T) {
	agg := testAggregate()
	agg.Farms[0].Logins = map[string]models.LoginEntry{
		"m1@a.test": {Ciphertext: "b64cipher", JoinDate: "2024-01-15"},
	}

	now := time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC)
	f, err := BackupJSON(agg, now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(f.Name, "backup_20240314_"))

	var snapshot struct {
		ExportedAt string         `json:"exported_at"`
		Farms      []*models.Farm `json:"farms"`
	}
	require.NoError(t, json.Unmarshal(f.Content, &snapshot))
	require.Len(t, snapshot.Farms, 2)
	require.Equal(t, "b64cipher", snapshot.Farms[0].Logins["m1@a.test"].Ciphertext)
	// Only ciphertext leaves the store.
	require.NotContains(t, string(f.Content), "password")
}

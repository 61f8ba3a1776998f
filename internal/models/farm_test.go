package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFarm_Emails(t *testing.T) {
	f := &Farm{OwnerEmail: "owner@x.com", Members: []string{"a@x.com", "b@x.com"}}
	require.Equal(t, []string{"owner@x.com", "a@x.com", "b@x.com"}, f.Emails())

	solo := &Farm{OwnerEmail: "owner@x.com"}
	require.Equal(t, []string{"owner@x.com"}, solo.Emails())
}

func TestFarm_NameMatches(t *testing.T) {
	f := &Farm{Name: "Alpha Farm"}
	require.True(t, f.NameMatches("alpha farm"))
	require.True(t, f.NameMatches("  ALPHA FARM "))
	require.False(t, f.NameMatches("alpha"))
}

func TestFarm_MarkFired(t *testing.T) {
	f := &Farm{Name: "Alpha"}
	day := time.Date(2024, time.March, 28, 10, 0, 0, 0, time.UTC)
	renewal := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)

	require.False(t, f.FiredOn(3, day))
	f.MarkFired(3, day, renewal)
	require.True(t, f.FiredOn(3, day))
	require.False(t, f.FiredOn(2, day))
	require.False(t, f.FiredOn(3, day.AddDate(0, 0, 1)))

	require.Len(t, f.History, 1)
	require.Equal(t, HistoryEntry{Kind: "3days", Date: "2024-03-28", RenewalDate: "2024-03-31"}, f.History[0])
}

func TestThresholdKind(t *testing.T) {
	require.Equal(t, "0day", ThresholdKind(0))
	require.Equal(t, "1day", ThresholdKind(1))
	require.Equal(t, "2days", ThresholdKind(2))
	require.Equal(t, "7days", ThresholdKind(7))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1250000, "1,250,000"},
		{-50000, "-50,000"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, FormatPrice(tc.in))
	}
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "31/01/2024", FormatDate("2024-01-31"))
	require.Equal(t, "", FormatDate(""))
	require.Equal(t, "whenever", FormatDate("whenever"))
}

package flows

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/farmkeeper/internal/common"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
	"github.com/dmitrijs2005/farmkeeper/internal/vault"
	"github.com/stretchr/testify/require"
)

const testChat int64 = 42

func newTestMachine(t *testing.T) (*Machine, *store.Store) {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	st := store.New(filepath.Join(t.TempDir(), "farms.json"), logger)
	v, err := vault.New("test-secret")
	require.NoError(t, err)
	return NewMachine(st, v, logger), st
}

// feed runs the whole input sequence and returns the last effect.
func feed(t *testing.T, m *Machine, inputs ...string) Effect {
	t.Helper()
	var eff Effect
	var err error
	for _, in := range inputs {
		eff, err = m.Handle(context.Background(), testChat, in)
		require.NoError(t, err)
	}
	return eff
}

func startAdd(t *testing.T, m *Machine) {
	t.Helper()
	eff, err := m.Start(context.Background(), testChat, models.FlowAdd)
	require.NoError(t, err)
	require.Equal(t, KindPrompt, eff.Kind)
}

var addInputs = []string{"Alpha", "owner@x.com", "a@x.com", "skip", "skip", "skip", "skip", "15/01/2024", "31", "1,250,000"}

func createFarm(t *testing.T, m *Machine) {
	t.Helper()
	startAdd(t, m)
	eff := feed(t, m, addInputs...)
	require.Equal(t, KindComplete, eff.Kind)
}

func TestAddFlow_Complete(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	agg := st.Load(context.Background())
	require.Len(t, agg.Farms, 1)
	f := agg.Farms[0]
	require.NotEmpty(t, f.ID)
	require.Equal(t, "Alpha", f.Name)
	require.Equal(t, "owner@x.com", f.OwnerEmail)
	require.Equal(t, []string{"a@x.com"}, f.Members)
	require.Equal(t, "2024-01-15", f.StartDate)
	require.Equal(t, 31, f.RenewalDay)
	require.Equal(t, int64(1250000), f.Price)
	require.Equal(t, testChat, f.ChatID)
	require.True(t, f.ReminderEnabled)
	require.Empty(t, agg.States)
}

func TestAddFlow_InvalidInputsReprompt(t *testing.T) {
	m, st := newTestMachine(t)
	startAdd(t, m)
	feed(t, m, "Alpha", "owner@x.com", "skip", "skip", "skip", "skip", "skip")

	// Bad date: state unchanged, same step re-prompted.
	eff := feed(t, m, "31-01-2024")
	require.Equal(t, KindInvalid, eff.Kind)
	eff = feed(t, m, "15/01/2024")
	require.Equal(t, KindPrompt, eff.Kind)

	// Renewal day out of range, then non-numeric.
	for _, bad := range []string{"0", "32", "abc"} {
		eff = feed(t, m, bad)
		require.Equal(t, KindInvalid, eff.Kind, "input %q", bad)
	}
	eff = feed(t, m, "28")
	require.Equal(t, KindPrompt, eff.Kind)

	eff = feed(t, m, "lots")
	require.Equal(t, KindInvalid, eff.Kind)
	eff = feed(t, m, "50000")
	require.Equal(t, KindComplete, eff.Kind)

	require.Len(t, st.Load(context.Background()).Farms, 1)
}

func TestAddFlow_DuplicateNameRejected(t *testing.T) {
	m, _ := newTestMachine(t)
	createFarm(t, m)

	startAdd(t, m)
	eff := feed(t, m, "ALPHA")
	require.Equal(t, KindInvalid, eff.Kind)

	// A different name proceeds.
	eff = feed(t, m, "Beta")
	require.Equal(t, KindPrompt, eff.Kind)
}

func TestAddFlow_Deterministic(t *testing.T) {
	// Cancelling mid-flow and replaying the same inputs yields the same farm.
	m, st := newTestMachine(t)
	startAdd(t, m)
	feed(t, m, "Alpha", "owner@x.com")

	eff, err := m.Cancel(context.Background(), testChat)
	require.NoError(t, err)
	require.Equal(t, KindComplete, eff.Kind)

	createFarm(t, m)
	agg := st.Load(context.Background())
	require.Len(t, agg.Farms, 1)
	require.Equal(t, "Alpha", agg.Farms[0].Name)
}

func TestStartReplacesOpenFlow(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	startAdd(t, m)
	feed(t, m, "Beta", "b@x.com")

	// Starting another flow discards the partial add.
	_, err := m.Start(context.Background(), testChat, models.FlowView)
	require.NoError(t, err)

	agg := st.Load(context.Background())
	stt := agg.States["42"]
	require.NotNil(t, stt)
	require.Equal(t, models.FlowView, stt.Flow)
	require.Nil(t, stt.Add)
	require.Len(t, agg.Farms, 1)
}

func TestCancel_NothingOpen(t *testing.T) {
	m, _ := newTestMachine(t)
	eff, err := m.Cancel(context.Background(), testChat)
	require.NoError(t, err)
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "Nothing to cancel")
}

func TestHandle_NoOpenFlow(t *testing.T) {
	m, _ := newTestMachine(t)
	_, err := m.Handle(context.Background(), testChat, "hello")
	require.ErrorIs(t, err, common.ErrNotFound)
}

// A known flow tag with no sub-state behind it, as a hand-edited data file
// or an older schema can produce. The chat must not wedge: the state is
// dropped and the operation reported as cancelled.
func TestHandle_MissingSubStateCleared(t *testing.T) {
	ctx := context.Background()
	for _, flow := range []models.Flow{models.FlowAdd, models.FlowEdit, models.FlowSetLogin, models.FlowGetLogin} {
		m, st := newTestMachine(t)

		agg := st.Load(ctx)
		agg.States["42"] = &models.ConversationState{Flow: flow}
		require.NoError(t, st.Save(ctx, agg))

		eff, err := m.Handle(ctx, testChat, "anything")
		require.NoError(t, err, flow)
		require.Equal(t, KindComplete, eff.Kind, flow)
		require.Contains(t, eff.Text, "cancelled", flow)

		require.NotContains(t, st.Load(ctx).States, "42", flow)
	}
}

func TestViewFlow(t *testing.T) {
	m, _ := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowView)
	require.NoError(t, err)

	eff := feed(t, m, "nope")
	require.Equal(t, KindInvalid, eff.Kind)

	eff = feed(t, m, "alpha")
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "Alpha")
	require.Contains(t, eff.Text, "owner@x.com")
	// Copy buttons for the owner plus one member.
	require.Len(t, eff.Buttons, 2)
	require.Equal(t, "ce|owner@x.com", eff.Buttons[0][0].Payload)
}

func TestEditFlow(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowEdit)
	require.NoError(t, err)

	eff := feed(t, m, "Alpha", "9")
	require.Equal(t, KindInvalid, eff.Kind)

	eff = feed(t, m, "2", "31")
	require.Equal(t, KindComplete, eff.Kind)
	require.Equal(t, 31, st.Load(context.Background()).Farms[0].RenewalDay)

	// Price edit, with separator normalization.
	_, err = m.Start(context.Background(), testChat, models.FlowEdit)
	require.NoError(t, err)
	eff = feed(t, m, "Alpha", "3", "2.000.000")
	require.Equal(t, KindComplete, eff.Kind)
	require.Equal(t, int64(2000000), st.Load(context.Background()).Farms[0].Price)
}

func TestDeleteFlow(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowDelete)
	require.NoError(t, err)

	eff := feed(t, m, "Alpha")
	require.Equal(t, KindComplete, eff.Kind)
	require.Empty(t, st.Load(context.Background()).Farms)
}

func TestSearchFlow(t *testing.T) {
	m, _ := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowSearch)
	require.NoError(t, err)
	eff := feed(t, m, "a@x")
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "Alpha")

	// No match still completes the flow.
	_, err = m.Start(context.Background(), testChat, models.FlowSearch)
	require.NoError(t, err)
	eff = feed(t, m, "zzz")
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "Nothing found")
}

func TestToggleFlow(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowToggle)
	require.NoError(t, err)
	eff := feed(t, m, "Alpha")
	require.Equal(t, KindComplete, eff.Kind)
	require.False(t, st.Load(context.Background()).Farms[0].ReminderEnabled)

	_, err = m.Start(context.Background(), testChat, models.FlowToggle)
	require.NoError(t, err)
	feed(t, m, "Alpha")
	require.True(t, st.Load(context.Background()).Farms[0].ReminderEnabled)
}

func TestHistoryFlow_Empty(t *testing.T) {
	m, _ := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowHistory)
	require.NoError(t, err)
	eff := feed(t, m, "Alpha")
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "No reminders sent yet")
}

func TestFlowsRequireFarms(t *testing.T) {
	m, _ := newTestMachine(t)
	for _, flow := range []models.Flow{
		models.FlowView, models.FlowEdit, models.FlowDelete, models.FlowSearch,
		models.FlowToggle, models.FlowHistory, models.FlowSetLogin, models.FlowGetLogin,
	} {
		eff, err := m.Start(context.Background(), testChat, flow)
		require.NoError(t, err)
		require.Equal(t, KindComplete, eff.Kind, "flow %s", flow)
		require.Contains(t, eff.Text, "No farms yet")
	}
}

func TestSetAndGetLoginFlow(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowSetLogin)
	require.NoError(t, err)

	// Ordinal out of range is rejected; emails are owner + 1 member.
	eff := feed(t, m, "Alpha", "3")
	require.Equal(t, KindInvalid, eff.Kind)

	eff = feed(t, m, "2", "hunter2", "ABCD", "shared inbox", "01/02/2024", "30", "fb.com/cust")
	require.Equal(t, KindComplete, eff.Kind)

	agg := st.Load(context.Background())
	entry, ok := agg.Farms[0].Logins["a@x.com"]
	require.True(t, ok)
	require.NotEmpty(t, entry.Ciphertext)
	require.NotContains(t, entry.Ciphertext, "hunter2")
	require.Equal(t, "2024-02-01", entry.JoinDate)
	require.Equal(t, 30, entry.UsageDays)
	require.Equal(t, "fb.com/cust", entry.Profile)

	_, err = m.Start(context.Background(), testChat, models.FlowGetLogin)
	require.NoError(t, err)
	eff = feed(t, m, "Alpha", "2")
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "hunter2")
	require.Contains(t, eff.Text, "ABCD")
	require.Contains(t, eff.Text, "shared inbox")
	require.Len(t, eff.Buttons, 2)
}

func TestSetLoginFlow_SkipsRecordEmptyValues(t *testing.T) {
	m, st := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowSetLogin)
	require.NoError(t, err)
	eff := feed(t, m, "Alpha", "1", "pw", "SKIP", "skip", "skip", "skip", "skip")
	require.Equal(t, KindComplete, eff.Kind)

	entry := st.Load(context.Background()).Farms[0].Logins["owner@x.com"]
	require.Empty(t, entry.JoinDate)
	require.Zero(t, entry.UsageDays)
	require.Empty(t, entry.Profile)
}

func TestGetLoginFlow_NoEntry(t *testing.T) {
	m, _ := newTestMachine(t)
	createFarm(t, m)

	_, err := m.Start(context.Background(), testChat, models.FlowGetLogin)
	require.NoError(t, err)
	eff := feed(t, m, "Alpha", "1")
	require.Equal(t, KindComplete, eff.Kind)
	require.Contains(t, eff.Text, "No login stored")
}

func TestConcurrentChatsDoNotCrossTalk(t *testing.T) {
	m, st := newTestMachine(t)
	ctx := context.Background()

	_, err := m.Start(ctx, 1, models.FlowAdd)
	require.NoError(t, err)
	_, err = m.Start(ctx, 2, models.FlowAdd)
	require.NoError(t, err)

	_, err = m.Handle(ctx, 1, "Farm One")
	require.NoError(t, err)
	_, err = m.Handle(ctx, 2, "Farm Two")
	require.NoError(t, err)

	agg := st.Load(ctx)
	require.Equal(t, "Farm One", agg.States["1"].Add.Farm.Name)
	require.Equal(t, "Farm Two", agg.States["2"].Add.Farm.Name)
}

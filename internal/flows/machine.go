// Package flows implements the per-chat conversation state machine: it
// sequences multi-step textual input into a completed farm, a completed
// login entry, or a completed query, one open flow per chat, with no
// cross-talk between chats.
//
// Every Handle call loads the aggregate, mutates it, and saves it before
// the effect is returned, so a crash loses at most the in-flight step.
package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/common"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
	"github.com/dmitrijs2005/farmkeeper/internal/vault"
)

// Kind classifies the outcome of feeding one message to the machine.
type Kind int

const (
	// KindPrompt means the flow advanced and Text prompts the next step.
	KindPrompt Kind = iota
	// KindInvalid means the input was rejected; the same step is re-prompted
	// and accumulated state is unchanged.
	KindInvalid
	// KindComplete means the flow finished or terminated; state is cleared.
	KindComplete
)

// Button is one inline keyboard button attached to a reply.
type Button struct {
	Label   string
	Payload string
}

// Effect is the reply produced by one machine step.
type Effect struct {
	Kind    Kind
	Text    string
	Buttons [][]Button
}

func prompt(text string) Effect   { return Effect{Kind: KindPrompt, Text: text} }
func invalid(text string) Effect  { return Effect{Kind: KindInvalid, Text: text} }
func complete(text string) Effect { return Effect{Kind: KindComplete, Text: text} }

type Machine struct {
	store  *store.Store
	vault  *vault.Vault
	logger logging.Logger
}

func NewMachine(st *store.Store, v *vault.Vault, logger logging.Logger) *Machine {
	return &Machine{store: st, vault: v, logger: logger}
}

func stateKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// Start opens a flow for chatID. An already open flow is replaced and its
// partial input discarded; that is deliberate, not an error.
func (m *Machine) Start(ctx context.Context, chatID int64, flow models.Flow) (Effect, error) {
	agg := m.store.Load(ctx)

	eff, st := begin(agg, flow)
	key := stateKey(chatID)
	if st != nil {
		agg.States[key] = st
	} else {
		delete(agg.States, key)
	}

	if err := m.store.Save(ctx, agg); err != nil {
		return Effect{}, err
	}
	return eff, nil
}

// Handle feeds one message to the open flow of chatID. When no flow is
// open it returns common.ErrNotFound so the caller can route the text as a
// fresh command instead.
func (m *Machine) Handle(ctx context.Context, chatID int64, text string) (Effect, error) {
	agg := m.store.Load(ctx)
	key := stateKey(chatID)
	st, ok := agg.States[key]
	if !ok {
		return Effect{}, common.ErrNotFound
	}

	text = strings.TrimSpace(text)

	if !st.Valid() {
		// Known flow tag, missing sub-state: written by a different schema
		// version or a hand-edited file. Drop it rather than wedge the chat.
		m.logger.Warn(ctx, "clearing malformed flow state", "flow", st.Flow, "chat", chatID)
		delete(agg.States, key)
		if err := m.store.Save(ctx, agg); err != nil {
			return Effect{}, err
		}
		return complete("❌ This operation is no longer supported. It has been cancelled."), nil
	}

	var eff Effect
	switch st.Flow {
	case models.FlowAdd:
		eff = m.handleAdd(chatID, agg, st, text)
	case models.FlowView:
		eff = m.handleView(agg, text)
	case models.FlowEdit:
		eff = m.handleEdit(agg, st, text)
	case models.FlowDelete:
		eff = m.handleDelete(agg, text)
	case models.FlowSearch:
		eff = m.handleSearch(agg, text)
	case models.FlowToggle:
		eff = m.handleToggle(agg, text)
	case models.FlowHistory:
		eff = m.handleHistory(agg, text)
	case models.FlowSetLogin:
		eff = m.handleSetLogin(ctx, agg, st, text)
	case models.FlowGetLogin:
		eff = m.handleGetLogin(ctx, agg, st, text)
	default:
		// A flow kind this build does not know, e.g. state written by a
		// newer version. Drop it rather than wedge the chat.
		m.logger.Warn(ctx, "clearing unknown flow state", "flow", st.Flow, "chat", chatID)
		eff = complete("❌ This operation is no longer supported. It has been cancelled.")
	}

	if eff.Kind == KindComplete {
		delete(agg.States, key)
	}
	if err := m.store.Save(ctx, agg); err != nil {
		return Effect{}, err
	}
	return eff, nil
}

// Cancel unconditionally clears the open flow for chatID. It never fails:
// with nothing open it simply reports so.
func (m *Machine) Cancel(ctx context.Context, chatID int64) (Effect, error) {
	agg := m.store.Load(ctx)
	key := stateKey(chatID)
	if _, ok := agg.States[key]; !ok {
		return complete("ℹ️ Nothing to cancel."), nil
	}

	delete(agg.States, key)
	if err := m.store.Save(ctx, agg); err != nil {
		return Effect{}, err
	}
	return complete("✅ Current operation cancelled."), nil
}

// begin builds the initial state and opening prompt for a flow. Flows that
// need at least one farm terminate immediately when there are none.
func begin(agg *store.Aggregate, flow models.Flow) (Effect, *models.ConversationState) {
	if flow != models.FlowAdd && len(agg.Farms) == 0 {
		return complete("📭 No farms yet. Use /add_farm to create one."), nil
	}

	switch flow {
	case models.FlowAdd:
		st := &models.ConversationState{Flow: flow, Add: &models.AddState{Step: models.AddStepName}}
		return prompt("📝 <b>New farm</b>\n\nEnter the <b>name</b>:"), st
	case models.FlowView:
		return prompt("👁 <b>Farm details</b>\n\nEnter the <b>name</b>:\n\n" + farmListing(agg)), &models.ConversationState{Flow: flow}
	case models.FlowEdit:
		st := &models.ConversationState{Flow: flow, Edit: &models.EditState{Step: models.EditStepSelect}}
		return prompt("✏️ <b>Edit farm</b>\n\nEnter the <b>name</b>:\n\n" + farmListing(agg)), st
	case models.FlowDelete:
		return prompt("🗑 <b>Delete farm</b>\n\nEnter the <b>name</b>:\n\n" + farmListing(agg)), &models.ConversationState{Flow: flow}
	case models.FlowSearch:
		return prompt("🔍 Enter a <b>name</b> or <b>email</b> to search for:"), &models.ConversationState{Flow: flow}
	case models.FlowToggle:
		return prompt("🔔 <b>Reminders on/off</b>\n\nEnter the farm name:\n\n" + toggleListing(agg)), &models.ConversationState{Flow: flow}
	case models.FlowHistory:
		return prompt("🕒 <b>Reminder history</b>\n\nEnter the farm name:\n\n" + farmListing(agg)), &models.ConversationState{Flow: flow}
	case models.FlowSetLogin:
		st := &models.ConversationState{Flow: flow, Login: &models.LoginState{Step: models.LoginStepFarm}}
		return prompt("🔐 <b>Store email login</b>\n\nEnter the <b>farm name</b>:\n\n" + farmListing(agg)), st
	case models.FlowGetLogin:
		st := &models.ConversationState{Flow: flow, Login: &models.LoginState{Step: models.LoginStepFarm}}
		return prompt("🔎 <b>Show email login</b>\n\nEnter the <b>farm name</b>:\n\n" + farmListing(agg)), st
	default:
		return complete("❌ Unknown operation."), nil
	}
}

func farmListing(agg *store.Aggregate) string {
	var b strings.Builder
	for _, f := range agg.Farms {
		fmt.Fprintf(&b, "• %s\n", f.Name)
	}
	return b.String()
}

func toggleListing(agg *store.Aggregate) string {
	var b strings.Builder
	for _, f := range agg.Farms {
		state := "ON"
		if !f.ReminderEnabled {
			state = "OFF"
		}
		fmt.Fprintf(&b, "• %s - %s\n", f.Name, state)
	}
	return b.String()
}

// Package bot routes inbound updates to commands and conversation flows and
// renders the replies. It owns the command surface; the flow semantics live
// in the flows package.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/common"
	"github.com/dmitrijs2005/farmkeeper/internal/flows"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/report"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
	"github.com/dmitrijs2005/farmkeeper/internal/telegram"
	"github.com/dmitrijs2005/farmkeeper/internal/vault"
)

// api is the slice of the messaging client the bot needs for replies.
type api interface {
	SendText(ctx context.Context, chatID int64, text string, markup *telegram.ReplyMarkup) error
	SendDocument(ctx context.Context, chatID int64, name string, content []byte, caption string) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Bot handles one inbound update at a time. Updates for different chats are
// independent; within a chat, ordering is preserved by the caller feeding
// them sequentially.
type Bot struct {
	api     api
	store   *store.Store
	vault   *vault.Vault
	machine *flows.Machine
	logger  logging.Logger
	now     func() time.Time
}

func NewBot(a api, st *store.Store, v *vault.Vault, m *flows.Machine, logger logging.Logger) *Bot {
	return &Bot{api: a, store: st, vault: v, machine: m, logger: logger, now: time.Now}
}

// HandleUpdate processes one update. Failures are logged, never returned:
// one bad update must not stop the poll loop.
func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	var err error
	switch {
	case u.CallbackQuery != nil:
		err = b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		err = b.handleMessage(ctx, u.Message.Chat.ID, u.Message.Text)
	}
	if err != nil {
		b.logger.Error(ctx, "update handling failed", "update_id", u.UpdateID, "error", err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Commands interrupt whatever flow is open; flow-opening commands
	// replace it via the machine, the rest leave it untouched.
	if cmd, ok := parseCommand(text); ok {
		return b.dispatch(ctx, chatID, cmd)
	}

	eff, err := b.machine.Handle(ctx, chatID, text)
	if errors.Is(err, common.ErrNotFound) {
		return b.api.SendText(ctx, chatID, "❌ Unknown command. Send /help for the list.", nil)
	}
	if err != nil {
		return err
	}
	return b.sendEffect(ctx, chatID, eff)
}

func (b *Bot) dispatch(ctx context.Context, chatID int64, cmd Command) error {
	if flow, ok := flowCommands[cmd]; ok {
		eff, err := b.machine.Start(ctx, chatID, flow)
		if err != nil {
			return err
		}
		return b.sendEffect(ctx, chatID, eff)
	}

	switch cmd {
	case CmdStart:
		return b.api.SendText(ctx, chatID, menuText, mainKeyboard())
	case CmdHelp:
		return b.api.SendText(ctx, chatID, helpText, nil)
	case CmdList:
		return b.api.SendText(ctx, chatID, listFarms(b.store.Load(ctx)), nil)
	case CmdStats:
		return b.api.SendText(ctx, chatID, report.Stats(b.store.Load(ctx), b.now()), nil)
	case CmdDaily:
		return b.api.SendText(ctx, chatID, report.Daily(b.store.Load(ctx), b.now()), nil)
	case CmdWeekly:
		return b.api.SendText(ctx, chatID, report.Weekly(b.store.Load(ctx), b.now()), nil)
	case CmdBackup:
		return b.sendExport(ctx, chatID, report.BackupJSON, "💾 Data backup")
	case CmdExportCSV:
		return b.sendExport(ctx, chatID, report.ExportCSV, "📤 CSV export")
	case CmdCancel:
		eff, err := b.machine.Cancel(ctx, chatID)
		if err != nil {
			return err
		}
		return b.sendEffect(ctx, chatID, eff)
	default:
		return b.api.SendText(ctx, chatID, "❌ Unknown command. Send /help for the list.", nil)
	}
}

func (b *Bot) sendExport(ctx context.Context, chatID int64, build func(*store.Aggregate, time.Time) (*report.File, error), caption string) error {
	agg := b.store.Load(ctx)
	if len(agg.Farms) == 0 {
		return b.api.SendText(ctx, chatID, "📭 No data to export yet.", nil)
	}
	f, err := build(agg, b.now())
	if err != nil {
		return err
	}
	return b.api.SendDocument(ctx, chatID, f.Name, f.Content, caption)
}

// handleCallback serves the copy buttons attached to login details. The
// password and 2FA payloads carry only the farm ID and email; the secret is
// decrypted on demand and never stored in the button.
func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if cb.Message == nil || cb.Data == "" {
		return b.api.AnswerCallback(ctx, cb.ID, "")
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, "ce|"):
		email := strings.TrimPrefix(cb.Data, "ce|")
		if err := b.api.SendText(ctx, chatID, fmt.Sprintf("<code>%s</code>", email), nil); err != nil {
			return err
		}
		return b.api.AnswerCallback(ctx, cb.ID, "Email sent for copying.")

	case strings.HasPrefix(cb.Data, "cpw|"):
		return b.sendSecret(ctx, cb, chatID, "cpw|", func(bundle vault.Bundle) (string, string) {
			return fmt.Sprintf("🔑 Password:\n<code>%s</code>", bundle.Password), "Password sent."
		})

	case strings.HasPrefix(cb.Data, "c2f|"):
		return b.sendSecret(ctx, cb, chatID, "c2f|", func(bundle vault.Bundle) (string, string) {
			return fmt.Sprintf("🛡 2FA:\n<code>%s</code>", bundle.TwoFA), "2FA code sent."
		})

	default:
		return b.api.AnswerCallback(ctx, cb.ID, "")
	}
}

func (b *Bot) sendSecret(ctx context.Context, cb *telegram.CallbackQuery, chatID int64, prefix string, render func(vault.Bundle) (string, string)) error {
	parts := strings.SplitN(strings.TrimPrefix(cb.Data, prefix), "|", 2)
	if len(parts) != 2 {
		return b.api.AnswerCallback(ctx, cb.ID, "Nothing found.")
	}
	farmID, email := parts[0], parts[1]

	agg := b.store.Load(ctx)
	farm := agg.FindFarmByID(farmID)
	if farm == nil {
		return b.api.AnswerCallback(ctx, cb.ID, "Nothing found.")
	}
	entry, ok := farm.Logins[email]
	if !ok {
		return b.api.AnswerCallback(ctx, cb.ID, "Nothing found.")
	}

	bundle, err := b.vault.Decrypt(entry.Ciphertext)
	if err != nil {
		b.logger.Error(ctx, "callback decrypt failed", "farm", farmID, "error", err)
		return b.api.AnswerCallback(ctx, cb.ID, "Something went wrong.")
	}

	text, ack := render(bundle)
	if err := b.api.SendText(ctx, chatID, text, nil); err != nil {
		return err
	}
	return b.api.AnswerCallback(ctx, cb.ID, ack)
}

// sendEffect renders a flow effect, attaching its inline buttons if any.
func (b *Bot) sendEffect(ctx context.Context, chatID int64, eff flows.Effect) error {
	var markup *telegram.ReplyMarkup
	if len(eff.Buttons) > 0 {
		rows := make([][]telegram.InlineKeyboardButton, 0, len(eff.Buttons))
		for _, row := range eff.Buttons {
			r := make([]telegram.InlineKeyboardButton, 0, len(row))
			for _, btn := range row {
				r = append(r, telegram.InlineKeyboardButton{Text: btn.Label, CallbackData: btn.Payload})
			}
			rows = append(rows, r)
		}
		markup = &telegram.ReplyMarkup{InlineKeyboard: rows}
	}
	return b.api.SendText(ctx, chatID, eff.Text, markup)
}

func listFarms(agg *store.Aggregate) string {
	if len(agg.Farms) == 0 {
		return "📭 No farms yet. Use /add_farm to create one."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Farms (%d)</b>\n\n", len(agg.Farms))
	for i, f := range agg.Farms {
		bell := "🔔"
		if !f.ReminderEnabled {
			bell = "🔕"
		}
		fmt.Fprintf(&sb, "<b>%d. %s</b> %s\n   👤 %s\n   📅 Day %d\n   💰 %s\n\n",
			i+1, f.Name, bell, f.OwnerEmail, f.RenewalDay, models.FormatPrice(f.Price))
	}
	return sb.String()
}

func mainKeyboard() *telegram.ReplyMarkup {
	return &telegram.ReplyMarkup{
		Keyboard: [][]telegram.KeyboardButton{
			{{Text: "➕ Add farm"}, {Text: "📋 List"}},
			{{Text: "📊 Stats"}, {Text: "📆 Weekly"}},
			{{Text: "📅 Today"}, {Text: "💾 Backup"}},
			{{Text: "📤 Export CSV"}, {Text: "🔔 Reminders"}},
		},
		ResizeKeyboard: true,
	}
}

const menuText = `🤖 <b>Renewal reminder bot</b>

📋 <b>Manage:</b>
/add_farm - Add a farm
/list - List farms
/view_farm - Farm details
/edit_farm - Edit a farm
/delete_farm - Delete a farm
/search - Search by name or email

📊 <b>Reports:</b>
/stats - Statistics
/daily_report - Due today
/weekly_report - Next 7 days
/history - Reminder history

💾 <b>Data:</b>
/backup - JSON backup
/export_csv - CSV export
/toggle_reminder - Reminders on/off

🔐 <b>Email logins (per farm):</b>
/set_login - Store password / 2FA and notes
/get_login - Show and copy a stored login

ℹ️ <b>Other:</b>
/cancel - Cancel the current operation
/help - Detailed help`

const helpText = `📖 <b>Help</b>

• /add_farm: add a farm, the bot asks step by step.
• /list, /view_farm, /edit_farm, /delete_farm, /search: manage farms.
• /stats, /daily_report, /weekly_report, /history: reports and history.
• /backup, /export_csv: export the data.
• /toggle_reminder: reminders on/off per farm.
• /set_login: store password / 2FA plus join date, usage and profile for an email in a farm.
• /get_login: show and copy a stored email login.
• /cancel: cancel whatever is in progress.`

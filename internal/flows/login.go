package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
	"github.com/dmitrijs2005/farmkeeper/internal/store"
	"github.com/dmitrijs2005/farmkeeper/internal/vault"
)

// selectLoginTarget implements the two selection steps shared by set-login
// and get-login: farm by name, then email by ordinal. It returns a non-nil
// effect while selection is still in progress, and the selected farm once
// the email is chosen.
func selectLoginTarget(agg *store.Aggregate, s *models.LoginState, text, purpose string) (Effect, *models.Farm) {
	switch s.Step {
	case models.LoginStepFarm:
		farm := agg.FindFarm(text)
		if farm == nil {
			return invalid(fmt.Sprintf("❌ Farm <b>%s</b> not found. Enter the farm name:", text)), nil
		}
		s.FarmID = farm.ID
		s.Emails = farm.Emails()
		s.Step = models.LoginStepEmail

		var list strings.Builder
		for i, em := range s.Emails {
			fmt.Fprintf(&list, "%d. %s\n", i+1, em)
		}
		return prompt(fmt.Sprintf("✅ Farm <b>%s</b>\n\nEmails:\n%s\nEnter the <b>number</b> of the email to %s:",
			farm.Name, list.String(), purpose)), nil

	case models.LoginStepEmail:
		i, err := parseOrdinal(text, len(s.Emails))
		if err != nil {
			return invalid(fmt.Sprintf("❌ Enter a number between 1 and %d:", len(s.Emails))), nil
		}
		s.Email = s.Emails[i-1]

		farm := agg.FindFarmByID(s.FarmID)
		if farm == nil {
			return complete("❌ That farm no longer exists."), nil
		}
		return Effect{}, farm
	}

	return invalid("❌ Unexpected input."), nil
}

func (m *Machine) handleSetLogin(ctx context.Context, agg *store.Aggregate, st *models.ConversationState, text string) Effect {
	s := st.Login

	switch s.Step {
	case models.LoginStepFarm, models.LoginStepEmail:
		eff, farm := selectLoginTarget(agg, s, text, "store a login for")
		if farm == nil {
			return eff
		}
		s.Step = models.LoginStepPassword
		return prompt(fmt.Sprintf("📧 Email: <b>%s</b>\n\nEnter the <b>password</b>:", s.Email))

	case models.LoginStepPassword:
		if text == "" {
			return invalid("❌ The password cannot be empty. Enter the <b>password</b>:")
		}
		s.Password = text
		s.Step = models.LoginStepTwoFA
		return prompt("Enter the <b>2FA code</b> (or type <code>skip</code> if none):")

	case models.LoginStepTwoFA:
		if !isSkip(text) {
			s.TwoFA = text
		}
		s.Step = models.LoginStepNote
		return prompt("Enter a <b>note</b> (or type <code>skip</code>):")

	case models.LoginStepNote:
		if !isSkip(text) {
			s.Note = text
		}
		s.Step = models.LoginStepJoinDate
		return prompt("Enter the <b>join date</b> (DD/MM/YYYY, or type <code>skip</code>):")

	case models.LoginStepJoinDate:
		if !isSkip(text) {
			iso, err := parseInputDate(text)
			if err != nil {
				return invalid("❌ Wrong format. Use DD/MM/YYYY or type skip:")
			}
			s.JoinDate = iso
		}
		s.Step = models.LoginStepUsageDays
		return prompt("Enter the <b>usage duration in days</b> (e.g. 30, or type <code>skip</code>):")

	case models.LoginStepUsageDays:
		if !isSkip(text) {
			days, err := strconv.Atoi(text)
			if err != nil {
				return invalid("❌ Enter a valid number of days or type skip:")
			}
			if days < 0 {
				days = 0
			}
			s.UsageDays = days
		}
		s.Step = models.LoginStepProfile
		return prompt("Enter the customer's <b>profile link</b> (or type <code>skip</code>):")

	case models.LoginStepProfile:
		profile := ""
		if !isSkip(text) {
			profile = text
		}

		farm := agg.FindFarmByID(s.FarmID)
		if farm == nil {
			return complete("❌ That farm no longer exists.")
		}

		enc, err := m.vault.Encrypt(vault.Bundle{Password: s.Password, TwoFA: s.TwoFA, Note: s.Note})
		if err != nil {
			m.logger.Error(ctx, "encrypting login bundle", "farm", farm.Name, "error", err)
			return complete("❌ Failed to store the credentials.")
		}

		// One entry per email, last write wins.
		farm.Logins[s.Email] = models.LoginEntry{
			Ciphertext: enc,
			JoinDate:   s.JoinDate,
			UsageDays:  s.UsageDays,
			Profile:    profile,
		}

		return complete(fmt.Sprintf(`✅ Login stored for:
📧 <b>%s</b>
🧱 Farm: <b>%s</b>

Saved: password, 2FA, note, join date, usage duration, profile link.
Use /get_login to view it.`, s.Email, farm.Name))
	}

	return invalid("❌ Unexpected input.")
}

func (m *Machine) handleGetLogin(ctx context.Context, agg *store.Aggregate, st *models.ConversationState, text string) Effect {
	s := st.Login

	eff, farm := selectLoginTarget(agg, s, text, "view the login of")
	if farm == nil {
		return eff
	}

	entry, ok := farm.Logins[s.Email]
	if !ok {
		return complete(fmt.Sprintf("❌ No login stored for <b>%s</b>.", s.Email))
	}

	bundle, err := m.vault.Decrypt(entry.Ciphertext)
	if err != nil {
		m.logger.Error(ctx, "decrypting login bundle", "farm", farm.Name, "error", err)
		return complete("❌ Could not decrypt the stored data. Check the master secret.")
	}

	out := complete(loginDetail(s.Email, entry, bundle))
	out.Buttons = [][]Button{
		{{Label: "📋 Copy email", Payload: "ce|" + s.Email}},
		{
			{Label: "📋 Copy password", Payload: "cpw|" + farm.ID + "|" + s.Email},
			{Label: "📋 Copy 2FA", Payload: "c2f|" + farm.ID + "|" + s.Email},
		},
	}
	return out
}

func loginDetail(email string, entry models.LoginEntry, b vault.Bundle) string {
	orNone := func(s string) string {
		if s == "" {
			return "(none)"
		}
		return s
	}

	usage := "(none)"
	if entry.UsageDays > 0 {
		usage = fmt.Sprintf("%d days", entry.UsageDays)
	}
	join := "(none)"
	if entry.JoinDate != "" {
		join = models.FormatDate(entry.JoinDate)
	}

	return fmt.Sprintf(`🔐 <b>Email login</b>

📧 Email: <b>%s</b>

📅 Joined: %s
🕒 Usage duration: %s
👤 Profile: %s
📝 Note: %s

🔑 Password: <code>%s</code>
🛡 2FA: <code>%s</code>

👉 Copy directly in Telegram or use the buttons below.
`, email, join, usage, orNone(entry.Profile), orNone(b.Note), b.Password, b.TwoFA)
}

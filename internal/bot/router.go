package bot

import (
	"strings"

	"github.com/dmitrijs2005/farmkeeper/internal/models"
)

// Command is one of the slash commands the bot understands.
type Command string

const (
	CmdStart     Command = "/start"
	CmdHelp      Command = "/help"
	CmdAdd       Command = "/add_farm"
	CmdList      Command = "/list"
	CmdView      Command = "/view_farm"
	CmdEdit      Command = "/edit_farm"
	CmdDelete    Command = "/delete_farm"
	CmdSearch    Command = "/search"
	CmdStats     Command = "/stats"
	CmdDaily     Command = "/daily_report"
	CmdWeekly    Command = "/weekly_report"
	CmdHistory   Command = "/history"
	CmdBackup    Command = "/backup"
	CmdExportCSV Command = "/export_csv"
	CmdToggle    Command = "/toggle_reminder"
	CmdSetLogin  Command = "/set_login"
	CmdGetLogin  Command = "/get_login"
	CmdCancel    Command = "/cancel"
)

var commands = map[string]Command{
	string(CmdStart):     CmdStart,
	string(CmdHelp):      CmdHelp,
	string(CmdAdd):       CmdAdd,
	string(CmdList):      CmdList,
	string(CmdView):      CmdView,
	string(CmdEdit):      CmdEdit,
	string(CmdDelete):    CmdDelete,
	string(CmdSearch):    CmdSearch,
	string(CmdStats):     CmdStats,
	string(CmdDaily):     CmdDaily,
	string(CmdWeekly):    CmdWeekly,
	string(CmdHistory):   CmdHistory,
	string(CmdBackup):    CmdBackup,
	string(CmdExportCSV): CmdExportCSV,
	string(CmdToggle):    CmdToggle,
	string(CmdSetLogin):  CmdSetLogin,
	string(CmdGetLogin):  CmdGetLogin,
	string(CmdCancel):    CmdCancel,
}

// keyboardCommands maps the persistent reply-keyboard labels sent by /start
// to the commands they stand for.
var keyboardCommands = map[string]Command{
	"➕ Add farm":   CmdAdd,
	"📋 List":       CmdList,
	"📊 Stats":      CmdStats,
	"📆 Weekly":     CmdWeekly,
	"📅 Today":      CmdDaily,
	"💾 Backup":     CmdBackup,
	"📤 Export CSV": CmdExportCSV,
	"🔔 Reminders":  CmdToggle,
}

// flowCommands maps the commands that open a conversation flow to the flow
// they open.
var flowCommands = map[Command]models.Flow{
	CmdAdd:      models.FlowAdd,
	CmdView:     models.FlowView,
	CmdEdit:     models.FlowEdit,
	CmdDelete:   models.FlowDelete,
	CmdSearch:   models.FlowSearch,
	CmdToggle:   models.FlowToggle,
	CmdHistory:  models.FlowHistory,
	CmdSetLogin: models.FlowSetLogin,
	CmdGetLogin: models.FlowGetLogin,
}

// parseCommand maps an inbound message text to a command. Both the literal
// "/command" form and the reply-keyboard labels are accepted; anything else
// is not a command and belongs to the open flow, if any.
func parseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if cmd, ok := commands[text]; ok {
		return cmd, true
	}
	if cmd, ok := keyboardCommands[text]; ok {
		return cmd, true
	}
	return "", false
}

package models

// Flow classifies an open multi-step conversation.
type Flow string

const (
	FlowAdd      Flow = "add_farm"
	FlowView     Flow = "view_farm"
	FlowEdit     Flow = "edit_farm"
	FlowDelete   Flow = "delete_farm"
	FlowSearch   Flow = "search_farm"
	FlowToggle   Flow = "toggle_reminder"
	FlowHistory  Flow = "history"
	FlowSetLogin Flow = "set_login"
	FlowGetLogin Flow = "get_login"
)

// ConversationState tracks the one open flow of one chat. Flow is the tag;
// at most one of the per-flow state pointers is set, and only for flows
// that accumulate input across steps. Single-prompt flows (view, delete,
// search, toggle, history) carry no extra state.
type ConversationState struct {
	Flow  Flow        `json:"flow"`
	Add   *AddState   `json:"add,omitempty"`
	Edit  *EditState  `json:"edit,omitempty"`
	Login *LoginState `json:"login,omitempty"`
}

// Valid reports whether the sub-state the Flow tag requires is present.
// A hand-edited data file or state persisted by a different schema version
// can carry a known tag with no sub-state behind it.
func (s *ConversationState) Valid() bool {
	switch s.Flow {
	case FlowAdd:
		return s.Add != nil
	case FlowEdit:
		return s.Edit != nil
	case FlowSetLogin, FlowGetLogin:
		return s.Login != nil
	default:
		return true
	}
}

// AddStep enumerates the add-flow steps, in order. Transitions only ever
// move forward.
type AddStep string

const (
	AddStepName    AddStep = "name"
	AddStepOwner   AddStep = "owner"
	AddStepMember  AddStep = "member"
	AddStepStart   AddStep = "start"
	AddStepRenewal AddStep = "renewal"
	AddStepPrice   AddStep = "price"
)

// AddState accumulates a partially built Farm. MemberOrdinal is the
// 1-based index of the member email currently being asked for.
type AddState struct {
	Step          AddStep `json:"step"`
	Farm          Farm    `json:"farm"`
	MemberOrdinal int     `json:"member_ordinal"`
}

type EditStep string

const (
	EditStepSelect  EditStep = "select"
	EditStepField   EditStep = "field"
	EditStepOwner   EditStep = "owner"
	EditStepRenewal EditStep = "renewal"
	EditStepPrice   EditStep = "price"
)

type EditState struct {
	Step   EditStep `json:"step"`
	FarmID string   `json:"farm_id"`
}

// LoginStep enumerates the credential-entry steps. The get-login flow uses
// only the farm and email selection steps; the set-login flow continues
// through the input steps.
type LoginStep string

const (
	LoginStepFarm      LoginStep = "farm"
	LoginStepEmail     LoginStep = "email"
	LoginStepPassword  LoginStep = "password"
	LoginStepTwoFA     LoginStep = "twofa"
	LoginStepNote      LoginStep = "note"
	LoginStepJoinDate  LoginStep = "join_date"
	LoginStepUsageDays LoginStep = "usage_days"
	LoginStepProfile   LoginStep = "profile"
)

// LoginState accumulates credential input. Emails is the selection list
// frozen when the farm was chosen, so ordinals stay stable even if the farm
// changes mid-flow.
type LoginState struct {
	Step      LoginStep `json:"step"`
	FarmID    string    `json:"farm_id"`
	Emails    []string  `json:"emails,omitempty"`
	Email     string    `json:"email,omitempty"`
	Password  string    `json:"password,omitempty"`
	TwoFA     string    `json:"twofa,omitempty"`
	Note      string    `json:"note,omitempty"`
	JoinDate  string    `json:"join_date,omitempty"`
	UsageDays int       `json:"usage_days,omitempty"`
}

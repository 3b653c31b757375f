package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/whoisbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// ErrUnknownAction is returned for callback data that is not a menu action.
var ErrUnknownAction = errors.New("menu: unknown action")

// RenderSpec describes how to present a screen.
type RenderSpec struct {
	Screen Screen
	Mode   RenderMode
	// Text is the static content. For Dynamic screens it is the fallback
	// shown when live data is not applicable, and may be empty.
	Text      string
	Dynamic   bool
	ParseMode tele.ParseMode
	Markup    *tele.ReplyMarkup
}

// Options configures links shown on the keyboards.
type Options struct {
	BotUsername  string
	ChannelURL   string
	DeveloperURL string
}

// Machine maps callback actions to screens. It holds no per-user state and
// is safe for concurrent use.
type Machine struct {
	opts Options
}

// New returns a machine for the given keyboard links.
func New(opts Options) *Machine {
	opts.BotUsername = strings.TrimPrefix(strings.TrimSpace(opts.BotUsername), "@")
	return &Machine{opts: opts}
}

type edge struct {
	to   Screen
	mode RenderMode
}

// The destination depends on the action only, so buttons of older menu
// messages keep working after the session moved on. The one exception is
// reveal_phone_yes, see confirmEdge.
var edges = map[Action]edge{
	ActionDetails:        {Of(KindDetails), ModeDeleteResend},
	ActionProfile:        {Of(KindProfileLink), ModeEdit},
	ActionStats:          {Of(KindStats), ModeEdit},
	ActionTools:          {Of(KindTools), ModeEdit},
	ActionToolsPhone:     {Of(KindPhoneConfirm), ModeEdit},
	ActionToolsFind:      {ToolDetail(ToolFind), ModeEdit},
	ActionToolsCompare:   {ToolDetail(ToolCompare), ModeEdit},
	ActionToolsGroupInfo: {Of(KindGroupInfo), ModeEdit},
	ActionToolsReferral:  {Of(KindReferralInfo), ModeEdit},
	ActionRevealPhoneYes: {Of(KindPhoneCapture), ModeDeleteResend},
	ActionRevealPhoneNo:  {Of(KindTools), ModeEdit},
	ActionBackToMain:     {Main, ModeDeleteResend},
}

// IsAction reports whether data names a menu action.
func IsAction(data string) bool {
	_, ok := edges[Action(data)]
	return ok
}

// Transition computes the screen reached from before by action.
// Edits are upgraded to delete+resend when the previous message cannot be
// edited as text (a photo card or a reply-keyboard prompt).
func (m *Machine) Transition(before Screen, action Action) (Screen, RenderSpec, error) {
	e, ok := edges[action]
	if !ok {
		return before, RenderSpec{}, fmt.Errorf("%w: %q", ErrUnknownAction, string(action))
	}
	e = confirmEdge(before, action, e)
	view := m.Render(e.to)
	view.Mode = e.mode
	if view.Mode == ModeEdit && !editable(before) {
		view.Mode = ModeDeleteResend
	}
	return e.to, view, nil
}

// confirmEdge keeps the contact prompt behind the confirmation screen: a
// reveal_phone_yes pressed anywhere else asks for confirmation again.
func confirmEdge(before Screen, action Action, e edge) edge {
	if action == ActionRevealPhoneYes && before.Kind != KindPhoneConfirm {
		return edge{Of(KindPhoneConfirm), ModeEdit}
	}
	return e
}

func editable(s Screen) bool {
	switch s.Kind {
	case KindDetails, KindPhoneCapture:
		return false
	}
	return true
}

// Render returns the presentation of screen without a transition. Mode is
// ModeDeleteResend, which callers sending a fresh message can ignore.
func (m *Machine) Render(screen Screen) RenderSpec {
	view := RenderSpec{Screen: screen, Mode: ModeDeleteResend, ParseMode: tele.ModeMarkdown}
	switch screen.Kind {
	case KindMain, "":
		view.Screen = Main
		view.Text = TextMain
		view.ParseMode = tele.ModeDefault
		view.Markup = m.mainKeyboard()
	case KindTools:
		view.Text = TextTools
		view.Markup = m.toolsKeyboard()
	case KindToolDetail:
		switch screen.Tool {
		case ToolCompare:
			view.Text = TextToolCompare
		default:
			view.Screen = ToolDetail(ToolFind)
			view.Text = TextToolFind
		}
		view.Markup = toolBackKeyboard()
	case KindGroupInfo:
		view.Dynamic = true
		view.Text = TextGroupInfoHelp
		view.Markup = toolBackKeyboard()
	case KindReferralInfo:
		view.Dynamic = true
		view.Markup = toolBackKeyboard()
	case KindPhoneConfirm:
		view.Text = TextPhoneConfirm
		view.Markup = confirmKeyboard()
	case KindPhoneCapture:
		view.Text = TextPhoneCapture
		view.ParseMode = tele.ModeDefault
		view.Markup = keyboard.ContactRequest(labelShareContact)
	case KindProfileLink:
		view.Dynamic = true
		view.ParseMode = tele.ModeDefault
		view.Markup = BackToMainKeyboard()
	case KindDetails, KindStats, KindBotInfo:
		view.Dynamic = true
		view.Markup = BackToMainKeyboard()
	}
	return view
}

func (m *Machine) mainKeyboard() *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		keyboard.Row(
			keyboard.Action(labelDetails, string(ActionDetails)),
			keyboard.Action(labelProfile, string(ActionProfile)),
		),
		keyboard.Row(
			keyboard.Action(labelStats, string(ActionStats)),
			keyboard.Action(labelTools, string(ActionTools)),
		),
	}
	if m.opts.ChannelURL != "" {
		rows = append(rows, keyboard.Row(keyboard.Link(labelChannel, m.opts.ChannelURL)))
	}
	if m.opts.DeveloperURL != "" {
		rows = append(rows, keyboard.Row(keyboard.Link(labelDeveloper, m.opts.DeveloperURL)))
	}
	return keyboard.InlineButtonsRows(rows...)
}

func (m *Machine) toolsKeyboard() *tele.ReplyMarkup {
	rows := [][]keyboard.InlineBtn{
		keyboard.Row(
			keyboard.Action(labelPhone, string(ActionToolsPhone)),
			keyboard.Action(labelFind, string(ActionToolsFind)),
		),
		keyboard.Row(keyboard.Action(labelCompare, string(ActionToolsCompare))),
		keyboard.Row(
			keyboard.Action(labelGroupInfo, string(ActionToolsGroupInfo)),
			keyboard.Action(labelReferral, string(ActionToolsReferral)),
		),
	}
	if link := m.AddToGroupURL(); link != "" {
		rows = append(rows, keyboard.Row(keyboard.Link(labelAddToGroup, link)))
	}
	rows = append(rows, keyboard.Row(keyboard.Action(labelBackToMain, string(ActionBackToMain))))
	return keyboard.InlineButtonsRows(rows...)
}

// AddToGroupURL is the deep link that adds the bot to a new group.
func (m *Machine) AddToGroupURL() string {
	if m.opts.BotUsername == "" {
		return ""
	}
	return "https://t.me/" + m.opts.BotUsername + "?startgroup=new"
}

// InviteURL is the personal referral link of userID.
func (m *Machine) InviteURL(userID int64) string {
	if m.opts.BotUsername == "" {
		return ""
	}
	return fmt.Sprintf("https://t.me/%s?start=%d", m.opts.BotUsername, userID)
}

// BackToMainKeyboard is the single-button keyboard returning to Main.
func BackToMainKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		keyboard.Row(keyboard.Action(labelBackToMain, string(ActionBackToMain))),
	)
}

func toolBackKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		keyboard.Row(keyboard.Action(labelBackToTools, string(ActionTools))),
		keyboard.Row(keyboard.Action(labelBackToMain, string(ActionBackToMain))),
	)
}

func confirmKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		keyboard.Row(
			keyboard.Action(labelRevealYes, string(ActionRevealPhoneYes)),
			keyboard.Action(labelRevealNo, string(ActionRevealPhoneNo)),
		),
	)
}

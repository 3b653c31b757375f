// Package menu holds the navigation state machine behind the inline menus.
package menu

import "fmt"

// Kind names a menu screen.
type Kind string

const (
	KindMain         Kind = "main"
	KindTools        Kind = "tools"
	KindToolDetail   Kind = "tool_detail"
	KindDetails      Kind = "details"
	KindProfileLink  Kind = "profile_link"
	KindStats        Kind = "stats"
	KindGroupInfo    Kind = "group_info"
	KindBotInfo      Kind = "bot_info"
	KindReferralInfo Kind = "referral_info"
	KindPhoneConfirm Kind = "phone_confirm"
	KindPhoneCapture Kind = "phone_capture"
)

// Tool names the lookup explained by a ToolDetail screen.
type Tool string

const (
	ToolFind    Tool = "find"
	ToolCompare Tool = "compare"
)

// Screen is one state of the menu. Tool is only set for KindToolDetail.
type Screen struct {
	Kind Kind
	Tool Tool
}

// Main is the screen every session starts from.
var Main = Screen{Kind: KindMain}

// Of returns the screen of kind k.
func Of(k Kind) Screen { return Screen{Kind: k} }

// ToolDetail returns the help screen of tool.
func ToolDetail(tool Tool) Screen { return Screen{Kind: KindToolDetail, Tool: tool} }

func (s Screen) String() string {
	if s.Kind == "" {
		return string(KindMain)
	}
	if s.Kind == KindToolDetail {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Tool)
	}
	return string(s.Kind)
}

// IsZero reports whether s was never set.
func (s Screen) IsZero() bool { return s.Kind == "" }

// Action is the callback data carried by a menu button.
type Action string

const (
	ActionDetails        Action = "details"
	ActionProfile        Action = "profile"
	ActionStats          Action = "stats"
	ActionTools          Action = "tools"
	ActionToolsPhone     Action = "tools_phone"
	ActionToolsFind      Action = "tools_find"
	ActionToolsCompare   Action = "tools_compare"
	ActionToolsGroupInfo Action = "tools_groupinfo"
	ActionToolsReferral  Action = "tools_referral"
	ActionRevealPhoneYes Action = "reveal_phone_yes"
	ActionRevealPhoneNo  Action = "reveal_phone_no"
	ActionBackToMain     Action = "back_to_main"
)

// RenderMode tells the caller how the previous bot message becomes the new screen.
type RenderMode int

const (
	// ModeEdit edits the previous message in place.
	ModeEdit RenderMode = iota + 1
	// ModeDeleteResend deletes the previous message and sends a new one
	// replying to the session anchor.
	ModeDeleteResend
)

func (m RenderMode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeDeleteResend:
		return "delete_resend"
	}
	return "unknown"
}

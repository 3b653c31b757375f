package dispatch

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Kind is the class an inbound update is routed by.
type Kind string

const (
	KindCommand    Kind = "command"
	KindCallback   Kind = "callback"
	KindText       Kind = "text"
	KindContact    Kind = "contact"
	KindMedia      Kind = "media"
	KindMembership Kind = "membership"
	KindIgnored    Kind = "ignored"
)

// Commands understood by the dispatcher, without the leading slash.
const (
	CmdStart         = "start"
	CmdWhois         = "whois"
	CmdFind          = "find"
	CmdCompare       = "compare"
	CmdGroupInfo     = "groupinfo"
	CmdBotInfo       = "botinfo"
	CmdGroupCommands = "groupcommands"
)

var knownCommands = map[string]struct{}{
	CmdStart:         {},
	CmdWhois:         {},
	CmdFind:          {},
	CmdCompare:       {},
	CmdGroupInfo:     {},
	CmdBotInfo:       {},
	CmdGroupCommands: {},
}

// IsCommand reports whether name is handled by the dispatcher.
func IsCommand(name string) bool {
	_, ok := knownCommands[strings.TrimPrefix(name, "/")]
	return ok
}

// Event is a classified update.
type Event struct {
	Kind Kind
	// Command and Args are set for KindCommand.
	Command string
	Args    []string

	Message  *tele.Message
	Callback *tele.Callback
	Member   *tele.ChatMemberUpdate
	Sender   *tele.User
	Chat     *tele.Chat
}

// Classify maps upd to exactly one event kind. Commands addressed to another
// bot (/cmd@other_bot) and unknown commands are treated as plain text.
func Classify(upd *tele.Update, botUsername string) Event {
	if upd == nil {
		return Event{Kind: KindIgnored}
	}
	switch {
	case upd.Callback != nil:
		ev := Event{Kind: KindCallback, Callback: upd.Callback, Sender: upd.Callback.Sender}
		if upd.Callback.Message != nil {
			ev.Chat = upd.Callback.Message.Chat
		}
		return ev
	case upd.MyChatMember != nil:
		return Event{Kind: KindMembership, Member: upd.MyChatMember, Sender: upd.MyChatMember.Sender, Chat: upd.MyChatMember.Chat}
	case upd.Message != nil:
		return classifyMessage(upd.Message, botUsername)
	}
	return Event{Kind: KindIgnored}
}

func classifyMessage(msg *tele.Message, botUsername string) Event {
	ev := Event{Kind: KindIgnored, Message: msg, Sender: msg.Sender, Chat: msg.Chat}
	switch {
	case msg.Contact != nil:
		ev.Kind = KindContact
	case msg.Photo != nil || msg.Video != nil:
		ev.Kind = KindMedia
	case msg.Text != "":
		if name, args, ok := parseCommand(msg.Text, botUsername); ok {
			ev.Kind = KindCommand
			ev.Command = name
			ev.Args = args
			break
		}
		ev.Kind = KindText
	}
	return ev
}

// parseCommand splits "/cmd@bot a b" into its name and arguments.
func parseCommand(text, botUsername string) (string, []string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(text)
	name := strings.TrimPrefix(fields[0], "/")
	if base, target, found := strings.Cut(name, "@"); found {
		bot := strings.TrimPrefix(botUsername, "@")
		if bot == "" || !strings.EqualFold(target, bot) {
			return "", nil, false
		}
		name = base
	}
	name = strings.ToLower(name)
	if _, ok := knownCommands[name]; !ok {
		return "", nil, false
	}
	return name, fields[1:], true
}

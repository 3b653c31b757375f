// Package moderation classifies inbound messages that the bot should remove.
package moderation

import (
	"regexp"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// MessageKind names the payload carried by an inbound message.
type MessageKind string

const (
	KindText    MessageKind = "text"
	KindPhoto   MessageKind = "photo"
	KindVideo   MessageKind = "video"
	KindContact MessageKind = "contact"
	KindOther   MessageKind = "other"
)

// DefaultBannedTerms is used when configuration does not supply a list.
var DefaultBannedTerms = []string{
	"احتيال",
	"مخدرات",
	"قمار",
	"رهان",
	"اباحي",
	"بورن",
	"فيديو ساخن",
}

const (
	wordClass    = `[\p{L}\p{M}\p{N}_]`
	nonWordClass = `[^\p{L}\p{M}\p{N}_]`

	// link forms that end on a word character and need a trailing boundary;
	// a bare domain is any label run ending in an alphabetic TLD
	linkTerms = `t\.me|[\p{L}\p{N}-]+(?:\.[\p{L}\p{N}-]+)*\.[a-z]{2,24}`
	// link prefixes that end on punctuation and must be followed by a word character
	linkPrefixes = `www\.|https?://`
)

// Filter matches text against a fixed banned-term disjunction.
// It is immutable after construction and safe for concurrent use.
type Filter struct {
	re *regexp.Regexp
}

// New compiles a filter for terms. Empty entries are ignored; a nil or empty
// list selects DefaultBannedTerms.
func New(terms []string) (*Filter, error) {
	if len(terms) == 0 {
		terms = DefaultBannedTerms
	}
	quoted := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	quoted = append(quoted, linkTerms)

	pattern := `(?i)(?:^|` + nonWordClass + `)(?:` +
		`(?:` + strings.Join(quoted, "|") + `)(?:$|` + nonWordClass + `)` +
		`|(?:` + linkPrefixes + `)` + wordClass +
		`)`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Filter{re: re}, nil
}

// MustNew is New that panics on an invalid term list.
func MustNew(terms []string) *Filter {
	f, err := New(terms)
	if err != nil {
		panic(err)
	}
	return f
}

// IsBanned reports whether any banned term or link appears as a whole word.
func (f *Filter) IsBanned(text string) bool {
	if f == nil || text == "" {
		return false
	}
	return f.re.MatchString(text)
}

// IsRestrictedMedia reports whether a message of kind may not be sent to the
// bot in a chat of chatType. Only photos and videos in private chats are.
func IsRestrictedMedia(chatType tele.ChatType, kind MessageKind) bool {
	if chatType != tele.ChatPrivate {
		return false
	}
	return kind == KindPhoto || kind == KindVideo
}

// KindOf classifies the payload of msg.
func KindOf(msg *tele.Message) MessageKind {
	switch {
	case msg == nil:
		return KindOther
	case msg.Photo != nil:
		return KindPhoto
	case msg.Video != nil:
		return KindVideo
	case msg.Contact != nil:
		return KindContact
	case msg.Text != "":
		return KindText
	}
	return KindOther
}

package format

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MarkdownV1 denotes Telegram markdown version 1.
	MarkdownV1 = 1
	// MarkdownV2 denotes Telegram markdown version 2.
	MarkdownV2 = 2
)

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var (
	reV1 = regexp.MustCompile("([_*`\\[])")
	reV2 = regexp.MustCompile("([" + classOf(mdV2Specials) + "])")
)

// classOf escapes every character so that '-' never forms a range.
func classOf(chars string) string {
	var b strings.Builder
	for _, r := range chars {
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeMarkdown escapes special characters for MarkdownV1 or V2.
func EscapeMarkdown(text string, version int) (string, error) {
	switch version {
	case MarkdownV1:
		return reV1.ReplaceAllString(text, `\$1`), nil
	case MarkdownV2:
		return reV2.ReplaceAllString(text, `\$1`), nil
	}
	return "", fmt.Errorf("unsupported markdown version: %d", version)
}

// MD escapes text for legacy Markdown outside of entities.
func MD(text string) string {
	s, _ := EscapeMarkdown(text, MarkdownV1)
	return s
}

// Code wraps text in a legacy Markdown code span. Escapes are not allowed
// inside entities, so backticks are replaced instead.
func Code(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "'") + "`"
}

package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		version int
		want    string
	}{
		{"v1 plain", "hello", MarkdownV1, "hello"},
		{"v1 specials", "a_b*c`d[e]", MarkdownV1, `a\_b\*c\` + "`" + `d\[e]`},
		{"v2 dot and dash", "v1.2-rc", MarkdownV2, `v1\.2\-rc`},
		{"v2 parens", "(x)", MarkdownV2, `\(x\)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EscapeMarkdown(tt.in, tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EscapeMarkdown("x", 3)
	assert.Error(t, err)
}

func TestCode(t *testing.T) {
	assert.Equal(t, "`a'b`", Code("a`b"))
	assert.Equal(t, "`@user_name`", Code("@user_name"))
	assert.Equal(t, `\_x\_`, MD("_x_"))
}

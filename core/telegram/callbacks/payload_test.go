package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		cb      *tele.Callback
		key     string
		payload string
	}{
		{"nil", nil, "", ""},
		{"plain", &tele.Callback{Data: "tools"}, "tools", ""},
		{"padded", &tele.Callback{Data: " back_to_main "}, "back_to_main", ""},
		{"payload", &tele.Callback{Data: "ref|42"}, "ref", "42"},
		{"unique prefix", &tele.Callback{Data: "\fstats|x"}, "stats", "x"},
		{"unique field", &tele.Callback{Unique: "stats", Data: "y"}, "stats", "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, p := Parse(tt.cb)
			assert.Equal(t, tt.key, k)
			assert.Equal(t, tt.payload, p)
		})
	}
}

func TestPayloadInt64(t *testing.T) {
	n, err := PayloadInt64(&tele.Callback{Data: "ref|42"})
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	_, err = PayloadInt64(&tele.Callback{Data: "ref"})
	assert.Error(t, err)
}

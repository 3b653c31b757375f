package cards

import (
	"testing"
	"time"

	"github.com/m3rciful/whoisbot/bot/stats"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestJoinDate(t *testing.T) {
	assert.Equal(t, "2015-10-06", JoinDate(180000000))
	assert.Equal(t, "2015-10-07", JoinDate(180000000+86400))
	assert.Equal(t, "—", JoinDate(1<<62))
}

func TestInfo(t *testing.T) {
	u := &tele.User{ID: 180000000, FirstName: "Ali", LastName: "Hassan", Username: "ali_h"}

	got := Info(u, "")
	assert.Contains(t, got, "`Ali Hassan`")
	assert.Contains(t, got, "`180000000`")
	assert.Contains(t, got, "`@ali_h`")
	assert.Contains(t, got, "`لا`")
	assert.Contains(t, got, "`2015-10-06`")
	assert.NotContains(t, got, "الحالة في المجموعة")

	withStatus := Info(u, tele.Administrator)
	assert.Contains(t, withStatus, "`مشرف`")
}

func TestInfoWithoutUsername(t *testing.T) {
	got := Info(&tele.User{ID: 1, FirstName: "A`b", IsBot: true}, "")
	assert.Contains(t, got, "`@—`")
	assert.Contains(t, got, "`A'b`")
	assert.Contains(t, got, "`نعم`")
}

func TestComparisonHasBothBlocks(t *testing.T) {
	got := Comparison(&tele.User{ID: 1, Username: "a"}, &tele.User{ID: 2, Username: "b"})
	assert.Contains(t, got, "`@a`")
	assert.Contains(t, got, "`@b`")
	assert.Contains(t, got, "الحساب الأول")
	assert.Contains(t, got, "الحساب الثاني")
}

func TestProfileLink(t *testing.T) {
	assert.Contains(t, ProfileLink(&tele.User{Username: "ali_h"}), "https://t.me/ali_h")
	assert.Contains(t, ProfileLink(&tele.User{}), "لا يوجد اسم مستخدم")
}

func TestStatsTexts(t *testing.T) {
	group := GroupStats(stats.ToolCounts{Whois: 1, Find: 3})
	assert.Contains(t, group, "`/find`:* 3")
	assert.Contains(t, group, "`/compare`:* 0")

	global := GlobalStats(stats.Global{
		Uptime:            time.Hour + 2*time.Minute + 3*time.Second,
		DistinctUsers:     4,
		TotalInteractions: 9,
		ActiveGroupCount:  2,
	})
	assert.Contains(t, global, "1h 2m 3s")
	assert.Contains(t, global, "المستخدمين:* 4")
	assert.NotContains(t, global, "الأكثر نشاطًا")

	busiest := GlobalStats(stats.Global{HasBusiest: true, BusiestGroup: -100})
	assert.Contains(t, busiest, "`-100`")
}

func TestGroupInfo(t *testing.T) {
	chat := &tele.Chat{ID: -1001, Type: tele.ChatSuperGroup, Title: "Go"}
	got := GroupInfo(chat, 12)
	assert.Contains(t, got, "`Go`")
	assert.Contains(t, got, "`-1001`")
	assert.Contains(t, got, "`supergroup`")
	assert.Contains(t, got, "`12`")

	assert.Contains(t, GroupInfo(chat, -1), "عدد الأعضاء:* `—`")
}

func TestReferralAndPhone(t *testing.T) {
	got := Referral("https://t.me/my_bot?start=7", 3, true, 2)
	assert.Contains(t, got, `https://t.me/my\_bot?start=7`)
	assert.Contains(t, got, "`3`")
	assert.Contains(t, got, "دعوتهم:* 2")

	assert.Contains(t, Referral("", 0, false, 0), "`—`")

	assert.Contains(t, Phone(&tele.Contact{PhoneNumber: "9647700000000"}), "`+9647700000000`")
	assert.Contains(t, Phone(&tele.Contact{PhoneNumber: "+1555"}), "`+1555`")
}

func TestBotInfo(t *testing.T) {
	got := BotInfo("my_bot", "1.2.0", "", 90*time.Second)
	assert.Contains(t, got, "`@my_bot`")
	assert.Contains(t, got, "`1.2.0`")
	assert.Contains(t, got, "`0h 1m 30s`")
	assert.Contains(t, got, "*Commit:* `—`")
}

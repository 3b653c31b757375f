// Package cards renders the live-data texts: user info cards, stats and the
// other dynamic menu screens. Output uses legacy Markdown.
package cards

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/whoisbot/bot/stats"
	"github.com/m3rciful/whoisbot/core/telegram/format"

	tele "gopkg.in/telebot.v4"
)

// Join dates are estimated linearly from the account id.
const (
	joinEpoch  = 1444108800
	joinOffset = 180000000
)

const (
	divider = "*━*\n"
	absent  = "—"
)

// JoinDate estimates the registration date of userID as YYYY-MM-DD (UTC),
// or "—" when the estimate is out of range.
func JoinDate(userID int64) string {
	ts := joinEpoch + userID - joinOffset
	t := time.Unix(ts, 0).UTC()
	if y := t.Year(); y < 1970 || y > 9999 {
		return absent
	}
	return t.Format("2006-01-02")
}

// FullName joins first and last name.
func FullName(u *tele.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func yesNo(v bool) string {
	if v {
		return "نعم"
	}
	return "لا"
}

func userLines(u *tele.User) string {
	username := u.Username
	if username == "" {
		username = absent
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  - *الاسم:* %s\n", format.Code(FullName(u)))
	fmt.Fprintf(&b, "  - *المعرف (ID):* %s\n", format.Code(strconv.FormatInt(u.ID, 10)))
	fmt.Fprintf(&b, "  - *المعرف (Username):* %s\n", format.Code("@"+username))
	fmt.Fprintf(&b, "  - *هل هو بوت:* %s\n", format.Code(yesNo(u.IsBot)))
	fmt.Fprintf(&b, "  - *تاريخ الانضمام:* %s\n", format.Code(JoinDate(u.ID)))
	return b.String()
}

// Info is the account card of u. A non-empty status is appended as the
// member status in the current group.
func Info(u *tele.User, status tele.MemberStatus) string {
	var b strings.Builder
	b.WriteString("👤 *تفاصيل الحساب*\n")
	b.WriteString(divider)
	b.WriteString(userLines(u))
	if status != "" {
		fmt.Fprintf(&b, "  - *الحالة في المجموعة:* %s\n", format.Code(StatusLabel(status)))
	}
	return b.String()
}

// Comparison renders both cards one after the other.
func Comparison(a, b *tele.User) string {
	var sb strings.Builder
	sb.WriteString("⚖️ *مقارنة حسابين*\n")
	sb.WriteString(divider)
	sb.WriteString("*الحساب الأول:*\n")
	sb.WriteString(userLines(a))
	sb.WriteString("\n*الحساب الثاني:*\n")
	sb.WriteString(userLines(b))
	return sb.String()
}

// StatusLabel translates a chat member status.
func StatusLabel(status tele.MemberStatus) string {
	switch status {
	case tele.Creator:
		return "المالك"
	case tele.Administrator:
		return "مشرف"
	case tele.Member:
		return "عضو"
	case tele.Restricted:
		return "مقيد"
	case tele.Left:
		return "غادر"
	case tele.Kicked:
		return "محظور"
	}
	return string(status)
}

// ProfileLink is plain text; usernames may contain underscores.
func ProfileLink(u *tele.User) string {
	if u.Username == "" {
		return "❌ لا يوجد اسم مستخدم لحسابك.\n" +
			"لإنشاء رابط، يرجى تعيين اسم مستخدم في إعدادات تيليجرام."
	}
	return "🔗 رابط بروفايلك:\nhttps://t.me/" + u.Username
}

// GroupStats shows the tool counters of one chat.
func GroupStats(c stats.ToolCounts) string {
	return "📊 *إحصائيات هذه المجموعة*\n" +
		divider +
		fmt.Sprintf("• *استخدام `/whois`:* %d مرة\n", c.Whois) +
		fmt.Sprintf("• *استخدام `/find`:* %d مرة\n", c.Find) +
		fmt.Sprintf("• *استخدام `/compare`:* %d مرة\n", c.Compare)
}

// GlobalStats shows the bot-wide snapshot.
func GlobalStats(g stats.Global) string {
	var b strings.Builder
	b.WriteString("📊 *إحصائيات البوت العامة*\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "• *وقت التشغيل:* %s\n", stats.FormatUptime(g.Uptime))
	fmt.Fprintf(&b, "• *إجمالي المستخدمين:* %d\n", g.DistinctUsers)
	fmt.Fprintf(&b, "• *عدد التفاعلات:* %d\n", g.TotalInteractions)
	fmt.Fprintf(&b, "• *عدد المجموعات المضاف إليها البوت:* %d\n", g.ActiveGroupCount)
	if g.HasBusiest {
		fmt.Fprintf(&b, "• *المجموعة الأكثر نشاطًا:* %s\n", format.Code(strconv.FormatInt(g.BusiestGroup, 10)))
	}
	return b.String()
}

// GroupInfo describes chat. members < 0 means the count is unknown.
func GroupInfo(chat *tele.Chat, members int) string {
	var b strings.Builder
	b.WriteString("👥 *معلومات المجموعة*\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "  - *الاسم:* %s\n", format.Code(orAbsent(chat.Title)))
	fmt.Fprintf(&b, "  - *المعرف (ID):* %s\n", format.Code(strconv.FormatInt(chat.ID, 10)))
	fmt.Fprintf(&b, "  - *النوع:* %s\n", format.Code(string(chat.Type)))
	username := absent
	if chat.Username != "" {
		username = "@" + chat.Username
	}
	fmt.Fprintf(&b, "  - *المعرف (Username):* %s\n", format.Code(username))
	count := absent
	if members >= 0 {
		count = strconv.Itoa(members)
	}
	fmt.Fprintf(&b, "  - *عدد الأعضاء:* %s\n", format.Code(count))
	return b.String()
}

// BotInfo describes the running bot.
func BotInfo(username, version, commit string, uptime time.Duration) string {
	if username != "" {
		username = "@" + strings.TrimPrefix(username, "@")
	}
	var b strings.Builder
	b.WriteString("🤖 *معلومات البوت*\n")
	b.WriteString(divider)
	fmt.Fprintf(&b, "  - *المعرف:* %s\n", format.Code(orAbsent(username)))
	fmt.Fprintf(&b, "  - *الإصدار:* %s\n", format.Code(orAbsent(version)))
	fmt.Fprintf(&b, "  - *Commit:* %s\n", format.Code(orAbsent(commit)))
	fmt.Fprintf(&b, "  - *وقت التشغيل:* %s\n", format.Code(stats.FormatUptime(uptime)))
	return b.String()
}

// Referral describes the user's invite link and attribution.
func Referral(inviteURL string, inviter int64, hasInviter bool, invited int) string {
	var b strings.Builder
	b.WriteString("🎁 *معلومات الإحالة*\n")
	b.WriteString(divider)
	if inviteURL != "" {
		fmt.Fprintf(&b, "رابط الدعوة الخاص بك:\n%s\n", format.MD(inviteURL))
	}
	who := absent
	if hasInviter {
		who = strconv.FormatInt(inviter, 10)
	}
	fmt.Fprintf(&b, "  - *دعاك:* %s\n", format.Code(who))
	fmt.Fprintf(&b, "  - *عدد من دعوتهم:* %d\n", invited)
	return b.String()
}

// Phone is the card shown after the user shared their own contact.
func Phone(c *tele.Contact) string {
	phone := c.PhoneNumber
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return "📱 *رقم هاتفك*\n" +
		divider +
		fmt.Sprintf("  - *الرقم:* %s\n", format.Code(orAbsent(phone)))
}

func orAbsent(s string) string {
	if strings.TrimSpace(s) == "" {
		return absent
	}
	return s
}

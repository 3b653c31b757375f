package dispatch

const (
	textRateLimited    = "❌ لقد تجاوزت الحد الأقصى للاستخدام. حاول مرة أخرى لاحقًا."
	textFindUsage      = "❌ الاستخدام الصحيح: `/find @username`"
	textCompareUsage   = "❌ الاستخدام الصحيح: `/compare @user1 @user2`"
	textNotFound       = "❌ لم يتم العثور على المستخدم. تأكد من صحة المعرف."
	textCompareFailed  = "❌ تعذر جلب معلومات أحد الحسابين. تأكد من صحة المعرفات وحاول مرة أخرى."
	textGroupOnly      = "❌ هذا الأمر يعمل في المجموعات فقط."
	textOwnContactOnly = "❌ يرجى مشاركة جهة الاتصال الخاصة بك فقط."

	textGroupCommands = "📋 *أوامر المجموعة*\n" +
		"━\n" +
		"• `/whois` بالرد على رسالة لعرض معلومات صاحبها\n" +
		"• `/find @username` لعرض معلومات حساب\n" +
		"• `/compare @user1 @user2` لمقارنة حسابين\n" +
		"• `/groupinfo` لعرض معلومات المجموعة\n" +
		"• أو أرسل: كشف، عرض، ايدي بالرد على رسالة"
)

// DefaultWhoisTriggers are the group phrases that act like /whois.
var DefaultWhoisTriggers = []string{"كشف", "عرض", "ايدي", "آيدي", "id", "whois", "كشف حساب"}

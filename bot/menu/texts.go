package menu

// Static screen texts. Screens whose content depends on live data are
// rendered by the dispatcher.
const (
	TextMain = "👋 أهلًا بك!\n" +
		"أنا بوت يعرض معلومات حسابك على تيليجرام. اختر أحد الخيارات أدناه:"

	TextTools = "🛠️ *قائمة الأدوات*\n" +
		"━\n" +
		"اختر أحد الأدوات أدناه لمعرفة تفاصيل استخدامها."

	TextToolFind = "🔎 *بحث عن مستخدم*\n" +
		"━\n" +
		"أرسل الأمر `/find @username` لعرض معلومات أي حساب عام."

	TextToolCompare = "⚖️ *مقارنة حسابين*\n" +
		"━\n" +
		"أرسل الأمر `/compare @user1 @user2` لعرض معلومات الحسابين معًا."

	TextGroupInfoHelp = "👥 *معلومات المجموعة*\n" +
		"━\n" +
		"أضف البوت إلى مجموعتك ثم أرسل `/groupinfo` داخلها لعرض معلوماتها."

	TextPhoneConfirm = "📱 *كشف رقم*\n" +
		"━\n" +
		"سيطلب منك البوت مشاركة جهة اتصالك ليعرض رقم هاتفك. هل أنت متأكد؟"

	TextPhoneCapture = "اضغط على الزر أدناه لمشاركة رقم هاتفك 👇"

	labelDetails      = "📄 تفاصيل حسابي"
	labelProfile      = "🔗 رابط بروفايلي"
	labelStats        = "📈 إحصائيات البوت"
	labelTools        = "🛠️ أدوات"
	labelChannel      = "قناة البوت"
	labelDeveloper    = "المطور"
	labelBackToMain   = "🔙 عودة للقائمة الرئيسية"
	labelBackToTools  = "🔙 عودة للأدوات"
	labelPhone        = "كشف رقم"
	labelFind         = "بحث عن مستخدم"
	labelCompare      = "مقارنة حسابين"
	labelGroupInfo    = "معلومات المجموعة"
	labelReferral     = "معلومات الإحالة"
	labelAddToGroup   = "➕ الكشف في مجموعة"
	labelRevealYes    = "✅ نعم، متأكد"
	labelRevealNo     = "❌ لا، عودة"
	labelShareContact = "📱 مشاركة رقمي"
)

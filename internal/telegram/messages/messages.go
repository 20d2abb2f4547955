package messages

// General
const (
	Error    = "❌ خطایی رخ داد. لطفا بعدا دوباره تلاش کنید."
	Cancel   = "لغو شد"
	MainMenu = "منوی اصلی"
)

// Buttons
const (
	ButtonBuyService    = "🛒 خرید سرویس"
	ButtonMyServices    = "📂 سرویس‌های من"
	ButtonWallet        = "👛 کیف پول"
	ButtonTopup         = "💳 افزایش موجودی"
	ButtonTestAccount   = "🎁 اکانت تست"
	ButtonAgentRequest  = "🤝 درخواست نمایندگی"
	ButtonAgentPanel    = "🛠 پنل نمایندگی"
	ButtonSupport       = "📞 پشتیبانی"
	ButtonCancel        = "❌ لغو"
	ButtonConfirm       = "✅ تایید"
	ButtonMainMenu      = "🏠 منوی اصلی"
	ButtonCustomBundle  = "⚙️ حجم و مدت دلخواه"
	ButtonRenew         = "♻️ تمدید"
	ButtonAppendGb      = "➕ افزایش حجم"
	ButtonAppendDays    = "➕ افزایش مدت"
	ButtonRevokeLink    = "🔄 تغییر لینک اشتراک"
	ButtonAccept        = "✅ تایید"
	ButtonReject        = "❌ رد"
	ButtonAgentTree     = "🌳 زیرمجموعه‌ها"
	ButtonAgentInfo     = "📊 آمار نمایندگی"
	ButtonAgentRequests = "📨 درخواست‌های نمایندگی"
	ButtonSearchUser    = "🔍 جستجوی کاربر"
	ButtonInviteLink    = "🔗 لینک دعوت"
	ButtonEditPercents  = "٪ ویرایش درصدها"
	ButtonEditLimits    = "📏 ویرایش سقف شارژ"
	ButtonIncrease      = "➕ افزایش موجودی کاربر"
	ButtonDecrease      = "➖ کاهش موجودی کاربر"
	ButtonSendMessage   = "✉️ ارسال پیام"
	ButtonDeleteService = "🗑 حذف سرویس"
	ButtonDisable       = "⏸ غیرفعال‌سازی"
	ButtonEnable        = "▶️ فعال‌سازی"
	ButtonEditCard      = "💳 ویرایش کارت"
	ButtonBlockUser     = "🚫 مسدودسازی"
	ButtonUnblockUser   = "✅ رفع مسدودی"
)

// Flow prompts
const (
	FlowUseButtons       = "لطفا از دکمه‌ها استفاده کنید"
	AskGb                = "حجم مورد نظر را به گیگابایت وارد کنید:"
	AskDays              = "مدت سرویس را به روز وارد کنید:"
	AskTopupAmount       = "مبلغ واریزی را به تومان وارد کنید:"
	AskReceiptPhoto      = "لطفا تصویر رسید پرداخت را ارسال کنید:"
	AskPersianBrandName  = "نام برند فارسی خود را وارد کنید:"
	AskEnglishBrandName  = "نام برند انگلیسی خود را وارد کنید:"
	AskCardNumber        = "شماره کارت خود را وارد کنید:"
	AskCardHolderName    = "نام دارنده کارت را وارد کنید:"
	AskPhone             = "شماره تماس خود را وارد کنید:"
	AskAgentDescription  = "توضیحی درباره فعالیت خود بنویسید:"
	AskUserPercent       = "درصد سود فروش به کاربر را وارد کنید (۰ تا ۳۰۰):"
	AskAgentPercent      = "درصد سود فروش به نماینده را وارد کنید (۰ تا ۳۰۰):"
	AskSpecialPercent    = "درصد ویژه این نماینده را وارد کنید (۰ برای حذف):"
	AskUserMinTopup      = "حداقل مبلغ شارژ کاربر را وارد کنید:"
	AskUserMaxTopup      = "حداکثر مبلغ شارژ کاربر را وارد کنید:"
	AskAgentMinTopup     = "حداقل مبلغ شارژ نماینده را وارد کنید:"
	AskAgentMaxTopup     = "حداکثر مبلغ شارژ نماینده را وارد کنید:"
	AskAdjustAmount      = "مبلغ را به تومان وارد کنید:"
	AskAdjustDescription = "توضیح این تغییر موجودی را وارد کنید:"
	AskSearchChatID      = "شناسه عددی کاربر را وارد کنید:"
	AskMessageForUser    = "پیام خود را برای این کاربر بنویسید:"
	AskTicketMessage     = "پیام خود را برای پشتیبانی بنویسید:"
)

// Validation
const (
	InvalidNumber    = "❌ لطفا یک عدد معتبر وارد کنید"
	InvalidPhoto     = "❌ لطفا یک تصویر ارسال کنید"
	InvalidText      = "❌ لطفا پیام خود را به صورت متن ارسال کنید"
	NothingFound     = "موردی یافت نشد"
	AccessDenied     = "❌ شما به این بخش دسترسی ندارید"
	BlockedAccount   = "❌ حساب کاربری شما مسدود شده است"
	TopupOutOfBounds = "❌ مبلغ وارد شده خارج از محدوده مجاز است"
)

// Results
const (
	TopupSubmitted     = "✅ رسید شما ثبت شد و پس از بررسی، موجودی شما شارژ خواهد شد."
	AgentRequestQueued = "✅ درخواست نمایندگی شما ثبت شد و پس از بررسی نتیجه اعلام می‌شود."
	PercentsUpdated    = "✅ درصدها با موفقیت به‌روز شد."
	LimitsUpdated      = "✅ سقف شارژ با موفقیت به‌روز شد."
	AdjustDone         = "✅ موجودی کاربر با موفقیت به‌روز شد."
	MessageDelivered   = "✅ پیام شما ارسال شد."
	TicketSubmitted    = "✅ پیام شما برای پشتیبانی ارسال شد."
	PurchaseDone       = "✅ سرویس شما با موفقیت ساخته شد!"
	RenewDone          = "✅ سرویس شما با موفقیت تمدید شد!"
	TestCreated        = "✅ اکانت تست شما ساخته شد!"
	LinkRevoked        = "✅ لینک اشتراک جدید ساخته شد:"
	ServiceDeleted     = "✅ سرویس حذف شد."
	ServiceDisabled    = "✅ سرویس غیرفعال شد."
	ServiceEnabled     = "✅ سرویس فعال شد."
	CardUpdated        = "✅ اطلاعات کارت با موفقیت به‌روز شد."
	UserBlocked        = "✅ کاربر مسدود شد."
	UserUnblocked      = "✅ مسدودی کاربر برداشته شد."
)

package gateway

const behpardakhtStatusOK = "0"

// Status messages from the Behpardakht IPG documentation, v1.38.
var behpardakhtStatusMessages = map[string]string{
	"0":   "تراکنش با موفقیت انجام شد",
	"11":  "شماره کارت نامعتبر است",
	"12":  "موجودی کافی نیست",
	"13":  "رمز نادرست است",
	"14":  "تعداد دفعات وارد کردن رمز بیش از حد مجاز است",
	"15":  "کارت نامعتبر است",
	"16":  "دفعات برداشت وجه بیش از حد مجاز است",
	"17":  "کاربر از انجام تراکنش منصرف شده است",
	"18":  "تاریخ انقضای کارت گذشته است",
	"19":  "مبلغ برداشت وجه بیش از حد مجاز است",
	"20":  "عدم ارسال پارامترهای احراز هویت مشتری توسط پذیرنده",
	"21":  "پذیرنده نامعتبر است",
	"22":  "ترمینال نامعتبر است",
	"23":  "خطای امنیتی رخ داده است",
	"24":  "اطلاعات کاربری پذیرنده نامعتبر است",
	"25":  "مبلغ نامعتبر است",
	"26":  "شماره مرجع تراکنش نامعتبر است",
	"27":  "شماره درخواست تکراری است",
	"28":  "شماره درخواست یافت نشد",
	"29":  "آدرس بازگشت (CallBackUrl) نامعتبر است",
	"30":  "تراکنش قبلاً با موفقیت انجام شده است",
	"31":  "پاسخ نامعتبر است",
	"32":  "فرمت اطلاعات ورودی صحیح نیست",
	"33":  "حساب نامعتبر است",
	"34":  "خطای سیستمی",
	"35":  "تراکنش ناموفق",
	"36":  "تراکنش قبلاً برگشت داده شده است",
	"37":  "تراکنش در حال انجام است",
	"38":  "مدت زمان مجاز انجام تراکنش به پایان رسیده است",
	"39":  "خطا در انجام عملیات",
	"40":  "تراکنش مورد نظر یافت نشد",
	"41":  "تراکنش قبلاً تأیید (Verify) شده است",
	"42":  "تراکنش قبلاً تسویه (Settle) شده است",
	"43":  "امکان تسویه تراکنش وجود ندارد",
	"44":  "امکان برگشت تراکنش وجود ندارد",
	"45":  "تراکنش قبلاً برگشت داده شده است",
	"46":  "تراکنش تسویه نشده است",
	"47":  "خطا در انجام عملیات تسویه",
	"48":  "خطا در انجام عملیات تأیید",
	"49":  "خطا در انجام عملیات برگشت",
	"50":  "خطای داخلی سیستم",
	"51":  "تراکنش نامعتبر است",
	"52":  "اطلاعات پرداخت ناقص است",
	"53":  "پاسخ بانک نامعتبر است",
	"54":  "خطا در ارتباط با بانک",
	"55":  "عدم تطابق اطلاعات تراکنش",
	"56":  "خطا در پردازش اطلاعات",
	"57":  "پرداخت توسط کاربر لغو شد",
	"58":  "عدم تطابق RefId",
	"59":  "عدم تطابق SaleOrderId",
	"60":  "خطای ناشناخته",
	"110": "کالا مشمول محدودیت سامانه مکنا می‌باشد",
	"111": "کد کالای ارسالی نامعتبر است",
	"112": "تعداد کالای ارسالی بیش از حد مجاز است",
	"113": "خطا در بررسی اطلاعات کالای ایرانی",
	"412": "خطا در ارتباط با شاپرک",
	"413": "خطای زمان انتظار (Timeout)",
	"414": "پاسخ نامعتبر از شاپرک",
	"415": "خطای پردازش در شاپرک",
	"416": "تراکنش توسط شاپرک رد شد",
	"417": "خطای امنیتی در شاپرک",
	"418": "عدم تطابق اطلاعات در شاپرک",
	"419": "خطای ناشناخته در شاپرک",
	"421": "IP سرور پذیرنده پیشتر به سامانه اعلام نشده است",
	"995": "خطای سیستمی (Internal Error)",
	"997": "سامانه مقصد غیر فعال می‌باشد",
}

func behpardakhtStatusMessage(code string) string {
	if message, ok := behpardakhtStatusMessages[code]; ok {
		return message
	}
	return "کد پاسخ نامشخص"
}

// Sentinel status codes reported when no gateway API can be called because
// the callback payload is unavailable.
const (
	noCallbackVerifyCode  = "1001"
	noCallbackSettleCode  = "1002"
	noCallbackReverseCode = "1003"
)

var noCallbackMessages = map[string]string{
	noCallbackVerifyCode:  "درگاه از وریفای بدون callback پشتیبانی نمی کند.",
	noCallbackSettleCode:  "درگاه از تسویه بدون callback پشتیبانی نمی کند.",
	noCallbackReverseCode: "تراکنش به صورت خودکار برگشت داده می شود.",
}

const noCallbackRawResponse = "No API is called."

package errors

import "errors"

// UserMessage converts an error into the short display-language string shown
// to the user. Raw error chains are only ever logged, never displayed.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotAuthenticated):
		return "الرجاء إدخال رمز الدخول أولاً"
	case errors.Is(err, ErrInvalidPasscode):
		return "رمز الدخول غير صحيح"
	case errors.Is(err, ErrInvalidCode):
		return "رمز التأكيد غير صحيح لهذه الباقة. يرجى التأكد من الرمز المرسل إليك."
	case errors.Is(err, ErrQuotaExhausted):
		return "انتهت حصة التحليلات لهذه الباقة."
	case errors.Is(err, ErrPlanExpired):
		return "انتهت صلاحية الباقة. يرجى إعادة التفعيل."
	case errors.Is(err, ErrRateLimited):
		return "تجاوزت حدود الاستخدام. يرجى المحاولة لاحقاً."
	case errors.Is(err, ErrServiceUnavailable):
		return "المحرك مشغول حالياً. حاول مجدداً بعد قليل."
	case errors.Is(err, ErrMalformedResponse):
		return "تعذر قراءة نتيجة التحليل. حاول مجدداً."
	case errors.Is(err, ErrCredentialNotFound):
		return "مفتاح الوصول غير صالح. يرجى إعادة الإعداد."
	case errors.Is(err, ErrSpeechUnavailable):
		return "ميزة الصوت غير متاحة في هذه الجلسة."
	case errors.Is(err, ErrInvalidImage):
		return "فشل في معالجة الصورة"
	case errors.Is(err, ErrAnalysisInFlight):
		return "هناك تحليل قيد التنفيذ بالفعل."
	default:
		return "عذراً، حدث خطأ. حاول مجدداً."
	}
}

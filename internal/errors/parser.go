package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the user-facing shape of an arbitrary error.
type ErrorInfo struct {
	Kind    Kind
	Code    string
	Message string
}

// ParseError turns a raw store or driver error into a localized message and
// code. Internal details never reach the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Kind: KindUpstream, Code: InternalServerError, Message: "حدث خطأ في الخادم"}
	}

	if appErr, ok := As(err); ok {
		return ErrorInfo{Kind: appErr.Kind, Code: appErr.Code, Message: appErr.Message}
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Kind: KindNotFound, Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	}

	// unique violation: postgres 23505 or sqlite UNIQUE constraint
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	// foreign key: postgres 23503
	if strings.Contains(errStr, "foreign key constraint") {
		if strings.Contains(errStr, "still referenced") {
			return ErrorInfo{Kind: KindConflict, Code: ResourceConflict, Message: "لا يمكن الحذف لوجود بيانات مرتبطة"}
		}
		return ErrorInfo{Kind: KindNotFound, Code: ResourceNotFound, Message: "البيانات المرتبطة غير موجودة"}
	}

	// not null: postgres 23502
	if strings.Contains(errStr, "violates not-null constraint") || strings.Contains(errStr, "not null constraint") {
		return ErrorInfo{Kind: KindValidation, Code: ValidationRequired, Message: "يوجد حقل مطلوب مفقود"}
	}

	// check: postgres 23514
	if strings.Contains(errStr, "check constraint") {
		if strings.Contains(errStr, "stock") {
			return ErrorInfo{Kind: KindConflict, Code: CheckoutInsufficientStock, Message: "الكمية المتوفرة في المخزون غير كافية"}
		}
		if strings.Contains(errStr, "rating") {
			return ErrorInfo{Kind: KindValidation, Code: ReviewInvalidRating, Message: "يجب أن يكون التقييم بين 1 و 5"}
		}
		return ErrorInfo{Kind: KindValidation, Code: ValidationInvalidInput, Message: "القيم المدخلة غير صالحة"}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Kind:    KindUpstream,
			Code:    InternalExternalAPI,
			Message: "تعذر الاتصال بخدمة خارجية، يرجى المحاولة لاحقاً",
		}
	}

	return ErrorInfo{Kind: KindUpstream, Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	switch {
	case strings.Contains(errStr, "email"):
		return ErrorInfo{Kind: KindConflict, Code: AuthEmailAlreadyExists, Message: "البريد الإلكتروني مستخدم بالفعل"}
	case strings.Contains(errStr, "slug"):
		return ErrorInfo{Kind: KindConflict, Code: CategorySlugExists, Message: "المعرّف المختصر للتصنيف مستخدم بالفعل"}
	case strings.Contains(errStr, "wishlist"):
		return ErrorInfo{Kind: KindConflict, Code: WishlistAlreadyExists, Message: "المنتج موجود بالفعل في قائمة الأمنيات"}
	case strings.Contains(errStr, "order_number"):
		return ErrorInfo{Kind: KindConflict, Code: ResourceAlreadyExists, Message: "تعذر إنشاء رقم الطلب، يرجى المحاولة مرة أخرى"}
	default:
		return ErrorInfo{Kind: KindConflict, Code: ResourceAlreadyExists, Message: "البيانات موجودة بالفعل"}
	}
}

func getNotFoundMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "product"):
		return "المنتج غير موجود"
	case strings.Contains(c, "category"):
		return "التصنيف غير موجود"
	case strings.Contains(c, "order"):
		return "الطلب غير موجود"
	case strings.Contains(c, "cart"):
		return "العنصر غير موجود في السلة"
	case strings.Contains(c, "user"):
		return "المستخدم غير موجود"
	case strings.Contains(c, "conversation"), strings.Contains(c, "chat"):
		return "المحادثة غير موجودة"
	case strings.Contains(c, "notification"):
		return "الإشعار غير موجود"
	default:
		return "البيانات المطلوبة غير موجودة"
	}
}

func getDefaultErrorMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "checkout"):
		return "تعذر إتمام الطلب، يرجى المحاولة لاحقاً"
	case strings.Contains(c, "create"):
		return "حدث خطأ أثناء الإنشاء، يرجى المحاولة لاحقاً"
	case strings.Contains(c, "update"):
		return "حدث خطأ أثناء التحديث، يرجى المحاولة لاحقاً"
	case strings.Contains(c, "delete"):
		return "حدث خطأ أثناء الحذف، يرجى المحاولة لاحقاً"
	default:
		return "حدث خطأ في الخادم، يرجى المحاولة لاحقاً"
	}
}

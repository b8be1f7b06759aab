package service

import (
	"fmt"

	apperrors "github.com/ikkim/animestore-backend/internal/errors"
)

var (
	ErrUnauthenticated    = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthUnauthorized, "يجب تسجيل الدخول أولاً")
	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthenticated, apperrors.AuthInvalidCredentials, "البريد الإلكتروني أو كلمة المرور غير صحيحة")
	ErrEmailExists        = apperrors.New(apperrors.KindConflict, apperrors.AuthEmailAlreadyExists, "البريد الإلكتروني مستخدم بالفعل")
	ErrWeakPassword       = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "يجب أن تتكون كلمة المرور من 8 أحرف على الأقل")
	ErrUserNotFound       = apperrors.New(apperrors.KindNotFound, apperrors.ResourceNotFound, "المستخدم غير موجود")

	ErrProductNotFound    = apperrors.New(apperrors.KindNotFound, apperrors.ProductNotFound, "المنتج غير موجود")
	ErrInvalidPrice       = apperrors.New(apperrors.KindValidation, apperrors.ProductInvalidPrice, "السعر غير صالح")
	ErrInvalidStock       = apperrors.New(apperrors.KindValidation, apperrors.ProductInvalidStock, "المخزون لا يمكن أن يكون سالباً")
	ErrCategoryNotFound   = apperrors.New(apperrors.KindNotFound, apperrors.CategoryNotFound, "الفئة غير موجودة")
	ErrCategoryNotEmpty   = apperrors.New(apperrors.KindConflict, apperrors.CategoryNotEmpty, "لا يمكن حذف فئة تحتوي على منتجات")
	ErrCategorySlugExists = apperrors.New(apperrors.KindConflict, apperrors.CategorySlugExists, "المعرّف المختصر للفئة مستخدم بالفعل")

	ErrEmptyCart         = apperrors.New(apperrors.KindValidation, apperrors.CartEmpty, "سلة التسوق فارغة")
	ErrCartItemNotFound  = apperrors.New(apperrors.KindNotFound, apperrors.CartItemNotFound, "العنصر غير موجود في السلة")
	ErrInvalidQuantity   = apperrors.New(apperrors.KindValidation, apperrors.CartInvalidQuantity, "الكمية يجب أن تكون 1 على الأقل")
	ErrInsufficientStock = apperrors.New(apperrors.KindConflict, apperrors.CheckoutInsufficientStock, "الكمية المطلوبة غير متوفرة في المخزون")
	ErrInvalidPayment    = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidInput, "طريقة الدفع غير مدعومة")
	ErrMissingAddress    = apperrors.New(apperrors.KindValidation, apperrors.ValidationRequired, "عنوان الشحن غير مكتمل")

	ErrOrderNotFound       = apperrors.New(apperrors.KindNotFound, apperrors.OrderNotFound, "الطلب غير موجود")
	ErrInvalidOrderStatus  = apperrors.New(apperrors.KindValidation, apperrors.OrderInvalidStatus, "حالة الطلب غير صالحة")
	ErrDuplicateStatus     = apperrors.New(apperrors.KindConflict, apperrors.OrderDuplicateStatus, "الطلب في هذه الحالة بالفعل")
	ErrCancelForbidden     = apperrors.New(apperrors.KindForbidden, apperrors.OrderCancelForbidden, "يمكنك فقط إلغاء طلبك")
	ErrCancelNotAllowed    = apperrors.New(apperrors.KindValidation, apperrors.OrderCancelNotAllowed, "لا يمكن إلغاء الطلب بعد شحنه")
	ErrInvalidRating       = apperrors.New(apperrors.KindValidation, apperrors.ReviewInvalidRating, "التقييم يجب أن يكون بين 1 و 5")
	ErrMissingReviewField  = apperrors.New(apperrors.KindValidation, apperrors.ReviewMissingField, "العنوان والتعليق مطلوبان")
	ErrWishlistExists      = apperrors.New(apperrors.KindConflict, apperrors.WishlistAlreadyExists, "المنتج موجود في قائمة الأمنيات بالفعل")
	ErrWishlistNotFound    = apperrors.New(apperrors.KindNotFound, apperrors.WishlistItemNotFound, "المنتج غير موجود في قائمة الأمنيات")
	ErrConversationMissing = apperrors.New(apperrors.KindNotFound, apperrors.ConversationNotFound, "المحادثة غير موجودة")
	ErrEmptyMessage        = apperrors.New(apperrors.KindValidation, apperrors.MessageEmpty, "لا يمكن إرسال رسالة فارغة")
	ErrMessageTooLong      = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidRange, "الرسالة طويلة جداً")
	ErrNotificationMissing = apperrors.New(apperrors.KindNotFound, apperrors.NotificationNotFound, "الإشعار غير موجود")
	ErrInvalidSettings     = apperrors.New(apperrors.KindValidation, apperrors.ValidationInvalidRange, "قيم الإعدادات غير صالحة")
)

func insufficientStockFor(productName string) *apperrors.AppError {
	return ErrInsufficientStock.WithMessage(fmt.Sprintf("الكمية المتوفرة من \"%s\" غير كافية", productName))
}

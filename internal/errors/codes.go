package errors

// Stable error codes returned in the "code" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map on the code, never on the message.

const (
	// ==================== auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email or password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED" // logged out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"

	// ==================== validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"

	// ==================== resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== catalog (PRODUCT_, CATEGORY_) ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	CategoryNotFound    = "CATEGORY_NOT_FOUND"
	CategoryNotEmpty    = "CATEGORY_NOT_EMPTY"
	CategorySlugExists  = "CATEGORY_SLUG_EXISTS"
	ProductInvalidPrice = "PRODUCT_INVALID_PRICE"
	ProductInvalidStock = "PRODUCT_INVALID_STOCK"

	// ==================== cart / checkout (CART_, CHECKOUT_) ====================
	CartItemNotFound          = "CART_ITEM_NOT_FOUND"
	CartEmpty                 = "CART_EMPTY"
	CartInvalidQuantity       = "CART_INVALID_QUANTITY"
	CheckoutInsufficientStock = "CHECKOUT_INSUFFICIENT_STOCK"

	// ==================== orders (ORDER_) ====================
	OrderNotFound         = "ORDER_NOT_FOUND"
	OrderInvalidStatus    = "ORDER_INVALID_STATUS"
	OrderDuplicateStatus  = "ORDER_DUPLICATE_STATUS"
	OrderCancelForbidden  = "ORDER_CANCEL_FORBIDDEN"
	OrderCancelNotAllowed = "ORDER_CANCEL_NOT_ALLOWED"

	// ==================== reviews (REVIEW_) ====================
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewMissingField  = "REVIEW_MISSING_FIELD"

	// ==================== wishlist (WISHLIST_) ====================
	WishlistAlreadyExists = "WISHLIST_ALREADY_EXISTS"
	WishlistItemNotFound  = "WISHLIST_ITEM_NOT_FOUND"

	// ==================== chat / notifications ====================
	ConversationNotFound = "CONVERSATION_NOT_FOUND"
	NotificationNotFound = "NOTIFICATION_NOT_FOUND"
	MessageEmpty         = "MESSAGE_EMPTY"

	// ==================== uploads (UPLOAD_) ====================
	UploadInvalidType = "UPLOAD_INVALID_TYPE"
	UploadTooLarge    = "UPLOAD_TOO_LARGE"

	// ==================== rate limit ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED"

	// ==================== internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR" // storage, mail, cache
)

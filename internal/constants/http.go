package constants

// HTTP Header Names
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderRetryAfter    = "Retry-After"
)

// Token carriers
const (
	BearerScheme    = "Bearer"
	QueryParamToken = "token"
)

// Common HTTP Error Messages
const (
	MsgUnauthorized  = "Unauthorized access"
	MsgForbidden     = "Access forbidden"
	MsgNotFound      = "Resource not found"
	MsgBadRequest    = "Invalid request"
	MsgInternalError = "Internal server error"
	MsgConflict      = "Resource already exists"
)

// HTTP Success Messages
const (
	MsgCreated = "Resource created successfully"
	MsgUpdated = "Resource updated successfully"
	MsgDeleted = "Resource deleted successfully"
	MsgSuccess = "Operation completed successfully"
)

// Auth flow messages
const (
	MsgRegistered      = "User registered successfully"
	MsgLoggedOut       = "Logged out successfully"
	MsgResetCompleted  = "Password has been reset successfully"
	MsgPasswordChanged = "Password updated successfully"

	// MsgResetRequested is returned for every reset request, whether or not
	// the address belongs to an account.
	MsgResetRequested = "If an account with that email exists, a password reset link has been sent"
)

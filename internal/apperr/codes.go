package apperr

type Code string

const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeInactive        Code = "INACTIVE"
	CodeBlocked         Code = "BLOCKED"
	CodeConflict        Code = "CONFLICT"
	CodeTooManyRequests Code = "TOO_MANY_REQUESTS"
	CodeStorage         Code = "STORAGE_ERROR"
	CodeNotification    Code = "NOTIFICATION_ERROR"
	CodeUnknown         Code = "UNKNOWN"
)

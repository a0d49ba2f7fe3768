package domain

// ErrorCode is the closed set of client-visible error codes. The codes are
// part of the API contract and must not change meaning across versions.
type ErrorCode string

const (
	ErrCodeInvalidMobile       ErrorCode = "INVALID_MOBILE"
	ErrCodeInvalidPassword     ErrorCode = "INVALID_PASSWORD"
	ErrCodeMobileRegistered    ErrorCode = "MOBILE_ALREADY_REGISTERED"
	ErrCodeIncorrectMobilePwd  ErrorCode = "INCORRECT_MOBILE_PWD"
	ErrCodeIncorrectVerifyCode ErrorCode = "INCORRECT_VERIFY_CODE"
	ErrCodeMissingAuthHeader   ErrorCode = "MISSING_AUTH_HEADER"
	ErrCodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeInternal            ErrorCode = "INTERNAL_SERVER_ERROR"
)

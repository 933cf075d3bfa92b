package shared

type ApiErrorType string

const (
	ApiErrorTypeInvalidSession ApiErrorType = "invalid_session"
	ApiErrorTypeNotFound       ApiErrorType = "not_found"
	ApiErrorTypeInvalidState   ApiErrorType = "invalid_state"

	ApiErrorTypeTransport    ApiErrorType = "transport_error"
	ApiErrorTypeAuth         ApiErrorType = "auth_error"
	ApiErrorTypeMissingScope ApiErrorType = "missing_scope"
	ApiErrorTypeValidation   ApiErrorType = "validation_error"
	ApiErrorTypeConflict     ApiErrorType = "conflict"

	ApiErrorTypeOther ApiErrorType = "other"
)

type ApiError struct {
	Type   ApiErrorType `json:"type"`
	Status int          `json:"status"`
	Msg    string       `json:"msg"`
}

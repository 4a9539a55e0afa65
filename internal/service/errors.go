package service

type ErrorCode string

const (
	ErrorCodeValidation       ErrorCode = "VALIDATION"
	ErrorCodeGroupExists      ErrorCode = "GROUP_EXISTS"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeNoResults        ErrorCode = "NO_RESULTS"
	ErrorCodePersistenceRead  ErrorCode = "PERSISTENCE_READ"
	ErrorCodePersistenceWrite ErrorCode = "PERSISTENCE_WRITE"
	ErrorCodeUnspecified      ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}

// Notice reports errors that leave the operation's effect in place: the
// registry was changed or loaded, only the file side failed or came up empty.
func (e *Error) Notice() bool {
	switch e.Code {
	case ErrorCodePersistenceRead, ErrorCodePersistenceWrite, ErrorCodeNoResults:
		return true
	default:
		return false
	}
}

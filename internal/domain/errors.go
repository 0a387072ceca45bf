package domain

import "fmt"

type ErrCode string

const (
	CodeValidation          ErrCode = "validation_error"
	CodeNotFound            ErrCode = "not_found"
	CodeForbidden           ErrCode = "forbidden"
	CodeInvalidState        ErrCode = "invalid_state"
	CodeNotModifiable       ErrCode = "not_modifiable"
	CodeCapacityExceeded    ErrCode = "capacity_exceeded"
	CodeDuplicateRequest    ErrCode = "duplicate_request"
	CodeSelfParticipation   ErrCode = "self_participation"
	CodeNotPublished        ErrCode = "not_published"
	CodeInvalidRequestState ErrCode = "invalid_request_state"
	CodeConflict            ErrCode = "conflict"
	CodeStorageUnavailable  ErrCode = "storage_unavailable"
)

type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string
}

func (e *AppError) Error() string {
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrNotFound(msg string) error          { return &AppError{Code: CodeNotFound, Message: msg} }
func ErrForbidden(msg string) error         { return &AppError{Code: CodeForbidden, Message: msg} }
func ErrInvalidState(msg string) error      { return &AppError{Code: CodeInvalidState, Message: msg} }
func ErrNotModifiable(msg string) error     { return &AppError{Code: CodeNotModifiable, Message: msg} }
func ErrCapacityExceeded(msg string) error  { return &AppError{Code: CodeCapacityExceeded, Message: msg} }
func ErrDuplicateRequest(msg string) error  { return &AppError{Code: CodeDuplicateRequest, Message: msg} }
func ErrSelfParticipation(msg string) error { return &AppError{Code: CodeSelfParticipation, Message: msg} }
func ErrNotPublished(msg string) error      { return &AppError{Code: CodeNotPublished, Message: msg} }
func ErrInvalidRequestState(msg string) error {
	return &AppError{Code: CodeInvalidRequestState, Message: msg}
}
func ErrConflict(msg string) error { return &AppError{Code: CodeConflict, Message: msg} }
func ErrStorageUnavailable(msg string) error {
	return &AppError{Code: CodeStorageUnavailable, Message: msg}
}

package app_error

import (
	"encoding/json"
	"net/http"
)

// Error kinds carried in Field; clients key their retry/notice logic off these.
const (
	KindUnknownUser  = "unknown-user"
	KindUnknownPeer  = "unknown-peer"
	KindAccessDenied = "access-denied"
	KindMuted        = "muted"
	KindPersistence  = "persistence"
	KindValidation   = "validation"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e AppError) Error() string {
	return e.Message
}

func (e AppError) JSON(w http.ResponseWriter) error {
	return json.NewEncoder(w).Encode(e)
}

// Retryable reports whether the caller may simply re-issue the operation.
// Only durable-store failures qualify; everything else is a policy rejection.
func (e AppError) Retryable() bool {
	return e.Field == KindPersistence
}

func NewAppError(code int, msg, field string) *AppError {
	return &AppError{
		Code:    code,
		Message: msg,
		Field:   field,
	}
}

func UnknownUser(user string) *AppError {
	return NewAppError(http.StatusNotFound, "Unknown sender: "+user, KindUnknownUser)
}

func UnknownPeer(user string) *AppError {
	return NewAppError(http.StatusNotFound, "Unknown receiver: "+user, KindUnknownPeer)
}

func AccessDenied(msg string) *AppError {
	return NewAppError(http.StatusForbidden, msg, KindAccessDenied)
}

func Muted() *AppError {
	return NewAppError(http.StatusForbidden, "You are muted and cannot chat right now", KindMuted)
}

func Persistence(msg string) *AppError {
	return NewAppError(http.StatusInternalServerError, msg, KindPersistence)
}

// Package apperr defines the closed set of error kinds the API surfaces.
// Handlers map kinds to HTTP status codes; everything else is a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindResourceExhausted
	KindUnauthorized
)

// Error codes, stable across the API.
const (
	CodeQuestNotFound        = "QUEST_NOT_FOUND"
	CodeTemplateNotFound     = "QUEST_TEMPLATE_NOT_FOUND"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeHomeNotFound         = "HOME_NOT_FOUND"
	CodeRewardNotFound       = "REWARD_NOT_FOUND"
	CodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	CodeAchievementNotFound  = "ACHIEVEMENT_NOT_FOUND"
	CodeBountyNotFound       = "BOUNTY_NOT_FOUND"

	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidSchedule   = "INVALID_SCHEDULE"
	CodeNegativeXP        = "NEGATIVE_XP"
	CodeDuplicateUsername = "DUPLICATE_USERNAME"

	CodeQuestAlreadyCompleted   = "QUEST_ALREADY_COMPLETED"
	CodeDuplicateSubscription   = "DUPLICATE_SUBSCRIPTION"
	CodeConsumableAlreadyActive = "CONSUMABLE_ALREADY_ACTIVE"

	CodeInsufficientGold = "INSUFFICIENT_GOLD"

	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
)

// Error is a typed application error with a structured payload.
type Error struct {
	Kind    Kind                   `json:"-"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// WithDetails attaches structured context (required vs. available, ids, etc.).
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

func ResourceExhausted(code, message string) *Error {
	return New(KindResourceExhausted, code, message)
}

func Unauthorized(code, message string) *Error {
	return New(KindUnauthorized, code, message)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status returns the HTTP status code for err. Unknown errors are 500s.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindResourceExhausted:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Payload returns the JSON body for err, hiding internals behind a generic message.
func Payload(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "Internal server error"}
}

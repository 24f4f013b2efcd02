package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation(CodeInvalidInput, "bad"), http.StatusBadRequest},
		{"resource exhausted", ResourceExhausted(CodeInsufficientGold, "broke"), http.StatusBadRequest},
		{"conflict", Conflict(CodeQuestAlreadyCompleted, "done"), http.StatusConflict},
		{"not found", NotFound(CodeQuestNotFound, "gone"), http.StatusNotFound},
		{"unauthorized", Unauthorized(CodeInvalidToken, "nope"), http.StatusUnauthorized},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped typed error", fmt.Errorf("outer: %w", NotFound(CodeUserNotFound, "gone")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Status(tt.err); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPayloadHidesInternals(t *testing.T) {
	p := Payload(errors.New("pq: connection refused"))
	if p.Code != "INTERNAL_ERROR" {
		t.Errorf("Code = %q, want INTERNAL_ERROR", p.Code)
	}
	if p.Message == "pq: connection refused" {
		t.Error("internal error detail leaked into payload")
	}
}

func TestPayloadPreservesDetails(t *testing.T) {
	err := ResourceExhausted(CodeInsufficientGold, "Not enough gold").
		WithDetails(map[string]interface{}{"required": 50, "available": 20})

	p := Payload(fmt.Errorf("claim: %w", err))
	if p.Code != CodeInsufficientGold {
		t.Errorf("Code = %q, want %q", p.Code, CodeInsufficientGold)
	}
	if p.Details["required"] != 50 || p.Details["available"] != 20 {
		t.Errorf("Details = %v", p.Details)
	}
}

func TestIsKind(t *testing.T) {
	err := Conflict(CodeConsumableAlreadyActive, "active")
	if !IsKind(err, KindConflict) {
		t.Error("IsKind(conflict, KindConflict) = false")
	}
	if IsKind(err, KindNotFound) {
		t.Error("IsKind(conflict, KindNotFound) = true")
	}
	if IsKind(errors.New("plain"), KindConflict) {
		t.Error("IsKind(plain, KindConflict) = true")
	}
}

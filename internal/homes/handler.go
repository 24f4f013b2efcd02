package homes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
	"github.com/ini272/majordomo/internal/users"
)

type Handler struct {
	store *Store
	users *users.Store
}

func NewHandler(store *Store, userStore *users.Store) *Handler {
	return &Handler{store: store, users: userStore}
}

// GetCurrent returns the authenticated user's home.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	home, err := h.store.Get(homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, home)
}

func (h *Handler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	var req models.UpdateHomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	if req.Timezone != nil && !validTimezone(*req.Timezone) {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Unknown timezone"))
		return
	}

	home, err := h.store.Update(homeID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, home)
}

// ListMembers returns every user in the authenticated user's home.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	members, err := h.users.ListByHome(homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func validTimezone(name string) bool {
	_, err := time.LoadLocation(name)
	return err == nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

package users

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid user id"))
		return
	}

	user, err := h.store.GetInHome(id, homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid user id"))
		return
	}
	if id != userID {
		writeErr(w, apperr.NotFound(apperr.CodeUserNotFound, "User not found"))
		return
	}

	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	if req.Username == nil || strings.TrimSpace(*req.Username) == "" {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Username is required"))
		return
	}

	user, err := h.store.UpdateUsername(id, homeID, strings.TrimSpace(*req.Username))
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user. Members can only delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid user id"))
		return
	}
	if id != userID {
		writeErr(w, apperr.NotFound(apperr.CodeUserNotFound, "User not found"))
		return
	}

	if err := h.store.Delete(id, homeID); err != nil {
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Amount int `json:"amount"`
}

// AddXP grants (or with a negative amount, revokes) XP. The level is
// recomputed from the new total; XP can never go below zero.
func (h *Handler) AddXP(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid user id"))
		return
	}
	if _, err := h.store.GetInHome(id, homeID); err != nil {
		writeErr(w, err)
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	user, err := h.store.AddXP(id, int64(req.Amount))
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// AddGold adjusts the gold balance, failing rather than overdrawing it.
func (h *Handler) AddGold(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid user id"))
		return
	}
	if _, err := h.store.GetInHome(id, homeID); err != nil {
		writeErr(w, err)
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	user, err := h.store.AddGold(id, req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

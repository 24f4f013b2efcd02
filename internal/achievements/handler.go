package achievements

import (
	"encoding/json"
	"net/http"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	achievements, err := h.store.ListForHome(homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, achievements)
}

func (h *Handler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	var req models.CreateAchievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	if req.Name == "" {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Name is required"))
		return
	}
	switch req.CriteriaType {
	case models.CriteriaQuestsCompleted, models.CriteriaLevelReached,
		models.CriteriaGoldEarned, models.CriteriaXPEarned, models.CriteriaBountiesCompleted:
	default:
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Unknown criteria type"))
		return
	}
	if req.CriteriaValue < 1 {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Criteria value must be positive"))
		return
	}

	ach, err := h.store.Create(homeID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ach)
}

// ListMine returns the caller's unlocked achievements.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	unlocked, err := h.store.ListUnlocked(userID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, unlocked)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

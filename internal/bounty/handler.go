package bounty

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetToday returns (creating if needed) the caller's bounty decision for the
// current day in the home's timezone.
func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	b, err := h.service.GetOrCreateToday(homeID, userID, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.response(b))
}

// Refresh discards today's decision and re-runs the selector.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	b, err := h.service.Refresh(homeID, userID, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.response(b))
}

func (h *Handler) response(b *models.DailyBounty) models.BountyResponse {
	resp := models.BountyResponse{Bounty: b, BonusMultiplier: 1}
	if b.Status == models.BountyStatusAssigned {
		resp.BonusMultiplier = 2
		if quest, err := h.service.Quest(b); err == nil {
			resp.Quest = quest
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

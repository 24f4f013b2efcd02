package rewards

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/models"
)

type Handler struct {
	store   *Store
	service *Service
}

func NewHandler(store *Store, service *Service) *Handler {
	return &Handler{store: store, service: service}
}

func (h *Handler) CreateReward(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	var req models.CreateRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	if req.Name == "" {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Name is required"))
		return
	}
	if req.Cost < 0 {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Cost cannot be negative"))
		return
	}
	if req.Effect != nil && *req.Effect != models.EffectXPBoost && *req.Effect != models.EffectShield {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Unknown reward effect"))
		return
	}

	reward, err := h.store.Create(homeID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reward)
}

func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	rewards, err := h.store.ListByHome(homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rewards)
}

func (h *Handler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	rewardID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid reward id"))
		return
	}

	resp, err := h.service.Claim(homeID, userID, rewardID, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	claims, err := h.store.ListClaims(userID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

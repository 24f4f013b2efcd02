package quests

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
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.Validation(apperr.CodeInvalidInput, "Invalid id")
	}
	return id, nil
}

// Templates

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	var req models.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}
	if req.Title == "" {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Title is required"))
		return
	}
	if req.XPReward < 0 || req.GoldReward < 0 {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Rewards cannot be negative"))
		return
	}

	skipScribe := r.URL.Query().Get("skip_ai") == "true"

	tmpl, err := h.service.CreateTemplate(homeID, userID, &req, skipScribe)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	templates, err := h.service.ListTemplates(homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	tmpl, err := h.service.GetTemplate(id, homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req models.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	tmpl, err := h.service.UpdateTemplate(id, homeID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tmpl)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := h.service.DeleteTemplate(id, homeID); err != nil {
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// InstantiateTemplate creates one quest from a template for the caller.
func (h *Handler) InstantiateTemplate(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	req := models.CreateQuestRequest{QuestTemplateID: id}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
			return
		}
		req.QuestTemplateID = id
	}

	quest, err := h.service.InstantiateTemplate(homeID, userID, &req, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, quest)
}

// Quests

func (h *Handler) CreateQuest(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	var req models.CreateStandaloneQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	quest, err := h.service.CreateStandalone(homeID, userID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, quest)
}

func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	var userID *int64
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid user_id filter"))
			return
		}
		userID = &id
	}
	var completed *bool
	if v := r.URL.Query().Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid completed filter"))
			return
		}
		completed = &b
	}

	quests, err := h.service.ListQuests(homeID, userID, completed, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quests)
}

func (h *Handler) GetQuest(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	quest, err := h.service.GetQuest(id, homeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quest)
}

func (h *Handler) UpdateQuest(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req models.UpdateQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	quest, err := h.service.UpdateQuest(id, homeID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quest)
}

func (h *Handler) DeleteQuest(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := h.service.DeleteQuest(id, homeID); err != nil {
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	resp, err := h.service.Complete(homeID, userID, id, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CheckCorruption is the manual corruption sweep trigger.
func (h *Handler) CheckCorruption(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	resp, err := h.service.CheckCorruption(homeID, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GenerateQuests is the manual generation sweep trigger.
func (h *Handler) GenerateQuests(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)

	if err := h.service.GenerateDueQuests(homeID, time.Now()); err != nil {
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscriptions

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	var req models.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	sub, err := h.service.CreateSubscription(homeID, userID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	subs, err := h.service.ListSubscriptions(userID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var req models.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	sub, err := h.service.UpdateSubscription(id, userID, &req)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	id, err := pathID(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := h.service.DeleteSubscription(id, userID); err != nil {
		writeErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpcomingSubscriptions(w http.ResponseWriter, r *http.Request) {
	homeID := r.Context().Value("home_id").(int64)
	userID := r.Context().Value("user_id").(int64)

	upcoming, err := h.service.UpcomingSubscriptions(homeID, userID, time.Now())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, upcoming)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

package auth

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ini272/majordomo/internal/apperr"
	"github.com/ini272/majordomo/internal/homes"
	"github.com/ini272/majordomo/internal/models"
	"github.com/ini272/majordomo/internal/users"
)

// JWTSecret is the HMAC signing key for auth tokens. Overridable via env so
// deployments don't share the default.
var JWTSecret = []byte(defaultSecret())

func defaultSecret() string {
	if s := os.Getenv("JWT_SIGNING_KEY"); s != "" {
		return s
	}
	return "majordomo-staging-signing-key-2026"
}

type Handler struct {
	homes *homes.Store
	users *users.Store
}

func NewHandler(homeStore *homes.Store, userStore *users.Store) *Handler {
	return &Handler{homes: homeStore, users: userStore}
}

// Signup creates a user, either founding a new home (home_name) or joining
// an existing one (invite_code).
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Username and password are required"))
		return
	}
	if len(req.Password) < 8 {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Password must be at least 8 characters"))
		return
	}
	if (req.HomeName == "") == (req.InviteCode == "") {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Provide exactly one of home_name or invite_code"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeErr(w, err)
		return
	}

	var home *models.Home
	if req.HomeName != "" {
		home, err = h.homes.Create(req.HomeName, req.Timezone)
	} else {
		home, err = h.homes.GetByInviteCode(req.InviteCode)
	}
	if err != nil {
		writeErr(w, err)
		return
	}

	user, err := h.users.Create(home.ID, req.Username, string(hashed))
	if err != nil {
		writeErr(w, err)
		return
	}

	token, err := generateToken(user.ID, home.ID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.AuthResponse{Token: token, UserID: user.ID, HomeID: home.ID})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" || req.HomeID == 0 {
		writeErr(w, apperr.Validation(apperr.CodeInvalidInput, "Username, password, and home_id are required"))
		return
	}

	user, hash, err := h.users.GetByUsername(req.HomeID, req.Username)
	if err != nil {
		// Missing user and wrong password look identical to the caller.
		writeErr(w, apperr.Unauthorized(apperr.CodeInvalidCredentials, "Invalid username or password"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeErr(w, apperr.Unauthorized(apperr.CodeInvalidCredentials, "Invalid username or password"))
		return
	}

	token, err := generateToken(user.ID, user.HomeID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{Token: token, UserID: user.ID, HomeID: user.HomeID})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	user, err := h.users.Get(userID)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func generateToken(userID, homeID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"home_id": homeID,
		"exp":     time.Now().Add(72 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JWTSecret)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.Status(err), apperr.Payload(err))
}

package handlers

import (
	"net/http"
	"time"

	"github.com/Dias221467/shadowmeet/internal/config"
	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/services"
	"github.com/Dias221467/shadowmeet/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles registration, login, onboarding and password reset.
type AuthHandler struct {
	Auth   *services.AuthService
	Resets *services.PasswordResetService
	Config *config.Config
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(auth *services.AuthService, resets *services.PasswordResetService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Auth:   auth,
		Resets: resets,
		Config: cfg,
	}
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user"`
}

// SignupHandler registers a user with a password and starts a session.
func (h *AuthHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if !decode(w, r, &in) {
		return
	}

	result, err := h.Auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, authResponse{Success: true, Token: result.Token, User: result.User})
}

// LoginHandler checks credentials and starts a session.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &credentials) {
		return
	}

	result, err := h.Auth.Login(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	log.WithField("userID", result.User.ID.Hex()).Info("User logged in successfully")
	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: result.Token, User: result.User})
}

// LogoutHandler clears the session cookie.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.Config.IsProduction(),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logout successful",
	})
}

// OnboardingHandler completes the current user's profile.
func (h *AuthHandler) OnboardingHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var in services.OnboardInput
	if !decode(w, r, &in) {
		return
	}

	updated, err := h.Auth.Onboard(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, User: updated})
}

// MeHandler returns the authenticated user.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Success: true, User: user})
}

// ForgotPasswordHandler issues a reset token. The response does not reveal
// whether the address is registered.
func (h *AuthHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.Resets.RequestReset(r.Context(), req.Email); err != nil {
		writeErrorWith(w, err, "Failed to send reset instructions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, you will receive reset instructions.",
	})
}

// ResetPasswordHandler redeems a reset token.
func (h *AuthHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var in services.ResetPasswordInput
	if !decode(w, r, &in) {
		return
	}

	if err := h.Resets.ResetPassword(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Config.TokenExpiry / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.Config.IsProduction(),
	})
}

package handlers

import (
	"net/http"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/services"
	log "github.com/sirupsen/logrus"
)

// OTPHandler handles registration by emailed one-time code.
type OTPHandler struct {
	Service *services.OTPService
}

func NewOTPHandler(service *services.OTPService) *OTPHandler {
	return &OTPHandler{Service: service}
}

// SendOTPHandler emails a fresh code.
func (h *OTPHandler) SendOTPHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := h.Service.SendCode(r.Context(), req.Email); err != nil {
		writeErrorWith(w, err, "Failed to send OTP")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

// VerifyOTPRegisterHandler consumes a code and creates the account. The
// token is returned in the body only; no cookie is set.
func (h *OTPHandler) VerifyOTPRegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in services.VerifyOTPInput
	if !decode(w, r, &in) {
		return
	}

	result, err := h.Service.VerifyAndRegister(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	log.WithField("userID", result.User.ID.Hex()).Info("OTP registration complete")
	writeJSON(w, http.StatusCreated, struct {
		Message string       `json:"message"`
		Token   string       `json:"token"`
		User    *models.User `json:"user"`
	}{"Registration complete", result.Token, result.User})
}

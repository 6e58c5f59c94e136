package handlers

import (
	"errors"
	"net/http"

	"github.com/Dias221467/shadowmeet/internal/services"
	"github.com/Dias221467/shadowmeet/pkg/middleware"
)

type ChatHandler struct {
	Service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{Service: service}
}

// TokenHandler returns a chat-provider token for the caller.
func (h *ChatHandler) TokenHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	token, err := h.Service.Token(user)
	if errors.Is(err, services.ErrChatUnavailable) {
		writeMessage(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

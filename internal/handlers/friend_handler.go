package handlers

import (
	"net/http"

	"github.com/Dias221467/shadowmeet/internal/services"
	"github.com/Dias221467/shadowmeet/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler handles the friend-request lifecycle.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler creates a new instance of FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler sends a request to the user named in the path.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recipientID, ok := objectID(w, mux.Vars(r)["id"], "user")
	if !ok {
		return
	}

	req, err := h.Service.SendFriendRequest(r.Context(), user, recipientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// AcceptFriendRequestHandler accepts a pending request addressed to the caller.
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, ok := objectID(w, mux.Vars(r)["id"], "request")
	if !ok {
		return
	}

	if _, err := h.Service.AcceptFriendRequest(r.Context(), user.ID, requestID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
}

// GetFriendRequestsHandler returns incoming pending and accepted outgoing requests.
func (h *FriendHandler) GetFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reqs, err := h.Service.GetFriendRequests(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// GetOutgoingFriendRequestsHandler returns the caller's pending sent requests.
func (h *FriendHandler) GetOutgoingFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reqs, err := h.Service.GetOutgoingRequests(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

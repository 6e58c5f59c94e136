package handlers

import (
	"net/http"

	"github.com/Dias221467/shadowmeet/internal/services"
	"github.com/Dias221467/shadowmeet/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles profile and discovery requests.
type UserHandler struct {
	Service *services.UserService
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// GetRecommendedUsersHandler lists onboarded users who are not yet friends.
func (h *UserHandler) GetRecommendedUsersHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	users, err := h.Service.GetRecommendedUsers(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetMeHandler returns the authenticated user.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetFriendsHandler lists the caller's friends.
func (h *UserHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// UpdateUserHandler patches the caller's own profile.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID, ok := objectID(w, mux.Vars(r)["id"], "user")
	if !ok {
		return
	}

	var in services.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user.ID, targetID, in)
	if err != nil {
		log.WithFields(log.Fields{
			"actorID":  user.ID.Hex(),
			"targetID": targetID.Hex(),
		}).WithError(err).Warn("Profile update rejected")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dias221467/shadowmeet/pkg/apperror"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type errorResponse struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeError maps an error to its HTTP status. Errors without a kind are
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, err error) {
	writeErrorWith(w, err, "Internal Server Error")
}

// writeErrorWith is writeError with a caller-chosen message for the 500 case.
func writeErrorWith(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		log.WithError(err).Error("Request failed")
		writeMessage(w, http.StatusInternalServerError, fallback)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(appErr, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(appErr, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(appErr, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(appErr, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(appErr, apperror.ErrConflict):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Message: appErr.Message, MissingFields: appErr.Fields})
}

// decode reads a JSON body into v. A malformed body is reported as 400.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.WithError(err).Warn("Failed to decode request body")
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// objectID parses a path parameter, writing 400 when it is not an ObjectID.
func objectID(w http.ResponseWriter, raw, what string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid "+what+" ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Dias221467/shadowmeet/internal/services"
	log "github.com/sirupsen/logrus"
)

// multipart framing allowance on top of the file itself
const uploadOverhead = 1 << 20

type UploadHandler struct {
	Service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{Service: service}
}

// UploadAvatarHandler stores the multipart "image" field and returns its URL.
func (h *UploadHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarSize+uploadOverhead)
	if err := r.ParseMultipartForm(services.MaxAvatarSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusBadRequest, "File too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxAvatarSize+1))
	if err != nil {
		log.WithError(err).Warn("Failed to read uploaded file")
		writeMessage(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	url, err := h.Service.UploadAvatar(r.Context(), data)
	if errors.Is(err, services.ErrUploadUnavailable) {
		writeMessage(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}
	if err != nil {
		writeErrorWith(w, err, "Upload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

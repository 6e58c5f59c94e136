package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Dias221467/shadowmeet/internal/storage"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 << 20

var avatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// ErrUploadUnavailable is returned when no object store is configured.
var ErrUploadUnavailable = errors.New("upload storage unavailable")

// UploadService stores avatar images in object storage.
type UploadService struct {
	store ObjectStore
	now   func() time.Time
}

func NewUploadService(store ObjectStore) *UploadService {
	return &UploadService{store: store, now: time.Now}
}

// UploadAvatar validates the image by content and returns its public URL.
func (s *UploadService) UploadAvatar(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperror.Validation("No file uploaded", "image")
	}
	if len(data) > MaxAvatarSize {
		return "", apperror.Validation("File too large", "image")
	}

	contentType := http.DetectContentType(data)
	ext, ok := avatarTypes[contentType]
	if !ok {
		return "", apperror.Validation("Unsupported image type", "image")
	}

	url, err := s.store.Put(ctx, avatarKey(s.now(), ext), contentType, data)
	if errors.Is(err, storage.ErrNotConfigured) {
		return "", ErrUploadUnavailable
	}
	if err != nil {
		logrus.WithError(err).Error("Avatar upload failed")
		return "", err
	}
	return url, nil
}

func avatarKey(t time.Time, ext string) string {
	t = t.UTC()
	return fmt.Sprintf("avatars/%04d/%02d/%02d/%s.%s", t.Year(), t.Month(), t.Day(), uuid.New(), ext)
}

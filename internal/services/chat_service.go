package services

import (
	"errors"

	"github.com/Dias221467/shadowmeet/internal/chat"
	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrChatUnavailable is returned when no chat provider is configured.
var ErrChatUnavailable = errors.New("chat provider unavailable")

// ChatService mints credentials for the external chat provider.
type ChatService struct {
	provider ChatProvider
}

func NewChatService(provider ChatProvider) *ChatService {
	return &ChatService{provider: provider}
}

// ChatToken is what the client SDK needs to connect as a user.
type ChatToken struct {
	Token  string `json:"token"`
	APIKey string `json:"apiKey,omitempty"`
}

func (s *ChatService) Token(user *models.User) (*ChatToken, error) {
	token, err := s.provider.CreateToken(user.ID.Hex())
	if errors.Is(err, chat.ErrNotConfigured) {
		return nil, ErrChatUnavailable
	}
	if err != nil {
		logrus.WithError(err).WithField("userID", user.ID.Hex()).Error("Failed to create chat token")
		return nil, err
	}
	return &ChatToken{Token: token, APIKey: s.provider.APIKey()}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/Dias221467/shadowmeet/internal/chat"
	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/queue"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"github.com/Dias221467/shadowmeet/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lowercases an address. Every store lookup uses
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return apperror.Validation("Invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperror.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	return nil
}

type field struct {
	name  string
	value string
}

// missing returns the names of blank fields, in order.
func missing(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

// Passwords hashes and checks passwords. It is the only place a plaintext
// password is turned into a stored value.
type Passwords struct {
	Cost int
}

func (p Passwords) Hash(password string) (string, error) {
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (p Passwords) Matches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Sessions issues signed session tokens.
type Sessions struct {
	Secret string
	Expiry time.Duration
}

func (s Sessions) Issue(user *models.User) (string, error) {
	token, err := jwt.GenerateToken(user.ID.Hex(), s.Secret, s.Expiry)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return token, nil
}

// AuthResult is returned by every flow that logs a user in.
type AuthResult struct {
	Token string
	User  *models.User
}

func randomAvatar() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.Intn(100)+1)
}

const sideEffectTimeout = 5 * time.Second

// detached returns a context that survives the caller's cancellation but is
// still bounded.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

// syncChatUser mirrors the profile into the chat provider. Failures are
// logged and swallowed.
func syncChatUser(ctx context.Context, provider ChatProvider, user *models.User) {
	if provider == nil {
		return
	}
	ctx, cancel := detached(ctx)
	defer cancel()

	err := provider.UpsertUser(ctx, chat.User{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Image: user.ProfilePic,
	})
	switch {
	case err == nil:
		logrus.WithField("userID", user.ID.Hex()).Info("Chat user synced")
	case errors.Is(err, chat.ErrNotConfigured):
		logrus.Debug("Chat provider not configured, skipping user sync")
	default:
		logrus.WithError(err).WithField("userID", user.ID.Hex()).Warn("Failed to sync chat user")
	}
}

// publish emits a domain event. Failures never reach the caller.
func publish(ctx context.Context, events queue.Publisher, name string, event any) {
	if events == nil {
		return
	}
	ctx, cancel := detached(ctx)
	defer cancel()

	if err := events.Publish(ctx, name, event); err != nil {
		logrus.WithError(err).WithField("queue", name).Warn("Failed to publish event")
	}
}

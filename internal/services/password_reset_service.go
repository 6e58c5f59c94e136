package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/repository"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"github.com/Dias221467/shadowmeet/pkg/email"
	"github.com/sirupsen/logrus"
)

const resetTokenBytes = 32

// PasswordResetService issues and redeems emailed password reset tokens.
// Only the sha256 of a token is ever stored.
type PasswordResetService struct {
	resets    PasswordResetStore
	users     UserStore
	mailer    email.Sender
	passwords Passwords
	clientURL string
	ttl       time.Duration
	now       func() time.Time
}

func NewPasswordResetService(resets PasswordResetStore, users UserStore, mailer email.Sender, passwords Passwords, clientURL string, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		resets:    resets,
		users:     users,
		mailer:    mailer,
		passwords: passwords,
		clientURL: strings.TrimRight(clientURL, "/"),
		ttl:       ttl,
		now:       time.Now,
	}
}

// RequestReset replaces any outstanding token for the address and mails a
// reset link. It behaves the same whether or not the address is registered.
func (s *PasswordResetService) RequestReset(ctx context.Context, address string) error {
	if strings.TrimSpace(address) == "" {
		return apperror.Validation("Email is required", "email")
	}
	normalized := NormalizeEmail(address)

	token, err := newResetToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	reset := &models.PasswordReset{
		Email:     normalized,
		TokenHash: HashResetToken(token),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.resets.Upsert(ctx, reset); err != nil {
		return err
	}

	link := resetLink(s.clientURL, token, normalized)
	if err := s.mailer.Send(ctx, resetMessage(normalized, link, s.ttl)); err != nil {
		logrus.WithError(err).WithField("email", normalized).Error("Failed to send reset email")
		return fmt.Errorf("failed to send reset instructions: %w", err)
	}

	logrus.WithField("email", normalized).Info("Password reset requested")
	return nil
}

type ResetPasswordInput struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword redeems a token and sets the new password. A redeemed or
// expired token cannot be used again.
func (s *PasswordResetService) ResetPassword(ctx context.Context, in ResetPasswordInput) error {
	fields := missing(field{"email", in.Email}, field{"token", in.Token}, field{"newPassword", in.NewPassword})
	if len(fields) > 0 {
		return apperror.Validation("email, token and newPassword are required", fields...)
	}
	if err := validatePassword(in.NewPassword); err != nil {
		return err
	}

	normalized := NormalizeEmail(in.Email)
	reset, err := s.resets.FindByEmailAndHash(ctx, normalized, HashResetToken(strings.TrimSpace(in.Token)))
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.Validation("Invalid or expired reset token")
	}
	if err != nil {
		return err
	}

	if reset.Expired(s.now()) {
		if err := s.resets.DeleteByEmail(ctx, normalized); err != nil {
			return err
		}
		return apperror.Validation("Reset token has expired. Request a new one.")
	}

	user, err := s.users.GetUserByEmail(ctx, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.resets.DeleteByEmail(ctx, normalized); err != nil {
			return err
		}
		return apperror.NotFound("User not found")
	}
	if err != nil {
		return err
	}

	hashed, err := s.passwords.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.SetPassword(ctx, user.ID, hashed); err != nil {
		return err
	}

	if err := s.resets.DeleteByEmail(ctx, normalized); err != nil {
		return err
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset completed")
	return nil
}

// PurgeExpired deletes every token that has expired.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.resets.DeleteExpired(ctx, s.now().UTC())
}

// HashResetToken returns the stored form of a plaintext reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/queue"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"github.com/Dias221467/shadowmeet/pkg/email"
	"github.com/sirupsen/logrus"
)

const otpDigits = 6

// OTPService registers users whose address was proven with an emailed code.
type OTPService struct {
	otps      OTPStore
	users     UserStore
	mailer    email.Sender
	chat      ChatProvider
	events    queue.Publisher
	sessions  Sessions
	passwords Passwords
	ttl       time.Duration
	now       func() time.Time
}

func NewOTPService(otps OTPStore, users UserStore, mailer email.Sender, chat ChatProvider, events queue.Publisher, sessions Sessions, passwords Passwords, ttl time.Duration) *OTPService {
	return &OTPService{
		otps:      otps,
		users:     users,
		mailer:    mailer,
		chat:      chat,
		events:    events,
		sessions:  sessions,
		passwords: passwords,
		ttl:       ttl,
		now:       time.Now,
	}
}

// SendCode stores a fresh code for the address and emails it. Earlier
// codes for the same address stay valid until they expire.
func (s *OTPService) SendCode(ctx context.Context, address string) error {
	if strings.TrimSpace(address) == "" {
		return apperror.Validation("Email is required", "email")
	}
	normalized := NormalizeEmail(address)
	if err := validateEmail(normalized); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}

	otp := &models.OTP{Email: normalized, Code: code, CreatedAt: s.now().UTC()}
	if err := s.otps.Create(ctx, otp); err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, otpMessage(normalized, code, s.ttl)); err != nil {
		logrus.WithError(err).WithField("email", normalized).Error("Failed to send OTP email")
		return fmt.Errorf("failed to send otp: %w", err)
	}

	logrus.WithField("email", normalized).Info("OTP sent")
	return nil
}

type VerifyOTPInput struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// VerifyAndRegister consumes a matching unexpired code and creates the
// account. All codes for the address are removed on success.
func (s *OTPService) VerifyAndRegister(ctx context.Context, in VerifyOTPInput) (*AuthResult, error) {
	fields := missing(
		field{"email", in.Email},
		field{"otp", in.OTP},
		field{"fullName", in.FullName},
		field{"password", in.Password},
	)
	if len(fields) > 0 {
		return nil, apperror.Validation("email, otp, fullName and password are required", fields...)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	normalized := NormalizeEmail(in.Email)
	code := strings.TrimSpace(in.OTP)

	active, err := s.otps.FindActiveByEmail(ctx, normalized, s.now().Add(-s.ttl))
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, apperror.Validation("No OTP request found for this email (may be expired). Please request a new OTP.")
	}
	if !containsCode(active, code) {
		return nil, apperror.Validation("Invalid OTP. Please check the code and try again.")
	}

	user, err := createUser(ctx, s.users, s.passwords, registration{
		email:       normalized,
		fullName:    strings.TrimSpace(in.FullName),
		password:    in.Password,
		conflictMsg: "Email already registered. Please login or use a different email.",
	}, s.now())
	if err != nil {
		return nil, err
	}

	// The account exists at this point; leftover codes expire through the TTL index.
	if err := s.otps.DeleteByEmail(ctx, normalized); err != nil {
		logrus.WithError(err).WithField("email", normalized).Error("Failed to delete consumed OTPs")
	}
	logrus.WithField("userID", user.ID.Hex()).Info("User registered with OTP")

	syncChatUser(ctx, s.chat, user)
	publishRegistered(ctx, s.events, user, "otp", s.now())

	token, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func containsCode(otps []models.OTP, code string) bool {
	for _, o := range otps {
		if o.Code == code {
			return true
		}
	}
	return false
}

// generateOTP returns a uniformly random fixed-width decimal code.
func generateOTP() (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(otpDigits), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

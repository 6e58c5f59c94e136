package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/queue"
	"github.com/Dias221467/shadowmeet/internal/repository"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgEmailTaken = "Email already exists, please use a different one"

// AuthService handles password registration, login and onboarding.
type AuthService struct {
	users     UserStore
	chat      ChatProvider
	events    queue.Publisher
	sessions  Sessions
	passwords Passwords
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, chat ChatProvider, events queue.Publisher, sessions Sessions, passwords Passwords) *AuthService {
	return &AuthService{
		users:     users,
		chat:      chat,
		events:    events,
		sessions:  sessions,
		passwords: passwords,
		now:       time.Now,
	}
}

type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Signup registers a user with a password and issues a session token.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	if fields := missing(field{"email", in.Email}, field{"password", in.Password}, field{"fullName", in.FullName}); len(fields) > 0 {
		return nil, apperror.Validation("All fields are required", fields...)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := createUser(ctx, s.users, s.passwords, registration{
		email:       email,
		fullName:    strings.TrimSpace(in.FullName),
		password:    in.Password,
		conflictMsg: msgEmailTaken,
	}, s.now())
	if err != nil {
		return nil, err
	}
	logrus.WithField("userID", user.ID.Hex()).Info("User signed up")

	syncChatUser(ctx, s.chat, user)
	publishRegistered(ctx, s.events, user, "password", s.now())

	token, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if fields := missing(field{"email", email}, field{"password", password}); len(fields) > 0 {
		return nil, apperror.Validation("All fields are required", fields...)
	}

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if !s.passwords.Matches(user.Password, password) {
		logrus.WithField("userID", user.ID.Hex()).Warn("Login with wrong password")
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

type OnboardInput struct {
	FullName         string `json:"fullName"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
	Gender           string `json:"gender"`
	ProfilePic       string `json:"profilePic"`
}

// Onboard completes the user's profile and marks it onboarded.
func (s *AuthService) Onboard(ctx context.Context, userID primitive.ObjectID, in OnboardInput) (*models.User, error) {
	fields := missing(
		field{"fullName", in.FullName},
		field{"bio", in.Bio},
		field{"nativeLanguage", in.NativeLanguage},
		field{"learningLanguage", in.LearningLanguage},
		field{"location", in.Location},
		field{"gender", in.Gender},
	)
	if len(fields) > 0 {
		return nil, apperror.Validation("All fields are required", fields...)
	}

	gender := models.Gender(strings.ToLower(strings.TrimSpace(in.Gender)))
	if !gender.Valid() {
		return nil, apperror.Validation("Invalid gender", "gender")
	}

	update := bson.M{
		"full_name":         strings.TrimSpace(in.FullName),
		"bio":               strings.TrimSpace(in.Bio),
		"native_language":   strings.TrimSpace(in.NativeLanguage),
		"learning_language": strings.TrimSpace(in.LearningLanguage),
		"location":          strings.TrimSpace(in.Location),
		"gender":            gender,
		"is_onboarded":      true,
	}
	if pic := strings.TrimSpace(in.ProfilePic); pic != "" {
		update["profile_pic"] = pic
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	syncChatUser(ctx, s.chat, user)
	return user, nil
}

type registration struct {
	email       string
	fullName    string
	password    string
	conflictMsg string
}

// createUser is shared by both registration flows. The unique email index
// backs up the existence check against concurrent registrations.
func createUser(ctx context.Context, users UserStore, passwords Passwords, reg registration, now time.Time) (*models.User, error) {
	existing, err := users.GetUserByEmail(ctx, reg.email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict(reg.conflictMsg)
	}

	hashed, err := passwords.Hash(reg.password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:      reg.email,
		Password:   hashed,
		FullName:   reg.fullName,
		ProfilePic: randomAvatar(),
		Gender:     models.GenderUnspecified,
		Friends:    []primitive.ObjectID{},
		CreatedAt:  now,
	}
	created, err := users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperror.Conflict(reg.conflictMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func publishRegistered(ctx context.Context, events queue.Publisher, user *models.User, method string, now time.Time) {
	publish(ctx, events, queue.UserRegistered, queue.UserRegisteredEvent{
		UserID:       user.ID.Hex(),
		Email:        user.Email,
		FullName:     user.FullName,
		Method:       method,
		RegisteredAt: now.UTC().Format(time.RFC3339),
	})
}

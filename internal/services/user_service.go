package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/repository"
	"github.com/Dias221467/shadowmeet/pkg/apperror"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxFullNameLength         = 100
	maxProfilePicLength       = 2048
	maxLearningLanguageLength = 50
)

// UserService serves discovery and profile edits.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// GetRecommendedUsers lists onboarded users who are neither the caller nor
// the caller's friends.
func (s *UserService) GetRecommendedUsers(ctx context.Context, user *models.User) ([]models.PublicUser, error) {
	exclude := make([]primitive.ObjectID, 0, len(user.Friends)+1)
	exclude = append(exclude, user.ID)
	exclude = append(exclude, user.Friends...)
	return s.repo.GetRecommended(ctx, exclude)
}

// GetFriends resolves the caller's friend set to public profiles.
func (s *UserService) GetFriends(ctx context.Context, user *models.User) ([]models.PublicUser, error) {
	return s.repo.GetUsersByIDs(ctx, user.Friends)
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	FullName         *string `json:"fullName"`
	ProfilePic       *string `json:"profilePic"`
	LearningLanguage *string `json:"learningLanguage"`
}

// UpdateProfile applies an allow-listed patch to the actor's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, targetID primitive.ObjectID, in ProfileUpdate) (*models.User, error) {
	if actorID != targetID {
		return nil, apperror.Forbidden("Forbidden")
	}

	set := bson.M{}
	checks := []struct {
		value *string
		name  string
		key   string
		max   int
	}{
		{in.FullName, "fullName", "full_name", maxFullNameLength},
		{in.ProfilePic, "profilePic", "profile_pic", maxProfilePicLength},
		{in.LearningLanguage, "learningLanguage", "learning_language", maxLearningLanguageLength},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		v := strings.TrimSpace(*c.value)
		if utf8.RuneCountInString(v) > c.max {
			return nil, apperror.Validation(c.name+" too long", c.name)
		}
		set[c.key] = v
	}

	if len(set) == 0 {
		return nil, apperror.Validation("No valid fields to update")
	}

	user, err := s.repo.UpdateProfile(ctx, targetID, set)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	return user, err
}

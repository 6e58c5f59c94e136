// Package testutil provides in-memory stand-ins for the stores and external
// collaborators so services and handlers can be tested without MongoDB,
// SMTP, Stream, S3 or RabbitMQ.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/Dias221467/shadowmeet/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore mirrors the users collection including its unique email index.
type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User

	// Err, when set, is returned by every call.
	Err error
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[primitive.ObjectID]*models.User)}
}

// public mirrors the repository's publicProjection.
func public(u *models.User) models.PublicUser {
	return models.PublicUser{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		Bio:              u.Bio,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
		Location:         u.Location,
		Gender:           u.Gender,
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Friends = append([]primitive.ObjectID{}, u.Friends...)
	return &c
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	s.users[user.ID] = cloneUser(user)
	return user, nil
}

// Add stores user directly, for test setup.
func (s *UserStore) Add(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	s.mu.Lock()
	s.users[user.ID] = cloneUser(user)
	s.mu.Unlock()
	return user
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "full_name":
			u.FullName = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "profile_pic":
			u.ProfilePic = v.(string)
		case "native_language":
			u.NativeLanguage = v.(string)
		case "learning_language":
			u.LearningLanguage = v.(string)
		case "location":
			u.Location = v.(string)
		case "gender":
			u.Gender = v.(models.Gender)
		case "is_onboarded":
			u.IsOnboarded = v.(bool)
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (s *UserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (s *UserStore) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	if !u.HasFriend(friendID) {
		u.Friends = append(u.Friends, friendID)
	}
	return nil
}

func (s *UserStore) GetRecommended(ctx context.Context, exclude []primitive.ObjectID) ([]models.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	skip := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	out := []models.PublicUser{}
	for _, u := range s.users {
		if u.IsOnboarded && !skip[u.ID] {
			out = append(out, public(u))
		}
	}
	return out, nil
}

func (s *UserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.PublicUser{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, public(u))
		}
	}
	return out, nil
}

// OTPStore keeps codes in memory. Expiry is left to the time filter.
type OTPStore struct {
	mu   sync.Mutex
	otps []models.OTP

	// DeleteErr, when set, fails DeleteByEmail without removing anything.
	DeleteErr error
}

func NewOTPStore() *OTPStore { return &OTPStore{} }

func (s *OTPStore) Create(ctx context.Context, otp *models.OTP) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	otp.ID = primitive.NewObjectID()
	s.otps = append(s.otps, *otp)
	return nil
}

func (s *OTPStore) FindActiveByEmail(ctx context.Context, email string, since time.Time) ([]models.OTP, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OTP
	for _, o := range s.otps {
		if o.Email == email && !o.CreatedAt.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OTPStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	kept := s.otps[:0]
	for _, o := range s.otps {
		if o.Email != email {
			kept = append(kept, o)
		}
	}
	s.otps = kept
	return nil
}

// Count returns the number of stored codes for email.
func (s *OTPStore) Count(email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.otps {
		if o.Email == email {
			n++
		}
	}
	return n
}

// PasswordResetStore keeps at most one token per email, like the unique index.
type PasswordResetStore struct {
	mu     sync.Mutex
	resets map[string]models.PasswordReset
}

func NewPasswordResetStore() *PasswordResetStore {
	return &PasswordResetStore{resets: make(map[string]models.PasswordReset)}
}

func (s *PasswordResetStore) Upsert(ctx context.Context, reset *models.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[reset.Email] = *reset
	return nil
}

func (s *PasswordResetStore) FindByEmailAndHash(ctx context.Context, email, tokenHash string) (*models.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[email]
	if !ok || r.TokenHash != tokenHash {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *PasswordResetStore) DeleteByEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resets, email)
	return nil
}

func (s *PasswordResetStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for email, r := range s.resets {
		if r.ExpiresAt.Before(now) {
			delete(s.resets, email)
			n++
		}
	}
	return n, nil
}

// Get returns the stored token for email, if any.
func (s *PasswordResetStore) Get(email string) (models.PasswordReset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[email]
	return r, ok
}

// FriendRequestStore enforces the pair_key uniqueness of the real collection.
type FriendRequestStore struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]*models.FriendRequest
}

func NewFriendRequestStore() *FriendRequestStore {
	return &FriendRequestStore{requests: make(map[primitive.ObjectID]*models.FriendRequest)}
}

func (s *FriendRequestStore) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.PairKey(req.Sender, req.Recipient)
	for _, r := range s.requests {
		if r.PairKey == key {
			return nil, repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	req.ID = primitive.NewObjectID()
	req.PairKey = key
	req.Status = models.FriendRequestPending
	req.CreatedAt = now
	req.UpdatedAt = now
	c := *req
	s.requests[req.ID] = &c
	return req, nil
}

func (s *FriendRequestStore) ExistsBetween(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if (r.Sender == a && r.Recipient == b) || (r.Sender == b && r.Recipient == a) {
			return true, nil
		}
	}
	return false, nil
}

func (s *FriendRequestStore) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *r
	return &c, nil
}

func (s *FriendRequestStore) MarkAccepted(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok || r.Status != models.FriendRequestPending {
		return false, nil
	}
	r.Status = models.FriendRequestAccepted
	r.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *FriendRequestStore) list(match func(*models.FriendRequest) bool) []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FriendRequest{}
	for _, r := range s.requests {
		if match(r) {
			out = append(out, *r)
		}
	}
	return out
}

func (s *FriendRequestStore) GetIncomingPending(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(func(r *models.FriendRequest) bool {
		return r.Recipient == userID && r.Status == models.FriendRequestPending
	}), nil
}

func (s *FriendRequestStore) GetOutgoingPending(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(func(r *models.FriendRequest) bool {
		return r.Sender == userID && r.Status == models.FriendRequestPending
	}), nil
}

func (s *FriendRequestStore) GetAcceptedSent(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.list(func(r *models.FriendRequest) bool {
		return r.Sender == userID && r.Status == models.FriendRequestAccepted
	}), nil
}

// NoTx runs the function without a transaction.
type NoTx struct{}

func (NoTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

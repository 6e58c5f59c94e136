package services

import (
	"context"
	"time"

	"github.com/Dias221467/shadowmeet/internal/chat"
	"github.com/Dias221467/shadowmeet/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the credential store used by the services.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	GetRecommended(ctx context.Context, exclude []primitive.ObjectID) ([]models.PublicUser, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error)
}

type OTPStore interface {
	Create(ctx context.Context, otp *models.OTP) error
	FindActiveByEmail(ctx context.Context, email string, since time.Time) ([]models.OTP, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type PasswordResetStore interface {
	Upsert(ctx context.Context, reset *models.PasswordReset) error
	FindByEmailAndHash(ctx context.Context, email, tokenHash string) (*models.PasswordReset, error)
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type FriendRequestStore interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error)
	ExistsBetween(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	MarkAccepted(ctx context.Context, id primitive.ObjectID) (bool, error)
	GetIncomingPending(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error)
	GetOutgoingPending(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error)
	GetAcceptedSent(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error)
}

// ChatProvider is the external messaging service.
type ChatProvider interface {
	UpsertUser(ctx context.Context, user chat.User) error
	CreateToken(userID string) (string, error)
	APIKey() string
}

// ObjectStore stores public binary objects and returns their URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Transactor runs fn atomically where the store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

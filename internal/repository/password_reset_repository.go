package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PasswordResetRepository keeps at most one reset token per email.
type PasswordResetRepository struct {
	collection *mongo.Collection
}

func NewPasswordResetRepository(db *mongo.Database) *PasswordResetRepository {
	return &PasswordResetRepository{
		collection: db.Collection("password_resets"),
	}
}

// Upsert replaces any existing token for reset.Email in a single write.
func (r *PasswordResetRepository) Upsert(ctx context.Context, reset *models.PasswordReset) error {
	doc := bson.M{
		"email":      reset.Email,
		"token_hash": reset.TokenHash,
		"expires_at": reset.ExpiresAt,
		"created_at": reset.CreatedAt,
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"email": reset.Email}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) FindByEmailAndHash(ctx context.Context, email, tokenHash string) (*models.PasswordReset, error) {
	var reset models.PasswordReset
	err := r.collection.FindOne(ctx, bson.M{"email": email, "token_hash": tokenHash}).Decode(&reset)
	if err != nil {
		return nil, fmt.Errorf("failed to find reset token: %w", mapFindError(err))
	}
	return &reset, nil
}

func (r *PasswordResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}

// DeleteExpired removes every token that expired before now.
func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": now}})
	if err != nil {
		logrus.WithError(err).Error("Failed to sweep expired reset tokens")
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}
	return res.DeletedCount, nil
}

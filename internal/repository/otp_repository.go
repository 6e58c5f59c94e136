package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type OTPRepository struct {
	collection *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{
		collection: db.Collection("otps"),
	}
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.OTP) error {
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}
	result, err := r.collection.InsertOne(ctx, otp)
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		otp.ID = id
	}
	return nil
}

// FindActiveByEmail returns every code for email created at or after since.
// The TTL monitor runs about once a minute, so the time filter is what makes
// expiry exact.
func (r *OTPRepository) FindActiveByEmail(ctx context.Context, email string, since time.Time) ([]models.OTP, error) {
	filter := bson.M{
		"email":      email,
		"created_at": bson.M{"$gte": since},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find otps: %w", err)
	}
	defer cursor.Close(ctx)

	var otps []models.OTP
	if err := cursor.All(ctx, &otps); err != nil {
		return nil, fmt.Errorf("failed to decode otps: %w", err)
	}
	return otps, nil
}

func (r *OTPRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("failed to delete otps: %w", err)
	}
	return nil
}

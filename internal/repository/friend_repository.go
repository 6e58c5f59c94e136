package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/shadowmeet/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friend_requests"),
	}
}

// CreateRequest inserts a pending request. A second request for the same
// pair in either direction yields ErrDuplicate through the pair_key index.
func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Status = models.FriendRequestPending
	req.PairKey = models.PairKey(req.Sender, req.Recipient)

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to send friend request: %w", mapWriteError(err))
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	req.ID = insertedID

	return req, nil
}

// ExistsBetween reports whether any request links a and b in either direction.
func (r *FriendRepository) ExistsBetween(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"sender": a, "recipient": b},
			{"sender": b, "recipient": a},
		},
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check friend requests: %w", err)
	}
	return n > 0, nil
}

func (r *FriendRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %w", mapFindError(err))
	}
	return &request, nil
}

// MarkAccepted moves a pending request to accepted. It returns false when
// the request was no longer pending.
func (r *FriendRepository) MarkAccepted(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.FriendRequestPending},
		bson.M{"$set": bson.M{
			"status":     models.FriendRequestAccepted,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to update request status: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

// GetIncomingPending lists pending requests addressed to userID.
func (r *FriendRepository) GetIncomingPending(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"recipient": userID, "status": models.FriendRequestPending})
}

// GetOutgoingPending lists pending requests sent by userID.
func (r *FriendRepository) GetOutgoingPending(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"sender": userID, "status": models.FriendRequestPending})
}

// GetAcceptedSent lists requests sent by userID that were accepted.
func (r *FriendRepository) GetAcceptedSent(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"sender": userID, "status": models.FriendRequestAccepted})
}

func (r *FriendRepository) find(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	for cursor.Next(ctx) {
		var req models.FriendRequest
		if err := cursor.Decode(&req); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, cursor.Err()
}

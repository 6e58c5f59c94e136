package repository

import (
	"context"
	"testing"

	"github.com/Dias221467/shadowmeet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const friendNS = "shadowmeet.friend_requests"

func TestFriendRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("create request sets pending and pair key", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		req, err := repo.CreateRequest(ctx, &models.FriendRequest{Sender: a, Recipient: b})
		require.NoError(mt, err)
		assert.False(mt, req.ID.IsZero())

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "pending", cmd.Lookup("documents", "0", "status").StringValue())
		assert.Equal(mt, models.PairKey(a, b), cmd.Lookup("documents", "0", "pair_key").StringValue())
	})

	mt.Run("duplicate pair maps to ErrDuplicate", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: friend_requests index: pair_key_1",
		}))

		_, err := repo.CreateRequest(ctx, &models.FriendRequest{Sender: b, Recipient: a})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("exists between matches both directions", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, friendNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: 1},
			{Key: "n", Value: int32(1)},
		}))

		ok, err := repo.ExistsBetween(ctx, a, b)
		require.NoError(mt, err)
		assert.True(mt, ok)

		evt := mt.GetStartedEvent()
		require.Equal(mt, "aggregate", evt.CommandName)
		or := func(keys ...string) primitive.ObjectID {
			return evt.Command.Lookup(append([]string{"pipeline", "0", "$match", "$or"}, keys...)...).ObjectID()
		}
		assert.Equal(mt, a, or("0", "sender"))
		assert.Equal(mt, b, or("0", "recipient"))
		assert.Equal(mt, b, or("1", "sender"))
		assert.Equal(mt, a, or("1", "recipient"))
		assert.EqualValues(mt, 1, evt.Command.Lookup("pipeline", "1", "$limit").AsInt64())
	})

	mt.Run("exists between with no match", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, friendNS, mtest.FirstBatch))

		ok, err := repo.ExistsBetween(ctx, a, b)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("mark accepted only matches pending", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		ok, err := repo.MarkAccepted(ctx, id)
		require.NoError(mt, err)
		assert.True(mt, ok)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, id, cmd.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, "pending", cmd.Lookup("updates", "0", "q", "status").StringValue())
		assert.Equal(mt, "accepted", cmd.Lookup("updates", "0", "u", "$set", "status").StringValue())
	})

	mt.Run("mark accepted on settled request", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		ok, err := repo.MarkAccepted(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("get request by id not found", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, friendNS, mtest.FirstBatch))

		_, err := repo.GetRequestByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("incoming pending filters and sorts", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		reqID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, friendNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: reqID},
			{Key: "sender", Value: a},
			{Key: "recipient", Value: b},
			{Key: "status", Value: "pending"},
		}))

		reqs, err := repo.GetIncomingPending(ctx, b)
		require.NoError(mt, err)
		require.Len(mt, reqs, 1)
		assert.Equal(mt, reqID, reqs[0].ID)
		assert.Equal(mt, a, reqs[0].Sender)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, b, cmd.Lookup("filter", "recipient").ObjectID())
		assert.Equal(mt, "pending", cmd.Lookup("filter", "status").StringValue())
		assert.EqualValues(mt, -1, cmd.Lookup("sort", "created_at").AsInt64())
	})

	mt.Run("accepted sent with no results is empty", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, friendNS, mtest.FirstBatch))

		reqs, err := repo.GetAcceptedSent(ctx, a)
		require.NoError(mt, err)
		assert.NotNil(mt, reqs)
		assert.Empty(mt, reqs)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, a, cmd.Lookup("filter", "sender").ObjectID())
		assert.Equal(mt, "accepted", cmd.Lookup("filter", "status").StringValue())
	})
}

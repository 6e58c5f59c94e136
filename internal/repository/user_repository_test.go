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

const usersNS = "shadowmeet.users"

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create user initializes friends", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.CreateUser(ctx, &models.User{Email: "ana@example.com", FullName: "Ana"})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
		assert.False(mt, user.CreatedAt.IsZero())

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "ana@example.com", cmd.Lookup("documents", "0", "email").StringValue())
		_, ok := cmd.Lookup("documents", "0", "friends").ArrayOK()
		assert.True(mt, ok)
	})

	mt.Run("taken email maps to ErrDuplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		_, err := repo.CreateUser(ctx, &models.User{Email: "ana@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("other write errors pass through", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    121,
			Message: "Document failed validation",
		}))

		_, err := repo.CreateUser(ctx, &models.User{Email: "ana@example.com"})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "email", Value: "ana@example.com"},
			{Key: "full_name", Value: "Ana"},
		}))

		user, err := repo.GetUserByEmail(ctx, "ana@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "Ana", user.FullName)
		assert.Equal(mt, "ana@example.com", mt.GetStartedEvent().Command.Lookup("filter", "email").StringValue())
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := repo.GetUserByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("update profile returns the new document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "bio", Value: "hola"},
			{Key: "is_onboarded", Value: true},
		}}))

		user, err := repo.UpdateProfile(ctx, id, bson.M{"bio": "hola", "is_onboarded": true})
		require.NoError(mt, err)
		assert.Equal(mt, "hola", user.Bio)
		assert.True(mt, user.IsOnboarded)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, id, cmd.Lookup("query", "_id").ObjectID())
		assert.Equal(mt, "hola", cmd.Lookup("update", "$set", "bio").StringValue())
		_, ok := cmd.Lookup("update", "$set", "updated_at").TimeOK()
		assert.True(mt, ok)
		assert.True(mt, cmd.Lookup("new").Boolean())
	})

	mt.Run("update profile of missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := repo.UpdateProfile(ctx, primitive.NewObjectID(), bson.M{"bio": "x"})
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("set password on missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := repo.SetPassword(ctx, primitive.NewObjectID(), "hash")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("add friend uses addToSet", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		userID, friendID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		require.NoError(mt, repo.AddFriend(ctx, userID, friendID))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, userID, cmd.Lookup("updates", "0", "q", "_id").ObjectID())
		assert.Equal(mt, friendID, cmd.Lookup("updates", "0", "u", "$addToSet", "friends").ObjectID())
	})

	mt.Run("recommended excludes ids and requires onboarding", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		self, friend, other := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: other},
			{Key: "full_name", Value: "Bo"},
			{Key: "native_language", Value: "english"},
		}))

		users, err := repo.GetRecommended(ctx, []primitive.ObjectID{self, friend})
		require.NoError(mt, err)
		require.Len(mt, users, 1)
		assert.Equal(mt, other, users[0].ID)
		assert.Equal(mt, "english", users[0].NativeLanguage)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, self, cmd.Lookup("filter", "_id", "$nin", "0").ObjectID())
		assert.Equal(mt, friend, cmd.Lookup("filter", "_id", "$nin", "1").ObjectID())
		assert.True(mt, cmd.Lookup("filter", "is_onboarded").Boolean())
		_, hasPassword := cmd.Lookup("projection", "password").Int32OK()
		assert.False(mt, hasPassword)
		assert.EqualValues(mt, 1, cmd.Lookup("projection", "full_name").AsInt64())
	})

	mt.Run("users by ids with no ids skips the query", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)

		users, err := repo.GetUsersByIDs(ctx, nil)
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
		assert.Nil(mt, mt.GetStartedEvent())
	})

	mt.Run("users by ids", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "full_name", Value: "Bo"},
		}))

		users, err := repo.GetUsersByIDs(ctx, []primitive.ObjectID{id})
		require.NoError(mt, err)
		require.Len(mt, users, 1)
		assert.Equal(mt, id, mt.GetStartedEvent().Command.Lookup("filter", "_id", "$in", "0").ObjectID())
	})
}

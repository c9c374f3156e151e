package mongodb

import (
	"context"
	"testing"
	"time"

	"community-forum/internal/model"
	"community-forum/internal/repository/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFindCommunityByName(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.communities", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "name", Value: "abc"},
			{Key: "description", Value: "all about abc"},
			{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
		}))

		repo := NewCommunityRepository(mt.DB)
		community, err := repo.FindCommunityByName(context.Background(), "abc")
		require.NoError(t, err)
		require.NotNil(t, community)
		assert.Equal(t, "c1", community.ID)
		assert.Equal(t, "all about abc", community.Description)
		assert.True(t, community.CreatedAt.Equal(created))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.communities", mtest.FirstBatch))

		repo := NewCommunityRepository(mt.DB)
		community, err := repo.FindCommunityByName(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, community)
	})
}

func TestFindCommentsByPostIDs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes serialized timestamps", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.comments", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "k1"},
				{Key: "postId", Value: "p1"},
				{Key: "content", Value: "first"},
				{Key: "createdAt", Value: "2024-05-01T10:00:00Z"},
			},
			bson.D{
				{Key: "_id", Value: "k2"},
				{Key: "postId", Value: "p2"},
				{Key: "content", Value: "second"},
				{Key: "createdAt", Value: primitive.NewDateTimeFromTime(time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC))},
			},
		))

		repo := NewCommunityRepository(mt.DB)
		comments, err := repo.FindCommentsByPostIDs(context.Background(), []string{"p1", "p2"})
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "p1", comments[0].PostID)
		assert.True(t, comments[0].CreatedAt.Before(comments[1].CreatedAt.Time))
	})
}

func TestUpdatePostMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no match", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		repo := NewCommunityRepository(mt.DB)
		err := repo.UpdatePost(context.Background(), "nope", "t", "c")
		assert.ErrorIs(t, err, interfaces.ErrNotFound)
	})
}

func TestCreateReactionAssignsID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewCommunityRepository(mt.DB)
		reaction := &model.Reaction{
			TargetType: model.TargetPost,
			TargetID:   "p1",
			UserID:     "u1",
			Type:       model.ReactionLike,
		}
		require.NoError(t, repo.CreateReaction(context.Background(), reaction))
		assert.NotEmpty(t, reaction.ID)
	})
}

func TestCountMembers(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "forum.members", mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(7)}}))

		repo := NewMemberRepository(mt.DB)
		n, err := repo.CountMembers(context.Background(), "c1")
		require.NoError(t, err)
		assert.Equal(t, 7, n)
	})
}

package mongodb

import (
	"context"
	"errors"
	"time"

	"community-forum/internal/model"
	"community-forum/internal/repository/interfaces"
	"community-forum/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	communitiesCollection = "communities"
	postsCollection       = "posts"
	commentsCollection    = "comments"
	likesCollection       = "likes"
	membersCollection     = "members"
)

type communityRepository struct {
	db *mongo.Database
}

func NewCommunityRepository(db *mongo.Database) *communityRepository {
	return &communityRepository{db: db}
}

func newID() string {
	return primitive.NewObjectID().Hex()
}

func (r *communityRepository) FindCommunityByName(ctx context.Context, name string) (*model.Community, error) {
	var community model.Community
	err := r.db.Collection(communitiesCollection).FindOne(ctx, bson.M{"name": name}).Decode(&community)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) CreateCommunity(ctx context.Context, community *model.Community) error {
	if community.ID == "" {
		community.ID = newID()
	}
	if community.CreatedAt.IsZero() {
		community.CreatedAt = model.Now()
	}
	if _, err := r.db.Collection(communitiesCollection).InsertOne(ctx, community); err != nil {
		util.Logger.Error("创建社区失败", zap.Error(err), zap.String("name", community.Name))
		return err
	}
	return nil
}

func (r *communityRepository) ListPosts(ctx context.Context, communityID string) ([]*model.Post, error) {
	cursor, err := r.db.Collection(postsCollection).Find(ctx, bson.M{"communityId": communityID})
	if err != nil {
		return nil, err
	}
	posts := make([]*model.Post, 0)
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *communityRepository) CreatePost(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	if _, err := r.db.Collection(postsCollection).InsertOne(ctx, post); err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err), zap.String("community_id", post.CommunityID))
		return err
	}
	util.Logger.Info("帖子创建成功", zap.String("post_id", post.ID))
	return nil
}

func (r *communityRepository) UpdatePost(ctx context.Context, postID, title, content string) error {
	update := bson.M{"$set": bson.M{
		"title":     title,
		"content":   content,
		"updatedAt": model.NewTimestamp(time.Now()),
	}}
	result, err := r.db.Collection(postsCollection).UpdateOne(ctx, bson.M{"_id": postID}, update)
	if err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err), zap.String("post_id", postID))
		return err
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *communityRepository) DeletePost(ctx context.Context, postID string) error {
	util.Logger.Info("开始删除帖子", zap.String("post_id", postID))
	return r.deleteByID(ctx, postsCollection, postID)
}

func (r *communityRepository) FindCommentsByPostIDs(ctx context.Context, postIDs []string) ([]*model.Comment, error) {
	cursor, err := r.db.Collection(commentsCollection).Find(ctx, bson.M{"postId": bson.M{"$in": postIDs}})
	if err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *communityRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	util.Logger.Info("开始创建评论",
		zap.String("author_id", comment.AuthorID),
		zap.String("post_id", comment.PostID))

	if comment.ID == "" {
		comment.ID = newID()
	}
	if _, err := r.db.Collection(commentsCollection).InsertOne(ctx, comment); err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err))
		return err
	}
	return nil
}

func (r *communityRepository) DeleteComment(ctx context.Context, commentID string) error {
	return r.deleteByID(ctx, commentsCollection, commentID)
}

func (r *communityRepository) DeleteUserComments(ctx context.Context, userID, communityID string) (int64, error) {
	result, err := r.db.Collection(commentsCollection).DeleteMany(ctx, bson.M{
		"authorId":    userID,
		"communityId": communityID,
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *communityRepository) FindReactionsByTargets(ctx context.Context, targetType model.TargetType, targetIDs []string) ([]*model.Reaction, error) {
	filter := bson.M{
		"targetType": targetType,
		"targetId":   bson.M{"$in": targetIDs},
	}
	cursor, err := r.db.Collection(likesCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	reactions := make([]*model.Reaction, 0)
	if err := cursor.All(ctx, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}

func (r *communityRepository) FindReaction(ctx context.Context, targetType model.TargetType, targetID, userID string) (*model.Reaction, error) {
	filter := bson.M{
		"targetType": targetType,
		"targetId":   targetID,
		"userId":     userID,
	}
	var reaction model.Reaction
	err := r.db.Collection(likesCollection).FindOne(ctx, filter).Decode(&reaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}

func (r *communityRepository) CreateReaction(ctx context.Context, reaction *model.Reaction) error {
	if reaction.ID == "" {
		reaction.ID = newID()
	}
	_, err := r.db.Collection(likesCollection).InsertOne(ctx, reaction)
	return err
}

func (r *communityRepository) UpdateReactionType(ctx context.Context, reactionID string, reactionType model.ReactionType) error {
	result, err := r.db.Collection(likesCollection).UpdateOne(ctx,
		bson.M{"_id": reactionID},
		bson.M{"$set": bson.M{"type": reactionType}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *communityRepository) DeleteReaction(ctx context.Context, reactionID string) error {
	return r.deleteByID(ctx, likesCollection, reactionID)
}

func (r *communityRepository) DeleteUserReactions(ctx context.Context, userID string, targetType model.TargetType, targetIDs []string) (int64, error) {
	result, err := r.db.Collection(likesCollection).DeleteMany(ctx, bson.M{
		"userId":     userID,
		"targetType": targetType,
		"targetId":   bson.M{"$in": targetIDs},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *communityRepository) deleteByID(ctx context.Context, collection, id string) error {
	result, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		util.Logger.Error("删除记录失败", zap.Error(err),
			zap.String("collection", collection), zap.String("id", id))
		return err
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

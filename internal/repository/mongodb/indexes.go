package mongodb

import (
	"context"

	"community-forum/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes 创建查询和唯一约束所需的索引。
// likes 上的唯一索引保证每个用户对同一对象最多一条点赞/点踩记录。
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		communitiesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "communityId", Value: 1}}},
		},
		likesCollection: {
			{
				Keys: bson.D{
					{Key: "targetType", Value: 1},
					{Key: "targetId", Value: 1},
					{Key: "userId", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		membersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "communityId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "communityId", Value: 1}}},
		},
	}

	for collection, models := range specs {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			util.Logger.Error("创建索引失败", zap.Error(err), zap.String("collection", collection))
			return err
		}
		util.Logger.Debug("索引已就绪", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}

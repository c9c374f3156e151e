package interfaces

import (
	"context"
	"errors"

	"community-forum/internal/model"
)

// ErrNotFound 更新或删除的目标记录不存在
var ErrNotFound = errors.New("record not found")

// CommunityRepository 定义了社区、帖子、评论和点赞的数据访问接口
type CommunityRepository interface {
	// FindCommunityByName 找不到时返回 nil, nil
	FindCommunityByName(ctx context.Context, name string) (*model.Community, error)
	CreateCommunity(ctx context.Context, community *model.Community) error

	ListPosts(ctx context.Context, communityID string) ([]*model.Post, error)
	CreatePost(ctx context.Context, post *model.Post) error
	UpdatePost(ctx context.Context, postID, title, content string) error
	DeletePost(ctx context.Context, postID string) error

	// FindCommentsByPostIDs 按 postId in postIDs 查询，调用方负责控制 postIDs 的长度
	FindCommentsByPostIDs(ctx context.Context, postIDs []string) ([]*model.Comment, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, commentID string) error
	DeleteUserComments(ctx context.Context, userID, communityID string) (int64, error)

	// FindReactionsByTargets 按 targetType == t && targetId in targetIDs 查询
	FindReactionsByTargets(ctx context.Context, targetType model.TargetType, targetIDs []string) ([]*model.Reaction, error)
	// FindReaction 找不到时返回 nil, nil
	FindReaction(ctx context.Context, targetType model.TargetType, targetID, userID string) (*model.Reaction, error)
	CreateReaction(ctx context.Context, reaction *model.Reaction) error
	UpdateReactionType(ctx context.Context, reactionID string, reactionType model.ReactionType) error
	DeleteReaction(ctx context.Context, reactionID string) error
	DeleteUserReactions(ctx context.Context, userID string, targetType model.TargetType, targetIDs []string) (int64, error)
}

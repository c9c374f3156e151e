package service

import (
	"context"
	stderrors "errors"
	"time"

	"community-forum/internal/metrics"
	"community-forum/internal/model"
	"community-forum/internal/repository/interfaces"
	serrors "community-forum/internal/service/errors"
	"community-forum/internal/util"

	"go.uber.org/zap"
)

// DefaultInQueryLimit 是单次 "in" 查询允许的最大 id 数量
const DefaultInQueryLimit = 30

// EventPublisher 发布领域事件，失败不影响写入结果
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// CommunityServiceInterface 是帖子页面依赖的全部远程操作
type CommunityServiceInterface interface {
	LoadCommunityData(ctx context.Context, name string) (*model.Community, error)
	GetMemberCount(ctx context.Context, communityID string) (int, error)
	LoadPosts(ctx context.Context, communityID string) (*model.PostFeed, error)
	CreatePost(ctx context.Context, communityID string, draft model.PostDraft) (*model.Post, error)
	UpdatePost(ctx context.Context, postID, title, content string) error
	DeletePost(ctx context.Context, postID string) error
	AddComment(ctx context.Context, communityID, postID string, draft model.CommentDraft) (*model.Comment, error)
	DeleteComment(ctx context.Context, commentID string) error
	HandleReaction(ctx context.Context, targetType model.TargetType, targetID, userID string, kind model.ReactionType) (model.ReactionType, error)
	JoinCommunity(ctx context.Context, userID, communityName string) error
	LeaveCommunity(ctx context.Context, userID, communityName string) error
}

type CommunityService struct {
	repo      interfaces.CommunityRepository
	members   interfaces.MemberRepository
	events    EventPublisher
	batchSize int
}

// 确保 CommunityService 实现了 CommunityServiceInterface
var _ CommunityServiceInterface = (*CommunityService)(nil)

// NewCommunityService 创建社区服务。events 可以为 nil；batchSize <= 0 时使用 DefaultInQueryLimit。
func NewCommunityService(repo interfaces.CommunityRepository, members interfaces.MemberRepository, events EventPublisher, batchSize int) *CommunityService {
	if batchSize <= 0 {
		batchSize = DefaultInQueryLimit
	}
	return &CommunityService{
		repo:      repo,
		members:   members,
		events:    events,
		batchSize: batchSize,
	}
}

func transportError(operation string, err error) error {
	if stderrors.Is(err, interfaces.ErrNotFound) {
		return serrors.Wrap(serrors.ErrNotFound, operation, err)
	}
	return serrors.Wrap(serrors.ErrDatabase, operation, err)
}

func (s *CommunityService) publish(ctx context.Context, event model.Event) {
	if s.events == nil {
		return
	}
	event.OccurredAt = model.Now()
	if err := s.events.Publish(ctx, event); err != nil {
		metrics.IncEventFailure(event.Type)
		util.Logger.Warn("发布事件失败", zap.String("type", event.Type), zap.Error(err))
	}
}

// LoadCommunityData 按名称加载社区，不存在时返回 ErrNotFound
func (s *CommunityService) LoadCommunityData(ctx context.Context, name string) (*model.Community, error) {
	community, err := s.repo.FindCommunityByName(ctx, name)
	metrics.ObserveCall("find_community", err)
	if err != nil {
		return nil, transportError("load community", err)
	}
	if community == nil {
		return nil, serrors.New(serrors.ErrNotFound, "Community not found")
	}
	return community, nil
}

func (s *CommunityService) GetMemberCount(ctx context.Context, communityID string) (int, error) {
	n, err := s.members.CountMembers(ctx, communityID)
	metrics.ObserveCall("count_members", err)
	if err != nil {
		return 0, transportError("count members", err)
	}
	if n < 0 {
		n = 0
	}
	return n, nil
}

// CreateCommunity 创建社区，并把创建者登记为 creator 成员
func (s *CommunityService) CreateCommunity(ctx context.Context, community *model.Community, creator *model.User) error {
	if creator == nil {
		return serrors.New(serrors.ErrUnauthorized, "Please login to create a community")
	}
	existing, err := s.repo.FindCommunityByName(ctx, community.Name)
	if err != nil {
		return transportError("create community", err)
	}
	if existing != nil {
		return serrors.New(serrors.ErrInvalidInput, "Community name is already taken")
	}

	community.CreatorID = creator.ID
	if err := s.repo.CreateCommunity(ctx, community); err != nil {
		metrics.ObserveCall("create_community", err)
		return transportError("create community", err)
	}
	err = s.members.CreateMember(ctx, &model.Member{
		UserID:        creator.ID,
		CommunityID:   community.ID,
		CommunityName: community.Name,
		Role:          model.RoleCreator,
	})
	metrics.ObserveCall("create_community", err)
	if err != nil {
		return transportError("register community creator", err)
	}
	util.Logger.Info("社区创建成功", zap.String("community_id", community.ID), zap.String("name", community.Name))
	return nil
}

// LoadPosts 加载社区的帖子，再按帖子 id 分批加载评论和帖子点赞。
// 没有帖子时不会发出评论和点赞查询。
func (s *CommunityService) LoadPosts(ctx context.Context, communityID string) (*model.PostFeed, error) {
	start := time.Now()
	defer func() { metrics.ObserveFeedLoad(time.Since(start)) }()

	posts, err := s.repo.ListPosts(ctx, communityID)
	metrics.ObserveCall("list_posts", err)
	if err != nil {
		return nil, transportError("load posts", err)
	}

	feed := &model.PostFeed{
		Posts:     posts,
		Comments:  []*model.Comment{},
		Reactions: []*model.Reaction{},
	}

	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}
	if len(postIDs) == 0 {
		return feed, nil
	}

	for _, batch := range chunkIDs(postIDs, s.batchSize) {
		comments, err := s.repo.FindCommentsByPostIDs(ctx, batch)
		metrics.IncInQueryBatch("comments")
		metrics.ObserveCall("find_comments", err)
		if err != nil {
			return nil, transportError("load comments", err)
		}
		feed.Comments = append(feed.Comments, comments...)
	}

	for _, batch := range chunkIDs(postIDs, s.batchSize) {
		reactions, err := s.repo.FindReactionsByTargets(ctx, model.TargetPost, batch)
		metrics.IncInQueryBatch("likes")
		metrics.ObserveCall("find_reactions", err)
		if err != nil {
			return nil, transportError("load reactions", err)
		}
		feed.Reactions = append(feed.Reactions, reactions...)
	}

	return feed, nil
}

func (s *CommunityService) CreatePost(ctx context.Context, communityID string, draft model.PostDraft) (*model.Post, error) {
	if draft.AuthorID == "" {
		return nil, serrors.New(serrors.ErrInvalidInput, "Please login to create a post")
	}
	post := &model.Post{
		CommunityID: communityID,
		Title:       draft.Title,
		Content:     draft.Content,
		AuthorID:    draft.AuthorID,
		AuthorName:  draft.AuthorName,
		CreatedAt:   model.Now(),
	}
	err := s.repo.CreatePost(ctx, post)
	metrics.ObserveCall("create_post", err)
	if err != nil {
		return nil, transportError("create post", err)
	}
	s.publish(ctx, model.Event{Type: model.EventPostCreated, CommunityID: communityID, TargetID: post.ID, UserID: post.AuthorID})
	return post, nil
}

func (s *CommunityService) UpdatePost(ctx context.Context, postID, title, content string) error {
	err := s.repo.UpdatePost(ctx, postID, title, content)
	metrics.ObserveCall("update_post", err)
	if err != nil {
		return transportError("update post", err)
	}
	s.publish(ctx, model.Event{Type: model.EventPostUpdated, TargetID: postID})
	return nil
}

func (s *CommunityService) DeletePost(ctx context.Context, postID string) error {
	err := s.repo.DeletePost(ctx, postID)
	metrics.ObserveCall("delete_post", err)
	if err != nil {
		return transportError("delete post", err)
	}
	s.publish(ctx, model.Event{Type: model.EventPostDeleted, TargetID: postID})
	return nil
}

func (s *CommunityService) AddComment(ctx context.Context, communityID, postID string, draft model.CommentDraft) (*model.Comment, error) {
	if draft.AuthorID == "" {
		return nil, serrors.New(serrors.ErrInvalidInput, "Please login to comment")
	}
	comment := &model.Comment{
		CommunityID: communityID,
		PostID:      postID,
		Content:     draft.Content,
		AuthorID:    draft.AuthorID,
		AuthorName:  draft.AuthorName,
		CreatedAt:   model.Now(),
	}
	err := s.repo.CreateComment(ctx, comment)
	metrics.ObserveCall("create_comment", err)
	if err != nil {
		return nil, transportError("add comment", err)
	}
	s.publish(ctx, model.Event{Type: model.EventCommentCreated, CommunityID: communityID, TargetID: comment.ID, UserID: comment.AuthorID})
	return comment, nil
}

// DeleteComment 直接按 id 删除评论记录
func (s *CommunityService) DeleteComment(ctx context.Context, commentID string) error {
	err := s.repo.DeleteComment(ctx, commentID)
	metrics.ObserveCall("delete_comment", err)
	if err != nil {
		return transportError("delete comment", err)
	}
	s.publish(ctx, model.Event{Type: model.EventCommentDeleted, TargetID: commentID})
	return nil
}

// HandleReaction 切换用户对某个对象的点赞/点踩，返回调用后生效的类型（没有则为空）。
// 重复同一种会取消；选择另一种会替换原来的记录。
func (s *CommunityService) HandleReaction(ctx context.Context, targetType model.TargetType, targetID, userID string, kind model.ReactionType) (model.ReactionType, error) {
	if !targetType.Valid() {
		return "", serrors.New(serrors.ErrInvalidInput, "Invalid reaction target")
	}
	if !kind.Valid() {
		return "", serrors.New(serrors.ErrInvalidInput, "Invalid reaction type")
	}
	if userID == "" {
		return "", serrors.New(serrors.ErrInvalidInput, "Please login to react")
	}

	existing, err := s.repo.FindReaction(ctx, targetType, targetID, userID)
	if err != nil {
		metrics.ObserveCall("handle_reaction", err)
		return "", transportError("load reaction", err)
	}

	var active model.ReactionType
	switch {
	case existing == nil:
		err = s.repo.CreateReaction(ctx, &model.Reaction{
			TargetType: targetType,
			TargetID:   targetID,
			UserID:     userID,
			Type:       kind,
			CreatedAt:  model.Now(),
		})
		active = kind
	case existing.Type == kind:
		err = s.repo.DeleteReaction(ctx, existing.ID)
	default:
		err = s.repo.UpdateReactionType(ctx, existing.ID, kind)
		active = kind
	}
	metrics.ObserveCall("handle_reaction", err)
	if err != nil {
		return "", transportError("save reaction", err)
	}

	s.publish(ctx, model.Event{Type: model.EventReactionChanged, TargetID: targetID, UserID: userID, Reaction: active})
	return active, nil
}

// JoinCommunity 加入社区，已是成员时直接返回
func (s *CommunityService) JoinCommunity(ctx context.Context, userID, communityName string) error {
	if userID == "" {
		return serrors.New(serrors.ErrInvalidInput, "Please login to join this community")
	}
	community, err := s.LoadCommunityData(ctx, communityName)
	if err != nil {
		return err
	}
	member, err := s.members.FindMember(ctx, userID, community.ID)
	if err != nil {
		return transportError("join community", err)
	}
	if member != nil {
		return nil
	}

	role := model.RoleMember
	if community.CreatorID == userID {
		role = model.RoleCreator
	}
	err = s.members.CreateMember(ctx, &model.Member{
		UserID:        userID,
		CommunityID:   community.ID,
		CommunityName: community.Name,
		Role:          role,
	})
	metrics.ObserveCall("join_community", err)
	if err != nil {
		return transportError("join community", err)
	}

	util.Logger.Info("用户加入社区", zap.String("user_id", userID), zap.String("community", community.Name))
	s.publish(ctx, model.Event{Type: model.EventMemberJoined, CommunityID: community.ID, UserID: userID})
	return nil
}

// LeaveCommunity 退出社区，同时删除该用户在社区内的评论和帖子点赞
func (s *CommunityService) LeaveCommunity(ctx context.Context, userID, communityName string) error {
	if userID == "" {
		return serrors.New(serrors.ErrInvalidInput, "Please login to leave this community")
	}
	community, err := s.LoadCommunityData(ctx, communityName)
	if err != nil {
		return err
	}
	member, err := s.members.FindMember(ctx, userID, community.ID)
	if err != nil {
		return transportError("leave community", err)
	}
	if member == nil {
		return serrors.New(serrors.ErrInvalidInput, "You are not a member of this community")
	}
	if member.Role == model.RoleCreator {
		return serrors.New(serrors.ErrForbidden, "The community creator cannot leave the community")
	}

	deletedComments, err := s.repo.DeleteUserComments(ctx, userID, community.ID)
	if err != nil {
		return transportError("delete comments", err)
	}

	posts, err := s.repo.ListPosts(ctx, community.ID)
	if err != nil {
		return transportError("leave community", err)
	}
	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}
	var deletedReactions int64
	for _, batch := range chunkIDs(postIDs, s.batchSize) {
		n, err := s.repo.DeleteUserReactions(ctx, userID, model.TargetPost, batch)
		if err != nil {
			return transportError("delete reactions", err)
		}
		deletedReactions += n
	}

	err = s.members.DeleteMember(ctx, userID, community.ID)
	metrics.ObserveCall("leave_community", err)
	if err != nil {
		return transportError("leave community", err)
	}

	util.Logger.Info("用户退出社区",
		zap.String("user_id", userID),
		zap.String("community", community.Name),
		zap.Int64("deleted_comments", deletedComments),
		zap.Int64("deleted_reactions", deletedReactions))
	s.publish(ctx, model.Event{Type: model.EventMemberLeft, CommunityID: community.ID, UserID: userID})
	return nil
}

// ResolveSession 根据当前用户和成员记录得出会话上下文
func (s *CommunityService) ResolveSession(ctx context.Context, user *model.User, communityName string) (*model.Session, error) {
	session := &model.Session{CurrentUser: user, Role: model.RoleUser}
	if user == nil || communityName == "" {
		return session, nil
	}

	community, err := s.repo.FindCommunityByName(ctx, communityName)
	if err != nil {
		return nil, transportError("resolve session", err)
	}
	if community == nil {
		return session, nil
	}

	member, err := s.members.FindMember(ctx, user.ID, community.ID)
	if err != nil {
		return nil, transportError("resolve session", err)
	}
	if member != nil {
		session.IsMember = true
		session.Role = member.Role
	}
	if community.CreatorID != "" && community.CreatorID == user.ID {
		session.IsMember = true
		session.Role = model.RoleCreator
	}
	return session, nil
}

// chunkIDs 把 id 切成不超过 size 的若干批
func chunkIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultInQueryLimit
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

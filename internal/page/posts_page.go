// Package page 持有社区帖子页面的状态：社区信息、帖子及其评论和点赞、
// 对话框、筛选排序，以及展示给用户的错误/提示消息。
//
// 每个写操作都是：发出一次远程写入，设置消息，然后完整重新加载帖子。
// PostsPage 由创建它的调用方独占，不能并发使用。
package page

import (
	"context"
	"fmt"

	"community-forum/internal/model"
	"community-forum/internal/service"
	serrors "community-forum/internal/service/errors"
	"community-forum/internal/util"

	"go.uber.org/zap"
)

type PostsPage struct {
	svc           service.CommunityServiceInterface
	session       *model.Session
	communityName string

	Community   *model.Community
	MemberCount int
	Posts       []*model.Post
	Comments    []*model.Comment
	Reactions   []*model.Reaction

	FilterByCreator bool
	SortOrder       service.SortOrder
	Dialogs         Dialogs

	// 同一时刻最多一条错误和一条提示，新消息覆盖旧消息
	Error string
	Info  string

	notFound bool
}

func New(svc service.CommunityServiceInterface, session *model.Session, communityName string) *PostsPage {
	if session == nil {
		session = model.Anonymous()
	}
	return &PostsPage{
		svc:           svc,
		session:       session,
		communityName: communityName,
		Posts:         []*model.Post{},
		Comments:      []*model.Comment{},
		Reactions:     []*model.Reaction{},
		SortOrder:     service.SortNewest,
	}
}

func (p *PostsPage) Session() *model.Session {
	return p.session
}

// NotFound 表示社区不存在（区别于加载失败）
func (p *PostsPage) NotFound() bool {
	return p.notFound
}

// Load 先加载社区，社区可用后再加载帖子
func (p *PostsPage) Load(ctx context.Context) {
	p.LoadCommunityData(ctx)
	if p.Community != nil {
		p.LoadPosts(ctx)
	}
}

func (p *PostsPage) LoadCommunityData(ctx context.Context) {
	if p.communityName == "" {
		return
	}
	community, err := p.svc.LoadCommunityData(ctx, p.communityName)
	if err != nil {
		p.notFound = serrors.Is(err, serrors.ErrNotFound)
		p.Error = err.Error()
		return
	}
	p.Community = community

	count, err := p.svc.GetMemberCount(ctx, community.ID)
	if err != nil {
		p.Error = err.Error()
		return
	}
	p.MemberCount = count
}

// LoadPosts 失败时保留之前显示的帖子
func (p *PostsPage) LoadPosts(ctx context.Context) {
	if p.Community == nil {
		return
	}
	feed, err := p.svc.LoadPosts(ctx, p.Community.ID)
	if err != nil {
		util.Logger.Warn("加载帖子失败", zap.String("community", p.Community.Name), zap.Error(err))
		p.Error = err.Error()
		return
	}
	p.Posts = feed.Posts
	p.Comments = feed.Comments
	p.Reactions = feed.Reactions
}

func (p *PostsPage) communityDisplayName() string {
	if p.Community != nil && p.Community.Name != "" {
		return p.Community.Name
	}
	return p.communityName
}

func (p *PostsPage) clearMessages() {
	p.Error = ""
	p.Info = ""
}

func (p *PostsPage) refreshMemberCount(ctx context.Context) {
	if p.Community == nil {
		return
	}
	if count, err := p.svc.GetMemberCount(ctx, p.Community.ID); err == nil {
		p.MemberCount = count
	}
}

func (p *PostsPage) JoinCommunity(ctx context.Context) {
	user := p.session.CurrentUser
	if user == nil {
		p.Error = "Please login to join this community"
		return
	}
	p.clearMessages()
	if err := p.svc.JoinCommunity(ctx, user.ID, p.communityName); err != nil {
		p.Error = err.Error()
		return
	}
	p.session.IsMember = true
	if p.session.Role != model.RoleCreator {
		p.session.Role = model.RoleMember
	}
	p.Info = fmt.Sprintf("Joined %s community! You can now interact with posts and comments.", p.communityDisplayName())
	p.refreshMemberCount(ctx)
	p.LoadPosts(ctx)
}

// LeaveCommunity 确认名必须和社区名完全一致，否则不会发出请求
func (p *PostsPage) LeaveCommunity(ctx context.Context) {
	if p.Dialogs.Leave.ConfirmName != p.communityDisplayName() {
		p.Error = "Community name does not match."
		return
	}
	user := p.session.CurrentUser
	if user == nil {
		p.Error = "Please login to leave this community"
		return
	}
	p.clearMessages()
	if err := p.svc.LeaveCommunity(ctx, user.ID, p.communityName); err != nil {
		p.Error = err.Error()
		return
	}
	p.session.IsMember = false
	p.session.Role = model.RoleUser
	p.Info = fmt.Sprintf("Left %s community. All your interactions have been deleted.", p.communityDisplayName())
	p.CloseLeaveDialog()
	p.refreshMemberCount(ctx)
	p.LoadPosts(ctx)
}

func (p *PostsPage) CreatePost(ctx context.Context) {
	user := p.session.CurrentUser
	if user == nil || p.Community == nil {
		return
	}
	p.Error = ""
	draft := model.PostDraft{
		Title:      p.Dialogs.Create.Draft.Title,
		Content:    p.Dialogs.Create.Draft.Content,
		AuthorID:   user.ID,
		AuthorName: user.Name(),
	}
	if _, err := p.svc.CreatePost(ctx, p.Community.ID, draft); err != nil {
		p.Error = err.Error()
		return
	}
	p.Info = "Post created!"
	p.CloseCreateDialog()
	p.LoadPosts(ctx)
}

func (p *PostsPage) SavePost(ctx context.Context) {
	post := p.Dialogs.Edit.Post
	if post == nil {
		return
	}
	p.Error = ""
	if err := p.svc.UpdatePost(ctx, post.ID, post.Title, post.Content); err != nil {
		p.Error = err.Error()
		return
	}
	p.Info = "Post updated!"
	p.CloseEditDialog()
	p.LoadPosts(ctx)
}

// DeletePost 作者本人或社区 creator 可以删除，帖子必须属于当前社区
func (p *PostsPage) DeletePost(ctx context.Context, postID string) {
	if p.session.CurrentUser == nil {
		return
	}
	post := p.findPost(postID)
	if post == nil {
		p.Error = "Post not found"
		return
	}
	if !p.canModerate(post.AuthorID) {
		p.Error = "You can only delete your own posts"
		return
	}
	if err := p.svc.DeletePost(ctx, postID); err != nil {
		p.Error = err.Error()
		return
	}
	p.Info = "Post deleted!"
	p.LoadPosts(ctx)
}

func (p *PostsPage) AddComment(ctx context.Context) {
	user := p.session.CurrentUser
	if user == nil || p.Community == nil {
		return
	}
	if p.findPost(p.Dialogs.Comment.PostID) == nil {
		p.Error = "Post not found"
		return
	}
	p.Error = ""
	draft := model.CommentDraft{
		Content:    p.Dialogs.Comment.Content,
		AuthorID:   user.ID,
		AuthorName: user.Name(),
	}
	if _, err := p.svc.AddComment(ctx, p.Community.ID, p.Dialogs.Comment.PostID, draft); err != nil {
		p.Error = err.Error()
		return
	}
	p.Info = "Comment added!"
	p.CloseCommentDialog()
	p.LoadPosts(ctx)
}

func (p *PostsPage) DeleteComment(ctx context.Context, commentID string) {
	if p.session.CurrentUser == nil {
		return
	}
	comment := p.findComment(commentID)
	if comment == nil {
		p.Error = "Comment not found"
		return
	}
	if !p.canModerate(comment.AuthorID) {
		p.Error = "You can only delete your own comments"
		return
	}
	if err := p.svc.DeleteComment(ctx, commentID); err != nil {
		p.Error = err.Error()
		return
	}
	p.Info = "Comment deleted!"
	p.LoadPosts(ctx)
}

// React 只有社区成员可以点赞/点踩当前社区的帖子
func (p *PostsPage) React(ctx context.Context, postID string, kind model.ReactionType) {
	user := p.session.CurrentUser
	if user == nil {
		return
	}
	if !p.session.IsMember {
		p.Error = "Please join this community to interact with posts"
		return
	}
	if p.findPost(postID) == nil {
		p.Error = "Post not found"
		return
	}
	if _, err := p.svc.HandleReaction(ctx, model.TargetPost, postID, user.ID, kind); err != nil {
		p.Error = err.Error()
		return
	}
	p.LoadPosts(ctx)
}

// VisiblePosts 是当前筛选和排序下用户看到的帖子
func (p *PostsPage) VisiblePosts() []*model.Post {
	return service.FilterAndSortPosts(p.Posts, p.FilterByCreator, p.session, p.SortOrder)
}

func (p *PostsPage) canModerate(authorID string) bool {
	return authorID == p.session.UserID() || p.session.Role == model.RoleCreator
}

func (p *PostsPage) findPost(postID string) *model.Post {
	for _, post := range p.Posts {
		if post.ID == postID {
			return post
		}
	}
	return nil
}

func (p *PostsPage) findComment(commentID string) *model.Comment {
	for _, c := range p.Comments {
		if c.ID == commentID {
			return c
		}
	}
	return nil
}

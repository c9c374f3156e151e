package page

import (
	"context"
	stderrors "errors"
	"testing"

	"community-forum/internal/model"
	"community-forum/internal/repository/memory"
	"community-forum/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommunityService 是 CommunityServiceInterface 的模拟实现
type MockCommunityService struct {
	mock.Mock
}

func (m *MockCommunityService) LoadCommunityData(ctx context.Context, name string) (*model.Community, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Community), args.Error(1)
}

func (m *MockCommunityService) GetMemberCount(ctx context.Context, communityID string) (int, error) {
	args := m.Called(ctx, communityID)
	return args.Int(0), args.Error(1)
}

func (m *MockCommunityService) LoadPosts(ctx context.Context, communityID string) (*model.PostFeed, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PostFeed), args.Error(1)
}

func (m *MockCommunityService) CreatePost(ctx context.Context, communityID string, draft model.PostDraft) (*model.Post, error) {
	args := m.Called(ctx, communityID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockCommunityService) UpdatePost(ctx context.Context, postID, title, content string) error {
	return m.Called(ctx, postID, title, content).Error(0)
}

func (m *MockCommunityService) DeletePost(ctx context.Context, postID string) error {
	return m.Called(ctx, postID).Error(0)
}

func (m *MockCommunityService) AddComment(ctx context.Context, communityID, postID string, draft model.CommentDraft) (*model.Comment, error) {
	args := m.Called(ctx, communityID, postID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockCommunityService) DeleteComment(ctx context.Context, commentID string) error {
	return m.Called(ctx, commentID).Error(0)
}

func (m *MockCommunityService) HandleReaction(ctx context.Context, targetType model.TargetType, targetID, userID string, kind model.ReactionType) (model.ReactionType, error) {
	args := m.Called(ctx, targetType, targetID, userID, kind)
	return args.Get(0).(model.ReactionType), args.Error(1)
}

func (m *MockCommunityService) JoinCommunity(ctx context.Context, userID, communityName string) error {
	return m.Called(ctx, userID, communityName).Error(0)
}

func (m *MockCommunityService) LeaveCommunity(ctx context.Context, userID, communityName string) error {
	return m.Called(ctx, userID, communityName).Error(0)
}

var _ service.CommunityServiceInterface = (*MockCommunityService)(nil)

func memberSession(id string) *model.Session {
	return &model.Session{CurrentUser: &model.User{ID: id, Email: id + "@example.com"}, Role: model.RoleMember, IsMember: true}
}

// setup 创建社区 abc，owner 为 creator
func setup(t *testing.T) (*service.CommunityService, *model.Community) {
	t.Helper()
	store := memory.NewStore()
	svc := service.NewCommunityService(store, store, nil, 0)
	community := &model.Community{Name: "abc", Description: "about abc"}
	require.NoError(t, svc.CreateCommunity(context.Background(), community, &model.User{ID: "owner"}))
	return svc, community
}

// TestLeaveNameMismatch 确认名不一致时拒绝，且不发出退出请求
func TestLeaveNameMismatch(t *testing.T) {
	svc := new(MockCommunityService)
	community := &model.Community{ID: "c1", Name: "abc"}
	svc.On("LoadCommunityData", mock.Anything, "abc").Return(community, nil)
	svc.On("GetMemberCount", mock.Anything, "c1").Return(3, nil)
	svc.On("LoadPosts", mock.Anything, "c1").Return(&model.PostFeed{}, nil)

	p := New(svc, memberSession("u1"), "abc")
	p.Load(context.Background())

	p.OpenLeaveDialog()
	p.SetConfirmName("xyz")
	p.LeaveCommunity(context.Background())

	assert.Equal(t, "Community name does not match.", p.Error)
	assert.True(t, p.Dialogs.Leave.Open)
	assert.True(t, p.Session().IsMember)
	svc.AssertNotCalled(t, "LeaveCommunity", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadUnknownCommunity(t *testing.T) {
	svc, _ := setup(t)
	p := New(svc, nil, "missing")
	p.Load(context.Background())

	assert.Nil(t, p.Community)
	assert.Equal(t, "Community not found", p.Error)
	assert.True(t, p.NotFound())
	assert.Empty(t, p.Posts)
}

// TestLoadPostsFailureKeepsPosts 加载失败时保留已显示的帖子
func TestLoadPostsFailureKeepsPosts(t *testing.T) {
	svc := new(MockCommunityService)
	community := &model.Community{ID: "c1", Name: "abc"}
	existing := []*model.Post{{ID: "p1", Title: "kept"}}
	svc.On("LoadCommunityData", mock.Anything, "abc").Return(community, nil)
	svc.On("GetMemberCount", mock.Anything, "c1").Return(1, nil)
	svc.On("LoadPosts", mock.Anything, "c1").Return(&model.PostFeed{Posts: existing}, nil).Once()
	svc.On("LoadPosts", mock.Anything, "c1").Return(nil, stderrors.New("load posts: timeout")).Once()

	p := New(svc, nil, "abc")
	p.Load(context.Background())
	require.Len(t, p.Posts, 1)

	p.LoadPosts(context.Background())
	assert.Equal(t, "load posts: timeout", p.Error)
	require.Len(t, p.Posts, 1)
	assert.Equal(t, "kept", p.Posts[0].Title)
}

func TestCreatePostReloads(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	p := New(svc, memberSession("u1"), "abc")
	p.Load(ctx)

	p.OpenCreateDialog()
	p.SetNewPost("Hello", "World")
	p.CreatePost(ctx)

	assert.Empty(t, p.Error)
	assert.Equal(t, "Post created!", p.Info)
	assert.False(t, p.Dialogs.Create.Open)
	assert.Equal(t, PostDraftFields{}, p.Dialogs.Create.Draft)
	require.Len(t, p.Posts, 1)
	assert.Equal(t, "Hello", p.Posts[0].Title)
	assert.Equal(t, "World", p.Posts[0].Content)
	assert.Equal(t, "u1@example.com", p.Posts[0].AuthorName)
}

func TestCreatePostWithoutUserIsNoop(t *testing.T) {
	svc := new(MockCommunityService)
	p := New(svc, nil, "abc")
	p.Community = &model.Community{ID: "c1", Name: "abc"}
	p.OpenCreateDialog()
	p.CreatePost(context.Background())

	svc.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, p.Dialogs.Create.Open)
}

func TestEditOwnPostOnly(t *testing.T) {
	svc, community := setup(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, community.ID, model.PostDraft{Title: "t", Content: "c", AuthorID: "u1"})
	require.NoError(t, err)

	other := New(svc, memberSession("u2"), "abc")
	other.Load(ctx)
	assert.False(t, other.OpenEditDialog(post.ID))
	assert.Equal(t, "You can only edit your own posts", other.Error)

	author := New(svc, memberSession("u1"), "abc")
	author.Load(ctx)
	require.True(t, author.OpenEditDialog(post.ID))
	author.SetEditPost("new title", "new content")
	assert.Equal(t, "t", author.Posts[0].Title)

	author.SavePost(ctx)
	assert.Equal(t, "Post updated!", author.Info)
	assert.False(t, author.Dialogs.Edit.Open)
	assert.Equal(t, "new title", author.Posts[0].Title)
}

func TestCommentAndDelete(t *testing.T) {
	svc, community := setup(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, community.ID, model.PostDraft{Title: "t", Content: "c", AuthorID: "owner"})
	require.NoError(t, err)

	p := New(svc, memberSession("u1"), "abc")
	p.Load(ctx)
	p.OpenCommentDialog(post.ID)
	p.SetNewComment("nice")
	p.AddComment(ctx)

	assert.Equal(t, "Comment added!", p.Info)
	assert.Equal(t, CommentDialog{}, p.Dialogs.Comment)
	require.Len(t, p.Comments, 1)
	assert.Equal(t, post.ID, p.Comments[0].PostID)

	// creator 可以删除别人的评论
	creator := New(svc, &model.Session{CurrentUser: &model.User{ID: "owner"}, Role: model.RoleCreator, IsMember: true}, "abc")
	creator.Load(ctx)
	creator.DeleteComment(ctx, p.Comments[0].ID)
	assert.Equal(t, "Comment deleted!", creator.Info)
	assert.Empty(t, creator.Comments)
}

func TestDeleteOthersPostRejected(t *testing.T) {
	svc, community := setup(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, community.ID, model.PostDraft{Title: "t", Content: "c", AuthorID: "owner"})
	require.NoError(t, err)

	p := New(svc, memberSession("u1"), "abc")
	p.Load(ctx)
	p.DeletePost(ctx, post.ID)

	assert.Equal(t, "You can only delete your own posts", p.Error)
	assert.Len(t, p.Posts, 1)
}

func TestReactRequiresMembership(t *testing.T) {
	svc, community := setup(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, community.ID, model.PostDraft{Title: "t", Content: "c", AuthorID: "owner"})
	require.NoError(t, err)

	visitor := New(svc, &model.Session{CurrentUser: &model.User{ID: "u9"}, Role: model.RoleUser}, "abc")
	visitor.Load(ctx)
	visitor.React(ctx, post.ID, model.ReactionLike)
	assert.Equal(t, "Please join this community to interact with posts", visitor.Error)
	assert.Empty(t, visitor.Reactions)

	member := New(svc, memberSession("u1"), "abc")
	member.Load(ctx)
	member.React(ctx, post.ID, model.ReactionLike)
	require.Len(t, member.Reactions, 1)

	snap := member.Snapshot()
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, 1, snap.Posts[0].Likes)
	assert.Equal(t, model.ReactionLike, snap.Posts[0].UserReaction)

	member.React(ctx, post.ID, model.ReactionDislike)
	snap = member.Snapshot()
	assert.Equal(t, 0, snap.Posts[0].Likes)
	assert.Equal(t, 1, snap.Posts[0].Dislikes)
}

func TestJoinThenLeave(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	session := &model.Session{CurrentUser: &model.User{ID: "u1", DisplayName: "Alice"}, Role: model.RoleUser}
	p := New(svc, session, "abc")
	p.Load(ctx)
	assert.Equal(t, 1, p.MemberCount)

	p.JoinCommunity(ctx)
	assert.Empty(t, p.Error)
	assert.Equal(t, "Joined abc community! You can now interact with posts and comments.", p.Info)
	assert.True(t, session.IsMember)
	assert.Equal(t, model.RoleMember, session.Role)
	assert.Equal(t, 2, p.MemberCount)

	p.OpenLeaveDialog()
	p.SetConfirmName("abc")
	p.LeaveCommunity(ctx)
	assert.Empty(t, p.Error)
	assert.Equal(t, "Left abc community. All your interactions have been deleted.", p.Info)
	assert.False(t, session.IsMember)
	assert.Equal(t, model.RoleUser, session.Role)
	assert.Equal(t, LeaveDialog{}, p.Dialogs.Leave)
	assert.Equal(t, 1, p.MemberCount)
}

func TestJoinRequiresLogin(t *testing.T) {
	svc := new(MockCommunityService)
	p := New(svc, nil, "abc")
	p.JoinCommunity(context.Background())

	assert.Equal(t, "Please login to join this community", p.Error)
	svc.AssertNotCalled(t, "JoinCommunity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatorFilter(t *testing.T) {
	svc, community := setup(t)
	ctx := context.Background()
	for _, author := range []string{"owner", "u1", "owner"} {
		_, err := svc.CreatePost(ctx, community.ID, model.PostDraft{Title: author, Content: "c", AuthorID: author})
		require.NoError(t, err)
	}

	creator := New(svc, &model.Session{CurrentUser: &model.User{ID: "owner"}, Role: model.RoleCreator, IsMember: true}, "abc")
	creator.Load(ctx)
	creator.FilterByCreator = true
	assert.Len(t, creator.VisiblePosts(), 2)
	assert.Equal(t, 3, creator.Snapshot().PostCount)

	member := New(svc, memberSession("u1"), "abc")
	member.Load(ctx)
	member.FilterByCreator = true
	assert.Len(t, member.VisiblePosts(), 3)
}

// TestDialogsAreIndependent 多个对话框可以同时打开
func TestDialogsAreIndependent(t *testing.T) {
	p := New(new(MockCommunityService), memberSession("u1"), "abc")
	p.OpenCreateDialog()
	p.OpenCommentDialog("p1")
	p.OpenLeaveDialog()

	assert.True(t, p.Dialogs.Create.Open)
	assert.True(t, p.Dialogs.Comment.Open)
	assert.True(t, p.Dialogs.Leave.Open)

	p.CloseCommentDialog()
	assert.True(t, p.Dialogs.Create.Open)
	assert.False(t, p.Dialogs.Comment.Open)
}

// TestActionsLimitedToCurrentCommunity 其他社区的帖子和评论不能在当前页面上删除、评论或点赞
func TestActionsLimitedToCurrentCommunity(t *testing.T) {
	svc, community := setup(t)
	ctx := context.Background()
	post, err := svc.CreatePost(ctx, community.ID, model.PostDraft{Title: "t", Content: "c", AuthorID: "owner"})
	require.NoError(t, err)
	comment, err := svc.AddComment(ctx, community.ID, post.ID, model.CommentDraft{Content: "hi", AuthorID: "owner"})
	require.NoError(t, err)

	mallory := &model.User{ID: "mallory"}
	require.NoError(t, svc.CreateCommunity(ctx, &model.Community{Name: "evil"}, mallory))

	// mallory 是 evil 的 creator，但不是 abc 的成员
	p := New(svc, &model.Session{CurrentUser: mallory, Role: model.RoleCreator, IsMember: true}, "evil")
	p.Load(ctx)

	p.DeleteComment(ctx, comment.ID)
	assert.Equal(t, "Comment not found", p.Error)

	p.DeletePost(ctx, post.ID)
	assert.Equal(t, "Post not found", p.Error)

	p.React(ctx, post.ID, model.ReactionLike)
	assert.Equal(t, "Post not found", p.Error)

	p.OpenCommentDialog(post.ID)
	p.SetNewComment("spam")
	p.AddComment(ctx)
	assert.Equal(t, "Post not found", p.Error)
	assert.True(t, p.Dialogs.Comment.Open)
	assert.Empty(t, p.Info)

	feed, err := svc.LoadPosts(ctx, community.ID)
	require.NoError(t, err)
	assert.Len(t, feed.Posts, 1)
	require.Len(t, feed.Comments, 1)
	assert.Equal(t, "hi", feed.Comments[0].Content)
	assert.Empty(t, feed.Reactions)
}

package page

import "community-forum/internal/model"

// PostDraftFields 是创建/编辑对话框里的输入
type PostDraftFields struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateDialog struct {
	Open  bool            `json:"open"`
	Draft PostDraftFields `json:"draft"`
}

// EditDialog 打开时持有被编辑帖子的副本
type EditDialog struct {
	Open bool        `json:"open"`
	Post *model.Post `json:"post,omitempty"`
}

type CommentDialog struct {
	Open    bool   `json:"open"`
	PostID  string `json:"post_id,omitempty"`
	Content string `json:"content"`
}

type LeaveDialog struct {
	Open        bool   `json:"open"`
	ConfirmName string `json:"confirm_name"`
}

// Dialogs 各对话框相互独立，可以同时打开
type Dialogs struct {
	Create  CreateDialog  `json:"create"`
	Edit    EditDialog    `json:"edit"`
	Comment CommentDialog `json:"comment"`
	Leave   LeaveDialog   `json:"leave"`
}

func (p *PostsPage) OpenCreateDialog() {
	p.Dialogs.Create.Open = true
}

func (p *PostsPage) SetNewPost(title, content string) {
	p.Dialogs.Create.Draft = PostDraftFields{Title: title, Content: content}
}

func (p *PostsPage) CloseCreateDialog() {
	p.Dialogs.Create = CreateDialog{}
}

// OpenEditDialog 只有作者本人可以编辑自己的帖子
func (p *PostsPage) OpenEditDialog(postID string) bool {
	post := p.findPost(postID)
	if post == nil {
		p.Error = "Post not found"
		return false
	}
	if post.AuthorID != p.session.UserID() {
		p.Error = "You can only edit your own posts"
		return false
	}
	cp := *post
	p.Dialogs.Edit = EditDialog{Open: true, Post: &cp}
	return true
}

func (p *PostsPage) SetEditPost(title, content string) {
	if p.Dialogs.Edit.Post == nil {
		return
	}
	p.Dialogs.Edit.Post.Title = title
	p.Dialogs.Edit.Post.Content = content
}

func (p *PostsPage) CloseEditDialog() {
	p.Dialogs.Edit = EditDialog{}
}

func (p *PostsPage) OpenCommentDialog(postID string) {
	p.Dialogs.Comment = CommentDialog{Open: true, PostID: postID}
}

func (p *PostsPage) SetNewComment(content string) {
	p.Dialogs.Comment.Content = content
}

func (p *PostsPage) CloseCommentDialog() {
	p.Dialogs.Comment = CommentDialog{}
}

func (p *PostsPage) OpenLeaveDialog() {
	p.Dialogs.Leave.Open = true
}

func (p *PostsPage) SetConfirmName(name string) {
	p.Dialogs.Leave.ConfirmName = name
}

func (p *PostsPage) CloseLeaveDialog() {
	p.Dialogs.Leave = LeaveDialog{}
}

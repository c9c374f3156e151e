package model

// Community 表示一个社区（论坛分区）
type Community struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Info        string    `json:"info,omitempty" bson:"info,omitempty"`
	CreatorID   string    `json:"creator_id,omitempty" bson:"creatorId,omitempty"`
	CreatedAt   Timestamp `json:"created_at" bson:"createdAt"`
}

// Post 是社区内的帖子。评论和点赞不内嵌在帖子里，
// 而是分别存放在 comments / likes 集合中，通过 postId / targetId 关联。
type Post struct {
	ID          string    `json:"id" bson:"_id"`
	CommunityID string    `json:"community_id" bson:"communityId"`
	Title       string    `json:"title" bson:"title"`
	Content     string    `json:"content" bson:"content"`
	AuthorID    string    `json:"author_id" bson:"authorId"`
	AuthorName  string    `json:"author_name" bson:"authorName"`
	CreatedAt   Timestamp `json:"created_at" bson:"createdAt"`
	UpdatedAt   Timestamp `json:"updated_at,omitempty" bson:"updatedAt,omitempty"`
}

type Comment struct {
	ID          string    `json:"id" bson:"_id"`
	CommunityID string    `json:"community_id" bson:"communityId"`
	PostID      string    `json:"post_id" bson:"postId"`
	Content     string    `json:"content" bson:"content"`
	AuthorID    string    `json:"author_id" bson:"authorId"`
	AuthorName  string    `json:"author_name" bson:"authorName"`
	CreatedAt   Timestamp `json:"created_at" bson:"createdAt"`
}

// TargetType 点赞/点踩的对象类型
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// ReactionType 点赞或点踩
type ReactionType string

const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

// Reaction 对应 likes 集合中的一条记录，每个 (用户, 对象) 最多一条
type Reaction struct {
	ID         string       `json:"id" bson:"_id"`
	TargetType TargetType   `json:"target_type" bson:"targetType"`
	TargetID   string       `json:"target_id" bson:"targetId"`
	UserID     string       `json:"user_id" bson:"userId"`
	Type       ReactionType `json:"type" bson:"type"`
	CreatedAt  Timestamp    `json:"created_at" bson:"createdAt"`
}

// PostDraft 创建帖子时提交的内容
type PostDraft struct {
	Title      string
	Content    string
	AuthorID   string
	AuthorName string
}

// CommentDraft 添加评论时提交的内容
type CommentDraft struct {
	Content    string
	AuthorID   string
	AuthorName string
}

// PostFeed 是一次加载得到的三个并列集合，各自保持查询返回的顺序
type PostFeed struct {
	Posts     []*Post
	Comments  []*Comment
	Reactions []*Reaction
}

package model

// 领域事件类型
const (
	EventPostCreated     = "post.created"
	EventPostUpdated     = "post.updated"
	EventPostDeleted     = "post.deleted"
	EventCommentCreated  = "comment.created"
	EventCommentDeleted  = "comment.deleted"
	EventReactionChanged = "reaction.changed"
	EventMemberJoined    = "member.joined"
	EventMemberLeft      = "member.left"
)

// Event 在每次写入成功后发布
type Event struct {
	Type        string       `json:"type"`
	CommunityID string       `json:"community_id,omitempty"`
	TargetID    string       `json:"target_id,omitempty"`
	UserID      string       `json:"user_id,omitempty"`
	Reaction    ReactionType `json:"reaction,omitempty"`
	OccurredAt  Timestamp    `json:"occurred_at"`
}

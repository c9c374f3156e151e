package model

// Role 用户在某个社区中的身份
type Role string

const (
	RoleUser    Role = "user"
	RoleMember  Role = "member"
	RoleCreator Role = "creator"
)

// User 是身份提供方给出的当前用户
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Name 返回用于署名的名字，没有昵称时退回到邮箱
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Member 是 members 集合中的成员关系记录
type Member struct {
	ID            string    `json:"id" bson:"_id"`
	UserID        string    `json:"uid" bson:"userId"`
	CommunityID   string    `json:"community_id" bson:"communityId"`
	CommunityName string    `json:"community_name" bson:"communityName"`
	Role          Role      `json:"role" bson:"role"`
	JoinedAt      Timestamp `json:"joined_at" bson:"joinedAt"`
}

// Session 是每次请求显式传入的会话上下文
type Session struct {
	CurrentUser *User `json:"current_user,omitempty"`
	Role        Role  `json:"role"`
	IsMember    bool  `json:"is_member"`
	IsLoading   bool  `json:"is_loading"`
}

// Anonymous 返回未登录用户的会话
func Anonymous() *Session {
	return &Session{Role: RoleUser}
}

func (s *Session) UserID() string {
	if s == nil || s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.ID
}

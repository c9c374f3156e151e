package page

import (
	"community-forum/internal/model"
	"community-forum/internal/service"
)

// Snapshot 是页面渲染需要的全部数据
type Snapshot struct {
	Community       *model.Community      `json:"community"`
	MemberCount     int                   `json:"member_count"`
	PostCount       int                   `json:"post_count"`
	Posts           []service.PostSummary `json:"posts"`
	Session         *model.Session        `json:"session"`
	FilterByCreator bool                  `json:"filter_by_creator"`
	SortOrder       service.SortOrder     `json:"sort_order"`
	Dialogs         Dialogs               `json:"dialogs"`
	Error           string                `json:"error,omitempty"`
	Info            string                `json:"info,omitempty"`
}

func (p *PostsPage) Snapshot() Snapshot {
	return Snapshot{
		Community:       p.Community,
		MemberCount:     p.MemberCount,
		PostCount:       len(p.Posts),
		Posts:           service.SummarizePosts(p.VisiblePosts(), p.Comments, p.Reactions, p.session.UserID()),
		Session:         p.session,
		FilterByCreator: p.FilterByCreator,
		SortOrder:       p.SortOrder,
		Dialogs:         p.Dialogs,
		Error:           p.Error,
		Info:            p.Info,
	}
}

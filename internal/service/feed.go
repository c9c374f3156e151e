package service

import (
	"sort"

	"community-forum/internal/model"
)

// SortOrder 帖子的排序方式
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ParseSortOrder 无法识别时按最新排序
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortOldest {
		return SortOldest
	}
	return SortNewest
}

// FilterAndSortPosts 返回新的切片，不修改 posts。
// 只有 filterByCreator 打开且当前用户在社区中是 creator 时，才只保留自己发的帖子。
func FilterAndSortPosts(posts []*model.Post, filterByCreator bool, session *model.Session, order SortOrder) []*model.Post {
	userID := session.UserID()
	ownOnly := filterByCreator && userID != "" && session.Role == model.RoleCreator

	out := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if ownOnly && p.AuthorID != userID {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CreatedAt.Time, out[j].CreatedAt.Time
		if order == SortOldest {
			return a.Before(b)
		}
		return a.After(b)
	})
	return out
}

// PostSummary 是页面上展示的一条帖子，评论和点赞数都从独立集合中计算
type PostSummary struct {
	*model.Post
	Comments     []*model.Comment   `json:"comments"`
	Likes        int                `json:"likes"`
	Dislikes     int                `json:"dislikes"`
	UserReaction model.ReactionType `json:"user_reaction,omitempty"`
}

// SummarizePosts 按 postId / targetId 把评论和点赞归到对应帖子上，
// 关联不到已加载帖子的记录会被忽略。userID 为空时不计算 UserReaction。
func SummarizePosts(posts []*model.Post, comments []*model.Comment, reactions []*model.Reaction, userID string) []PostSummary {
	summaries := make([]PostSummary, len(posts))
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		summaries[i] = PostSummary{Post: p, Comments: []*model.Comment{}}
		index[p.ID] = i
	}

	for _, c := range comments {
		if i, ok := index[c.PostID]; ok {
			summaries[i].Comments = append(summaries[i].Comments, c)
		}
	}

	for _, r := range reactions {
		if r.TargetType != model.TargetPost {
			continue
		}
		i, ok := index[r.TargetID]
		if !ok {
			continue
		}
		switch r.Type {
		case model.ReactionLike:
			summaries[i].Likes++
		case model.ReactionDislike:
			summaries[i].Dislikes++
		}
		if userID != "" && r.UserID == userID {
			summaries[i].UserReaction = r.Type
		}
	}
	return summaries
}

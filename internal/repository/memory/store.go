// Package memory 提供社区数据的内存实现，用于本地开发（STORAGE_DRIVER=memory）和测试。
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"community-forum/internal/model"
	"community-forum/internal/repository/interfaces"
)

// Store 同时实现 CommunityRepository 和 MemberRepository，
// 各集合按插入顺序保存。
type Store struct {
	mu          sync.RWMutex
	seq         atomic.Int64
	communities []*model.Community
	posts       []*model.Post
	comments    []*model.Comment
	reactions   []*model.Reaction
	members     []*model.Member
}

var (
	_ interfaces.CommunityRepository = (*Store)(nil)
	_ interfaces.MemberRepository    = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) nextID(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.seq.Add(1))
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s *Store) FindCommunityByName(_ context.Context, name string) (*model.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.communities {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateCommunity(_ context.Context, community *model.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.communities {
		if c.Name == community.Name {
			return fmt.Errorf("community %q already exists", community.Name)
		}
	}
	if community.ID == "" {
		community.ID = s.nextID("c")
	}
	if community.CreatedAt.IsZero() {
		community.CreatedAt = model.Now()
	}
	cp := *community
	s.communities = append(s.communities, &cp)
	return nil
}

func (s *Store) ListPosts(_ context.Context, communityID string) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts := make([]*model.Post, 0)
	for _, p := range s.posts {
		if p.CommunityID == communityID {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	return posts, nil
}

func (s *Store) CreatePost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID == "" {
		post.ID = s.nextID("p")
	}
	cp := *post
	s.posts = append(s.posts, &cp)
	return nil
}

func (s *Store) UpdatePost(_ context.Context, postID, title, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == postID {
			p.Title = title
			p.Content = content
			p.UpdatedAt = model.Now()
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *Store) DeletePost(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID == postID {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *Store) FindCommentsByPostIDs(_ context.Context, postIDs []string) ([]*model.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := make([]*model.Comment, 0)
	for _, c := range s.comments {
		if contains(postIDs, c.PostID) {
			cp := *c
			comments = append(comments, &cp)
		}
	}
	return comments, nil
}

func (s *Store) CreateComment(_ context.Context, comment *model.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID == "" {
		comment.ID = s.nextID("k")
	}
	cp := *comment
	s.comments = append(s.comments, &cp)
	return nil
}

func (s *Store) DeleteComment(_ context.Context, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.comments {
		if c.ID == commentID {
			s.comments = append(s.comments[:i], s.comments[i+1:]...)
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *Store) DeleteUserComments(_ context.Context, userID, communityID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.comments[:0]
	var deleted int64
	for _, c := range s.comments {
		if c.AuthorID == userID && c.CommunityID == communityID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.comments = kept
	return deleted, nil
}

func (s *Store) FindReactionsByTargets(_ context.Context, targetType model.TargetType, targetIDs []string) ([]*model.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reactions := make([]*model.Reaction, 0)
	for _, r := range s.reactions {
		if r.TargetType == targetType && contains(targetIDs, r.TargetID) {
			cp := *r
			reactions = append(reactions, &cp)
		}
	}
	return reactions, nil
}

func (s *Store) FindReaction(_ context.Context, targetType model.TargetType, targetID, userID string) (*model.Reaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reactions {
		if r.TargetType == targetType && r.TargetID == targetID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateReaction(_ context.Context, reaction *model.Reaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reactions {
		if r.TargetType == reaction.TargetType && r.TargetID == reaction.TargetID && r.UserID == reaction.UserID {
			return fmt.Errorf("duplicate reaction for user %s on %s %s", reaction.UserID, reaction.TargetType, reaction.TargetID)
		}
	}
	if reaction.ID == "" {
		reaction.ID = s.nextID("r")
	}
	cp := *reaction
	s.reactions = append(s.reactions, &cp)
	return nil
}

func (s *Store) UpdateReactionType(_ context.Context, reactionID string, reactionType model.ReactionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reactions {
		if r.ID == reactionID {
			r.Type = reactionType
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *Store) DeleteReaction(_ context.Context, reactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reactions {
		if r.ID == reactionID {
			s.reactions = append(s.reactions[:i], s.reactions[i+1:]...)
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *Store) DeleteUserReactions(_ context.Context, userID string, targetType model.TargetType, targetIDs []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.reactions[:0]
	var deleted int64
	for _, r := range s.reactions {
		if r.UserID == userID && r.TargetType == targetType && contains(targetIDs, r.TargetID) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.reactions = kept
	return deleted, nil
}

func (s *Store) FindMember(_ context.Context, userID, communityID string) (*model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.UserID == userID && m.CommunityID == communityID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateMember(_ context.Context, member *model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.UserID == member.UserID && m.CommunityID == member.CommunityID {
			return fmt.Errorf("user %s is already a member of %s", member.UserID, member.CommunityID)
		}
	}
	if member.ID == "" {
		member.ID = s.nextID("m")
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = model.Now()
	}
	cp := *member
	s.members = append(s.members, &cp)
	return nil
}

func (s *Store) DeleteMember(_ context.Context, userID, communityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.members {
		if m.UserID == userID && m.CommunityID == communityID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return nil
		}
	}
	return interfaces.ErrNotFound
}

func (s *Store) CountMembers(_ context.Context, communityID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.members {
		if m.CommunityID == communityID {
			n++
		}
	}
	return n, nil
}

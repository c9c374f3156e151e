package interfaces

import (
	"context"

	"community-forum/internal/model"
)

// MemberRepository 定义社区成员关系的数据访问接口
type MemberRepository interface {
	// FindMember 找不到时返回 nil, nil
	FindMember(ctx context.Context, userID, communityID string) (*model.Member, error)
	CreateMember(ctx context.Context, member *model.Member) error
	DeleteMember(ctx context.Context, userID, communityID string) error
	CountMembers(ctx context.Context, communityID string) (int, error)
}

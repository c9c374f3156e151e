package mongodb

import (
	"context"
	"errors"

	"community-forum/internal/model"
	"community-forum/internal/repository/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type memberRepository struct {
	db *mongo.Database
}

func NewMemberRepository(db *mongo.Database) *memberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindMember(ctx context.Context, userID, communityID string) (*model.Member, error) {
	var member model.Member
	err := r.db.Collection(membersCollection).
		FindOne(ctx, bson.M{"userId": userID, "communityId": communityID}).
		Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) CreateMember(ctx context.Context, member *model.Member) error {
	if member.ID == "" {
		member.ID = newID()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = model.Now()
	}
	_, err := r.db.Collection(membersCollection).InsertOne(ctx, member)
	return err
}

func (r *memberRepository) DeleteMember(ctx context.Context, userID, communityID string) error {
	result, err := r.db.Collection(membersCollection).
		DeleteOne(ctx, bson.M{"userId": userID, "communityId": communityID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *memberRepository) CountMembers(ctx context.Context, communityID string) (int, error) {
	n, err := r.db.Collection(membersCollection).CountDocuments(ctx, bson.M{"communityId": communityID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

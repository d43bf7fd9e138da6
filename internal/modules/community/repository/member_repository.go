package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository interface {
	Find(ctx context.Context, communityID, userID uuid.UUID) (*entity.CommunityMember, error)
	// Join creates an active membership under a row lock on the community,
	// enforcing the max_members capacity and bumping the denormalized
	// counter in the same transaction.
	Join(ctx context.Context, communityID, userID uuid.UUID) (*entity.CommunityMember, error)
	// Leave removes the membership and decrements the counter, flooring at
	// zero so a reconciled counter can never go negative.
	Leave(ctx context.Context, communityID, userID uuid.UUID) error
	// ActiveCommunityIDSet returns which of the given communities the user
	// is an active member of, in a single query.
	ActiveCommunityIDSet(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	FindByCommunity(ctx context.Context, communityID uuid.UUID, offset, limit int) ([]*entity.CommunityMember, int64, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Find(ctx context.Context, communityID, userID uuid.UUID) (*entity.CommunityMember, error) {
	var member entity.CommunityMember
	if err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) Join(ctx context.Context, communityID, userID uuid.UUID) (*entity.CommunityMember, error) {
	var member *entity.CommunityMember

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var community entity.Community
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&community, "id = ?", communityID).Error; err != nil {
			return err
		}

		var existing entity.CommunityMember
		err := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("already a member of this community: %w", apperror.ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if community.MaxMembers != nil && community.ActiveMembersCount >= *community.MaxMembers {
			return fmt.Errorf("community is full: %w", apperror.ErrConflict)
		}

		member = &entity.CommunityMember{
			CommunityID: communityID,
			UserID:      userID,
			Status:      entity.MemberStatusActive,
			MemberRank:  entity.MemberRankNewbie,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		return tx.Model(&entity.Community{}).
			Where("id = ?", communityID).
			UpdateColumn("active_members_count", gorm.Expr("active_members_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (r *memberRepository) Leave(ctx context.Context, communityID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entity.Community{}, "id = ?", communityID).Error; err != nil {
			return err
		}

		res := tx.Where("community_id = ? AND user_id = ?", communityID, userID).
			Delete(&entity.CommunityMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("not a member of this community: %w", apperror.ErrConflict)
		}

		return tx.Model(&entity.Community{}).
			Where("id = ?", communityID).
			UpdateColumn("active_members_count", gorm.Expr("GREATEST(0, active_members_count - 1)")).Error
	})
}

func (r *memberRepository) ActiveCommunityIDSet(ctx context.Context, userID uuid.UUID, communityIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	joined := make(map[uuid.UUID]bool, len(communityIDs))
	if len(communityIDs) == 0 {
		return joined, nil
	}

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.CommunityMember{}).
		Where("user_id = ? AND status = ? AND community_id IN ?", userID, entity.MemberStatusActive, communityIDs).
		Pluck("community_id", &ids).Error; err != nil {
		return nil, err
	}

	for _, id := range ids {
		joined[id] = true
	}
	return joined, nil
}

func (r *memberRepository) FindByCommunity(ctx context.Context, communityID uuid.UUID, offset, limit int) ([]*entity.CommunityMember, int64, error) {
	var members []*entity.CommunityMember
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.CommunityMember{}).
		Where("community_id = ? AND status = ?", communityID, entity.MemberStatusActive)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("User").
		Order("joined_at ASC").
		Offset(offset).Limit(limit).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

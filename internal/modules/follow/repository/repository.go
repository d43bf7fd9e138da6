package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepository interface {
	// CreateEdge inserts the directed follow edge under a lock, rejecting
	// duplicates and edges carrying a block in either direction.
	CreateEdge(ctx context.Context, follow *entity.Follow) error
	Find(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error)
	// Delete hard-deletes the edge. Blocked edges are kept.
	Delete(ctx context.Context, followerID, followedID uuid.UUID) error
	Accept(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error)
	// Block marks an existing edge or creates a new blocked one. Any reverse
	// follow from the blocked user is removed.
	Block(ctx context.Context, blockerID, blockedID uuid.UUID) error
	Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error

	// Followers lists accepted edges pointing at the user, newest first,
	// keyed by the edge's time-ordered id for cursor pagination.
	Followers(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error)
	Following(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) CreateEdge(ctx context.Context, follow *entity.Follow) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.Follow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id = ? AND followed_id = ?", follow.FollowerID, follow.FollowedID).
			First(&existing).Error
		if err == nil {
			if existing.BlockedAt != nil {
				return fmt.Errorf("cannot follow this user: %w", apperror.ErrForbidden)
			}
			return fmt.Errorf("already following this user: %w", apperror.ErrConflict)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// A block by the target also prevents the edge.
		var reverse entity.Follow
		err = tx.Where("follower_id = ? AND followed_id = ? AND blocked_at IS NOT NULL",
			follow.FollowedID, follow.FollowerID).
			First(&reverse).Error
		if err == nil {
			return fmt.Errorf("cannot follow this user: %w", apperror.ErrForbidden)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(follow).Error
	})
}

func (r *followRepository) Find(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error) {
	var follow entity.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error; err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ? AND blocked_at IS NULL", followerID, followedID).
		Delete(&entity.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("not following this user: %w", apperror.ErrConflict)
	}
	return nil
}

func (r *followRepository) Accept(ctx context.Context, followerID, followedID uuid.UUID) (*entity.Follow, error) {
	var follow *entity.Follow

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge entity.Follow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id = ? AND followed_id = ?", followerID, followedID).
			First(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("follow request not found: %w", apperror.ErrNotFound)
			}
			return err
		}
		if edge.IsAccepted {
			return fmt.Errorf("follow request already accepted: %w", apperror.ErrConflict)
		}

		edge.IsAccepted = true
		if err := tx.Save(&edge).Error; err != nil {
			return err
		}
		follow = &edge
		return nil
	})
	if err != nil {
		return nil, err
	}
	return follow, nil
}

func (r *followRepository) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var edge entity.Follow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("follower_id = ? AND followed_id = ?", blockerID, blockedID).
			First(&edge).Error
		switch {
		case err == nil:
			if edge.BlockedAt != nil {
				return fmt.Errorf("user is already blocked: %w", apperror.ErrConflict)
			}
			edge.BlockedAt = &now
			edge.IsAccepted = false
			if err := tx.Save(&edge).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&entity.Follow{
				FollowerID: blockerID,
				FollowedID: blockedID,
				IsAccepted: false,
				BlockedAt:  &now,
			}).Error; err != nil {
				return err
			}
		default:
			return err
		}

		// Blocking severs the reverse edge too.
		return tx.Where("follower_id = ? AND followed_id = ? AND blocked_at IS NULL", blockedID, blockerID).
			Delete(&entity.Follow{}).Error
	})
}

func (r *followRepository) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ? AND blocked_at IS NOT NULL", blockerID, blockedID).
		Delete(&entity.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user is not blocked: %w", apperror.ErrConflict)
	}
	return nil
}

func (r *followRepository) Followers(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error) {
	query := r.db.WithContext(ctx).
		Preload("Follower").
		Where("followed_id = ? AND is_accepted = ? AND blocked_at IS NULL", userID, true)
	if cursor != nil {
		query = query.Where("id < ?", *cursor)
	}

	var follows []*entity.Follow
	if err := query.Order("id DESC").Limit(limit).Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

func (r *followRepository) Following(ctx context.Context, userID uuid.UUID, cursor *uuid.UUID, limit int) ([]*entity.Follow, error) {
	query := r.db.WithContext(ctx).
		Preload("Followed").
		Where("follower_id = ? AND is_accepted = ? AND blocked_at IS NULL", userID, true)
	if cursor != nil {
		query = query.Where("id < ?", *cursor)
	}

	var follows []*entity.Follow
	if err := query.Order("id DESC").Limit(limit).Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("followed_id = ? AND is_accepted = ? AND blocked_at IS NULL", userID, true).
		Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Follow{}).
		Where("follower_id = ? AND is_accepted = ? AND blocked_at IS NULL", userID, true).
		Count(&count).Error
	return count, err
}

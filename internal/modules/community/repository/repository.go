package repository

import (
	"context"

	"anoa.com/communityhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityRepository interface {
	// CreateGraph persists a new community with its topic pivot, the creator
	// membership row and tag pivots in a single transaction. Tag usage
	// counters are incremented alongside the pivot inserts.
	CreateGraph(ctx context.Context, community *entity.Community, topicID uuid.UUID, tagIDs []uuid.UUID, creatorMember *entity.CommunityMember) error
	// UpdateGraph saves community fields and applies the tag set difference:
	// added ids get pivot rows and usage_count increments, removed ids get
	// pivot deletes and decrements. An optional topic replaces the existing
	// pivot row.
	UpdateGraph(ctx context.Context, community *entity.Community, topicID *uuid.UUID, addTagIDs, removeTagIDs []uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Community, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Community, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	FindPublished(ctx context.Context, search, communityType string, offset, limit int) ([]*entity.Community, int64, error)
	FindByTopic(ctx context.Context, topicID uuid.UUID) ([]*entity.Community, error)
	TagIDsByCommunity(ctx context.Context, communityID uuid.UUID) ([]uuid.UUID, error)
	TagsByCommunity(ctx context.Context, communityID uuid.UUID) ([]*entity.Tag, error)

	// Reconciliation helpers for the background counter sweep.
	ListCommunityCounters(ctx context.Context, lastID uuid.UUID, batchSize int) ([]CounterPair, error)
	CountActiveMembers(ctx context.Context, communityID uuid.UUID) (int64, error)
	SetActiveMembersCount(ctx context.Context, communityID uuid.UUID, count int64) error
	ListTagCounters(ctx context.Context, lastID uuid.UUID, batchSize int) ([]CounterPair, error)
	CountTagUsage(ctx context.Context, tagID uuid.UUID) (int64, error)
	SetTagUsageCount(ctx context.Context, tagID uuid.UUID, count int64) error
}

// CounterPair carries a stored denormalized counter for reconciliation
// against its source-of-truth row count.
type CounterPair struct {
	ID    uuid.UUID
	Count int64
}

type communityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) CreateGraph(ctx context.Context, community *entity.Community, topicID uuid.UUID, tagIDs []uuid.UUID, creatorMember *entity.CommunityMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}

		if err := tx.Create(&entity.CommunityTopic{
			CommunityID: community.ID,
			TopicID:     topicID,
		}).Error; err != nil {
			return err
		}

		creatorMember.CommunityID = community.ID
		if err := tx.Create(creatorMember).Error; err != nil {
			return err
		}

		for _, tagID := range tagIDs {
			if err := attachTag(tx, community.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *communityRepository) UpdateGraph(ctx context.Context, community *entity.Community, topicID *uuid.UUID, addTagIDs, removeTagIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(community).Error; err != nil {
			return err
		}

		if topicID != nil {
			// The write path keeps a single topic per community: replace, not add.
			if err := tx.Where("community_id = ?", community.ID).
				Delete(&entity.CommunityTopic{}).Error; err != nil {
				return err
			}
			if err := tx.Create(&entity.CommunityTopic{
				CommunityID: community.ID,
				TopicID:     *topicID,
			}).Error; err != nil {
				return err
			}
		}

		for _, tagID := range addTagIDs {
			if err := attachTag(tx, community.ID, tagID); err != nil {
				return err
			}
		}
		for _, tagID := range removeTagIDs {
			if err := detachTag(tx, community.ID, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

func attachTag(tx *gorm.DB, communityID, tagID uuid.UUID) error {
	if err := tx.Create(&entity.CommunityTag{
		CommunityID: communityID,
		TagID:       tagID,
	}).Error; err != nil {
		return err
	}
	return tx.Model(&entity.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func detachTag(tx *gorm.DB, communityID, tagID uuid.UUID) error {
	res := tx.Where("community_id = ? AND tag_id = ?", communityID, tagID).
		Delete(&entity.CommunityTag{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return tx.Model(&entity.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("usage_count", gorm.Expr("GREATEST(0, usage_count - 1)")).Error
}

func (r *communityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Community, error) {
	var community entity.Community
	if err := r.db.WithContext(ctx).First(&community, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) FindBySlug(ctx context.Context, slug string) (*entity.Community, error) {
	var community entity.Community
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&community).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *communityRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Community{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *communityRepository) FindPublished(ctx context.Context, search, communityType string, offset, limit int) ([]*entity.Community, int64, error) {
	var communities []*entity.Community
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Community{}).
		Where("status = ?", entity.CommunityStatusPublished)

	if search != "" {
		query = query.Where("name ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if communityType != "" {
		query = query.Where("type = ?", communityType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("active_members_count DESC").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&communities).Error; err != nil {
		return nil, 0, err
	}

	return communities, total, nil
}

func (r *communityRepository) FindByTopic(ctx context.Context, topicID uuid.UUID) ([]*entity.Community, error) {
	var communities []*entity.Community
	if err := r.db.WithContext(ctx).
		Joins("JOIN community_topics ON community_topics.community_id = communities.id").
		Where("community_topics.topic_id = ? AND communities.status = ?", topicID, entity.CommunityStatusPublished).
		Order("communities.active_members_count DESC").
		Find(&communities).Error; err != nil {
		return nil, err
	}
	return communities, nil
}

func (r *communityRepository) TagIDsByCommunity(ctx context.Context, communityID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&entity.CommunityTag{}).
		Where("community_id = ?", communityID).
		Pluck("tag_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *communityRepository) TagsByCommunity(ctx context.Context, communityID uuid.UUID) ([]*entity.Tag, error) {
	var tags []*entity.Tag
	if err := r.db.WithContext(ctx).
		Joins("JOIN community_tags ON community_tags.tag_id = tags.id").
		Where("community_tags.community_id = ?", communityID).
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *communityRepository) ListCommunityCounters(ctx context.Context, lastID uuid.UUID, batchSize int) ([]CounterPair, error) {
	var pairs []CounterPair
	if err := r.db.WithContext(ctx).
		Model(&entity.Community{}).
		Select("id, active_members_count AS count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *communityRepository) CountActiveMembers(ctx context.Context, communityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.CommunityMember{}).
		Where("community_id = ? AND status = ?", communityID, entity.MemberStatusActive).
		Count(&count).Error
	return count, err
}

func (r *communityRepository) SetActiveMembersCount(ctx context.Context, communityID uuid.UUID, count int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Community{}).
		Where("id = ?", communityID).
		UpdateColumn("active_members_count", count).Error
}

func (r *communityRepository) ListTagCounters(ctx context.Context, lastID uuid.UUID, batchSize int) ([]CounterPair, error) {
	var pairs []CounterPair
	if err := r.db.WithContext(ctx).
		Model(&entity.Tag{}).
		Select("id, usage_count AS count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *communityRepository) CountTagUsage(ctx context.Context, tagID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.CommunityTag{}).
		Where("tag_id = ?", tagID).
		Count(&count).Error
	return count, err
}

func (r *communityRepository) SetTagUsageCount(ctx context.Context, tagID uuid.UUID, count int64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("usage_count", count).Error
}

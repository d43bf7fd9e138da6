package repository

import (
	"context"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/topic/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicRepository interface {
	Create(ctx context.Context, topic *entity.Topic) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error)
	FindByInterestAndSlug(ctx context.Context, interestID uuid.UUID, slug string) (*entity.Topic, error)
	FindAll(ctx context.Context, search string) ([]*entity.Topic, error)
	FindActiveByInterest(ctx context.Context, interestID uuid.UUID) ([]dto.TopicWithCommunityCount, error)
	Update(ctx context.Context, topic *entity.Topic) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(ctx context.Context, topic *entity.Topic) error {
	return r.db.WithContext(ctx).Create(topic).Error
}

func (r *topicRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).
		Preload("Interest").
		First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindByInterestAndSlug(ctx context.Context, interestID uuid.UUID, slug string) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).
		Where("interest_id = ? AND slug = ?", interestID, slug).
		First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindAll(ctx context.Context, search string) ([]*entity.Topic, error) {
	var topics []*entity.Topic
	query := r.db.WithContext(ctx).Preload("Interest")

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Order("name ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

// FindActiveByInterest returns active topics under an interest, each carrying
// its community count, in a single grouped query.
func (r *topicRepository) FindActiveByInterest(ctx context.Context, interestID uuid.UUID) ([]dto.TopicWithCommunityCount, error) {
	var topics []dto.TopicWithCommunityCount
	if err := r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Select("topics.*, COUNT(community_topics.community_id) AS communities_count").
		Joins("LEFT JOIN community_topics ON community_topics.topic_id = topics.id").
		Where("topics.interest_id = ? AND topics.is_active = ?", interestID, true).
		Group("topics.id").
		Order("topics.name ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) Update(ctx context.Context, topic *entity.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *topicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Topic{}, "id = ?", id).Error
}

package topic

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	interestRepo "anoa.com/communityhub/internal/modules/interest/repository"
	"anoa.com/communityhub/internal/modules/topic/dto"
	"anoa.com/communityhub/internal/modules/topic/repository"
	"anoa.com/communityhub/pkg/apperror"
	"anoa.com/communityhub/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TopicService interface {
	Create(ctx context.Context, req dto.CreateTopicRequest) (*entity.Topic, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error)
	GetAll(ctx context.Context, search string) ([]*entity.Topic, error)
	GetByInterest(ctx context.Context, interestID uuid.UUID) (*dto.InterestTopicsResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*entity.Topic, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type topicService struct {
	repo         repository.TopicRepository
	interestRepo interestRepo.InterestRepository
}

func NewTopicService(repo repository.TopicRepository, interestRepo interestRepo.InterestRepository) TopicService {
	return &topicService{
		repo:         repo,
		interestRepo: interestRepo,
	}
}

func (s *topicService) Create(ctx context.Context, req dto.CreateTopicRequest) (*entity.Topic, error) {
	interestID, err := uuid.Parse(req.InterestID)
	if err != nil {
		return nil, fmt.Errorf("invalid interest id format: %w", apperror.ErrBadRequest)
	}

	if _, err := s.interestRepo.FindByID(ctx, interestID); err != nil {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			"interest_id": "referenced interest does not exist",
		}}
	}

	topicSlug := slug.Make(req.Name)
	if req.Slug != nil && *req.Slug != "" {
		topicSlug = slug.Make(*req.Slug)
	}

	// (interest_id, slug) must be unique; violations come back as an explicit
	// error payload, not a thrown constraint error.
	if err := s.checkSlugUnique(ctx, interestID, topicSlug, nil); err != nil {
		return nil, err
	}

	topic := &entity.Topic{
		InterestID:  interestID,
		Name:        req.Name,
		Slug:        topicSlug,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	topic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
	}
	return topic, nil
}

func (s *topicService) GetAll(ctx context.Context, search string) ([]*entity.Topic, error) {
	return s.repo.FindAll(ctx, search)
}

func (s *topicService) GetByInterest(ctx context.Context, interestID uuid.UUID) (*dto.InterestTopicsResponse, error) {
	interest, err := s.interestRepo.FindByID(ctx, interestID)
	if err != nil {
		return nil, fmt.Errorf("interest not found: %w", apperror.ErrNotFound)
	}

	topics, err := s.repo.FindActiveByInterest(ctx, interestID)
	if err != nil {
		return nil, err
	}

	return &dto.InterestTopicsResponse{
		Interest: interest,
		Topics:   topics,
	}, nil
}

func (s *topicService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTopicRequest) (*entity.Topic, error) {
	topic, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
	}

	topicSlug := topic.Slug
	if req.Name != nil && *req.Name != "" && req.Slug == nil {
		topicSlug = slug.Make(*req.Name)
	}
	if req.Slug != nil && *req.Slug != "" {
		topicSlug = slug.Make(*req.Slug)
	}

	if topicSlug != topic.Slug {
		if err := s.checkSlugUnique(ctx, topic.InterestID, topicSlug, &topic.ID); err != nil {
			return nil, err
		}
	}

	if req.Name != nil && *req.Name != "" {
		topic.Name = *req.Name
	}
	topic.Slug = topicSlug
	if req.Description != nil {
		topic.Description = *req.Description
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *topicService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("topic not found: %w", apperror.ErrNotFound)
	}
	return s.repo.Delete(ctx, id)
}

func (s *topicService) checkSlugUnique(ctx context.Context, interestID uuid.UUID, topicSlug string, excludeID *uuid.UUID) error {
	existing, err := s.repo.FindByInterestAndSlug(ctx, interestID, topicSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if excludeID != nil && existing.ID == *excludeID {
		return nil
	}
	return &apperror.ValidationError{Fields: map[string]string{
		"slug": "a topic with this slug already exists under the interest",
	}}
}

package tag

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/tag/dto"
	"anoa.com/communityhub/internal/modules/tag/repository"
	topicRepo "anoa.com/communityhub/internal/modules/topic/repository"
	"anoa.com/communityhub/pkg/apperror"
	"anoa.com/communityhub/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TagService interface {
	Create(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error)
	GetAll(ctx context.Context, search string) ([]*entity.Tag, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTagRequest) (*entity.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagService struct {
	repo      repository.TagRepository
	topicRepo topicRepo.TopicRepository
}

func NewTagService(repo repository.TagRepository, topicRepo topicRepo.TopicRepository) TagService {
	return &tagService{
		repo:      repo,
		topicRepo: topicRepo,
	}
}

func (s *tagService) Create(ctx context.Context, req dto.CreateTagRequest) (*entity.Tag, error) {
	var topicID *uuid.UUID
	if req.TopicID != nil && *req.TopicID != "" {
		parsed, err := uuid.Parse(*req.TopicID)
		if err != nil {
			return nil, fmt.Errorf("invalid topic id format: %w", apperror.ErrBadRequest)
		}
		if _, err := s.topicRepo.FindByID(ctx, parsed); err != nil {
			return nil, &apperror.ValidationError{Fields: map[string]string{
				"topic_id": "referenced topic does not exist",
			}}
		}
		topicID = &parsed
	}

	tagSlug := slug.Make(req.Name)
	if req.Slug != nil && *req.Slug != "" {
		tagSlug = slug.Make(*req.Slug)
	}

	// (topic_id, slug) uniqueness is enforced here, before insert; the tag
	// table itself carries no constraint for it.
	if err := s.checkSlugUnique(ctx, topicID, tagSlug, nil); err != nil {
		return nil, err
	}

	tag := &entity.Tag{
		TopicID:  topicID,
		Name:     req.Name,
		Slug:     tagSlug,
		IsActive: true,
	}
	if req.IsActive != nil {
		tag.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tag not found: %w", apperror.ErrNotFound)
	}
	return tag, nil
}

func (s *tagService) GetAll(ctx context.Context, search string) ([]*entity.Tag, error) {
	return s.repo.FindAll(ctx, search)
}

func (s *tagService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTagRequest) (*entity.Tag, error) {
	tag, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tag not found: %w", apperror.ErrNotFound)
	}

	topicID := tag.TopicID
	if req.TopicID != nil {
		if *req.TopicID == "" {
			topicID = nil
		} else {
			parsed, err := uuid.Parse(*req.TopicID)
			if err != nil {
				return nil, fmt.Errorf("invalid topic id format: %w", apperror.ErrBadRequest)
			}
			if _, err := s.topicRepo.FindByID(ctx, parsed); err != nil {
				return nil, &apperror.ValidationError{Fields: map[string]string{
					"topic_id": "referenced topic does not exist",
				}}
			}
			topicID = &parsed
		}
	}

	tagSlug := tag.Slug
	if req.Name != nil && *req.Name != "" && req.Slug == nil {
		tagSlug = slug.Make(*req.Name)
	}
	if req.Slug != nil && *req.Slug != "" {
		tagSlug = slug.Make(*req.Slug)
	}

	if tagSlug != tag.Slug || !uuidPtrEqual(topicID, tag.TopicID) {
		if err := s.checkSlugUnique(ctx, topicID, tagSlug, &tag.ID); err != nil {
			return nil, err
		}
	}

	tag.TopicID = topicID
	if req.Name != nil && *req.Name != "" {
		tag.Name = *req.Name
	}
	tag.Slug = tagSlug
	if req.IsActive != nil {
		tag.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("tag not found: %w", apperror.ErrNotFound)
	}
	return s.repo.Delete(ctx, id)
}

func (s *tagService) checkSlugUnique(ctx context.Context, topicID *uuid.UUID, tagSlug string, excludeID *uuid.UUID) error {
	existing, err := s.repo.FindByTopicAndSlug(ctx, topicID, tagSlug)
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
		"slug": "a tag with this slug already exists under the topic",
	}}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

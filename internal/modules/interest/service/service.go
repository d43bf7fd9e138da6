package interest

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/internal/modules/interest/dto"
	"anoa.com/communityhub/internal/modules/interest/repository"
	"anoa.com/communityhub/pkg/apperror"
	"anoa.com/communityhub/pkg/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InterestService interface {
	Create(ctx context.Context, req dto.CreateInterestRequest) (*entity.Interest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Interest, error)
	GetAll(ctx context.Context, search string) ([]*entity.Interest, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateInterestRequest) (*entity.Interest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type interestService struct {
	repo repository.InterestRepository
}

func NewInterestService(repo repository.InterestRepository) InterestService {
	return &interestService{repo: repo}
}

func (s *interestService) Create(ctx context.Context, req dto.CreateInterestRequest) (*entity.Interest, error) {
	interestSlug := slug.Make(req.Name)
	if req.Slug != nil && *req.Slug != "" {
		interestSlug = slug.Make(*req.Slug)
	}

	// Slug and name collisions are rejected outright, never auto-suffixed.
	if fields := s.checkUniqueness(ctx, req.Name, interestSlug, nil); len(fields) > 0 {
		return nil, &apperror.ValidationError{Fields: fields}
	}

	interest := &entity.Interest{
		Name:        req.Name,
		Slug:        interestSlug,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		interest.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, interest); err != nil {
		return nil, err
	}
	return interest, nil
}

func (s *interestService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Interest, error) {
	interest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("interest not found: %w", apperror.ErrNotFound)
	}
	return interest, nil
}

func (s *interestService) GetAll(ctx context.Context, search string) ([]*entity.Interest, error) {
	return s.repo.FindAll(ctx, search)
}

func (s *interestService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateInterestRequest) (*entity.Interest, error) {
	interest, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("interest not found: %w", apperror.ErrNotFound)
	}

	name := interest.Name
	if req.Name != nil && *req.Name != "" {
		name = *req.Name
	}
	interestSlug := interest.Slug
	if req.Name != nil && *req.Name != "" && req.Slug == nil {
		interestSlug = slug.Make(*req.Name)
	}
	if req.Slug != nil && *req.Slug != "" {
		interestSlug = slug.Make(*req.Slug)
	}

	if name != interest.Name || interestSlug != interest.Slug {
		if fields := s.checkUniqueness(ctx, name, interestSlug, &interest.ID); len(fields) > 0 {
			return nil, &apperror.ValidationError{Fields: fields}
		}
	}

	interest.Name = name
	interest.Slug = interestSlug
	if req.Description != nil {
		interest.Description = *req.Description
	}
	if req.IsActive != nil {
		interest.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, interest); err != nil {
		return nil, err
	}
	return interest, nil
}

func (s *interestService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("interest not found: %w", apperror.ErrNotFound)
	}
	return s.repo.Delete(ctx, id)
}

func (s *interestService) checkUniqueness(ctx context.Context, name, interestSlug string, excludeID *uuid.UUID) map[string]string {
	fields := make(map[string]string)

	if existing, err := s.repo.FindByName(ctx, name); err == nil {
		if excludeID == nil || existing.ID != *excludeID {
			fields["name"] = "an interest with this name already exists"
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		fields["name"] = "could not verify name uniqueness"
	}

	if existing, err := s.repo.FindBySlug(ctx, interestSlug); err == nil {
		if excludeID == nil || existing.ID != *excludeID {
			fields["slug"] = "an interest with this slug already exists"
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		fields["slug"] = "could not verify slug uniqueness"
	}

	return fields
}

package repository

import (
	"context"

	"anoa.com/communityhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InterestRepository interface {
	Create(ctx context.Context, interest *entity.Interest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Interest, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Interest, error)
	FindByName(ctx context.Context, name string) (*entity.Interest, error)
	FindAll(ctx context.Context, search string) ([]*entity.Interest, error)
	Update(ctx context.Context, interest *entity.Interest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type interestRepository struct {
	db *gorm.DB
}

func NewInterestRepository(db *gorm.DB) InterestRepository {
	return &interestRepository{db: db}
}

func (r *interestRepository) Create(ctx context.Context, interest *entity.Interest) error {
	return r.db.WithContext(ctx).Create(interest).Error
}

func (r *interestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Interest, error) {
	var interest entity.Interest
	if err := r.db.WithContext(ctx).First(&interest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

func (r *interestRepository) FindBySlug(ctx context.Context, slug string) (*entity.Interest, error) {
	var interest entity.Interest
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&interest).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

func (r *interestRepository) FindByName(ctx context.Context, name string) (*entity.Interest, error) {
	var interest entity.Interest
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&interest).Error; err != nil {
		return nil, err
	}
	return &interest, nil
}

func (r *interestRepository) FindAll(ctx context.Context, search string) ([]*entity.Interest, error) {
	var interests []*entity.Interest
	query := r.db.WithContext(ctx)

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Order("name ASC").Find(&interests).Error; err != nil {
		return nil, err
	}
	return interests, nil
}

func (r *interestRepository) Update(ctx context.Context, interest *entity.Interest) error {
	return r.db.WithContext(ctx).Save(interest).Error
}

func (r *interestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Interest{}, "id = ?", id).Error
}

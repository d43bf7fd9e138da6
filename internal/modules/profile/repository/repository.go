package repository

import (
	"context"
	"fmt"

	"anoa.com/communityhub/internal/entity"
	"anoa.com/communityhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	// UpdateProfile saves the user's scalar fields and replaces each non-nil
	// sub-collection in the same transaction: rows with ids are updated,
	// rows without ids are created, stored rows absent from the submitted
	// set are deleted.
	UpdateProfile(ctx context.Context, user *entity.User, educations *[]entity.Education, experiences *[]entity.Experience, socialLinks *[]entity.SocialLink) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) UpdateProfile(ctx context.Context, user *entity.User, educations *[]entity.Education, experiences *[]entity.Experience, socialLinks *[]entity.SocialLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Educations", "Experiences", "SocialLinks", "Role").
			Save(user).Error; err != nil {
			return err
		}

		if educations != nil {
			if err := syncCollection(tx, user.ID, *educations, &entity.Education{}); err != nil {
				return err
			}
		}
		if experiences != nil {
			if err := syncCollection(tx, user.ID, *experiences, &entity.Experience{}); err != nil {
				return err
			}
		}
		if socialLinks != nil {
			if err := syncCollection(tx, user.ID, *socialLinks, &entity.SocialLink{}); err != nil {
				return err
			}
		}
		return nil
	})
}

type ownedRecord interface {
	entity.Education | entity.Experience | entity.SocialLink
}

func recordID[T ownedRecord](row T) uuid.UUID {
	switch v := any(row).(type) {
	case entity.Education:
		return v.ID
	case entity.Experience:
		return v.ID
	case entity.SocialLink:
		return v.ID
	}
	return uuid.Nil
}

// syncCollection applies the replace-set semantics for one owned collection.
// Submitted ids must belong to the user, everything else is rejected.
func syncCollection[T ownedRecord](tx *gorm.DB, userID uuid.UUID, rows []T, model *T) error {
	var existingIDs []uuid.UUID
	if err := tx.Model(model).
		Where("user_id = ?", userID).
		Pluck("id", &existingIDs).Error; err != nil {
		return err
	}
	existing := make(map[uuid.UUID]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}

	keep := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		id := recordID(row)
		if id == uuid.Nil {
			continue
		}
		if !existing[id] {
			return fmt.Errorf("record %s does not belong to this profile: %w", id, apperror.ErrBadRequest)
		}
		keep = append(keep, id)
	}

	// Delete rows the client no longer sends.
	del := tx.Where("user_id = ?", userID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(model).Error; err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&rows).Error
}

package bootstrap

import (
	"log"

	"anoa.com/communityhub/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Education{},
		&entity.Experience{},
		&entity.SocialLink{},
		&entity.Interest{},
		&entity.Topic{},
		&entity.Tag{},
		&entity.Community{},
		&entity.CommunityMember{},
		&entity.CommunityTag{},
		&entity.CommunityTopic{},
		&entity.Follow{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Platform administrator"},
		{Name: entity.RoleMember, Description: "Regular member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@communityhub.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@communityhub.local",
		PasswordHash: string(hashedPasswordBytes),
		FullName:     "Administrator",
		RoleID:       &adminRole.ID,
	}
	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded (admin@communityhub.local / admin123)")
	return nil
}

// SeedTaxonomy plants a starter interest tree so a fresh environment has
// something to attach communities to.
func SeedTaxonomy(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Interest{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	interests := []struct {
		name   string
		slug   string
		topics []struct{ name, slug string }
	}{
		{
			name: "Technology", slug: "technology",
			topics: []struct{ name, slug string }{
				{"Software Engineering", "software-engineering"},
				{"Data Science", "data-science"},
			},
		},
		{
			name: "Business", slug: "business",
			topics: []struct{ name, slug string }{
				{"Entrepreneurship", "entrepreneurship"},
				{"Marketing", "marketing"},
			},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, in := range interests {
			interest := entity.Interest{Name: in.name, Slug: in.slug, IsActive: true}
			if err := tx.Create(&interest).Error; err != nil {
				return err
			}
			for _, t := range in.topics {
				topic := entity.Topic{
					InterestID: interest.ID,
					Name:       t.name,
					Slug:       t.slug,
					IsActive:   true,
				}
				if err := tx.Create(&topic).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

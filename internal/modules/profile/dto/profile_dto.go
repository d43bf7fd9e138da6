package dto

import (
	"io"
	"time"

	"anoa.com/communityhub/internal/entity"
	"github.com/google/uuid"
)

// AvatarFile wraps an uploaded avatar stream.
type AvatarFile struct {
	Reader   io.Reader
	FileName string
}

// Sub-collection inputs carry an optional id. Rows with an id update the
// existing record, rows without one are created, and stored rows absent
// from the submitted set are deleted.
type EducationInput struct {
	ID           *string `json:"id" binding:"omitempty,uuid"`
	School       string  `json:"school" binding:"required,max=150"`
	Degree       *string `json:"degree" binding:"omitempty,max=100"`
	FieldOfStudy *string `json:"field_of_study" binding:"omitempty,max=100"`
	StartYear    *int    `json:"start_year" binding:"omitempty,min=1900,max=2100"`
	EndYear      *int    `json:"end_year" binding:"omitempty,min=1900,max=2100"`
}

type ExperienceInput struct {
	ID          *string    `json:"id" binding:"omitempty,uuid"`
	Title       string     `json:"title" binding:"required,max=150"`
	Company     string     `json:"company" binding:"required,max=150"`
	Location    *string    `json:"location" binding:"omitempty,max=100"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
}

type SocialLinkInput struct {
	ID       *string `json:"id" binding:"omitempty,uuid"`
	Platform string  `json:"platform" binding:"required,max=50"`
	URL      string  `json:"url" binding:"required,url"`
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" binding:"omitempty,max=100"`
	Headline  *string `json:"headline" binding:"omitempty,max=150"`
	Bio       *string `json:"bio" binding:"omitempty,max=5000"`
	Location  *string `json:"location" binding:"omitempty,max=100"`
	IsPrivate *bool   `json:"is_private"`

	// Nil leaves a collection untouched, an empty slice clears it.
	Educations  *[]EducationInput  `json:"educations" binding:"omitempty,dive"`
	Experiences *[]ExperienceInput `json:"experiences" binding:"omitempty,dive"`
	SocialLinks *[]SocialLinkInput `json:"social_links" binding:"omitempty,dive"`
}

// NetworkStats summarizes the user's follow graph for the profile document.
type NetworkStats struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

type ProfileResponse struct {
	*entity.User
	Network NetworkStats `json:"network"`
	// IsFollowing is set for authenticated viewers of someone else's profile.
	IsFollowing *bool `json:"is_following,omitempty"`
}

// OwnerID helpers for the sync pass.
func (e EducationInput) RecordID() *string  { return e.ID }
func (e ExperienceInput) RecordID() *string { return e.ID }
func (l SocialLinkInput) RecordID() *string { return l.ID }

func (e EducationInput) ToEntity(userID uuid.UUID) entity.Education {
	row := entity.Education{
		UserID:       userID,
		School:       e.School,
		Degree:       e.Degree,
		FieldOfStudy: e.FieldOfStudy,
		StartYear:    e.StartYear,
		EndYear:      e.EndYear,
	}
	if e.ID != nil {
		row.ID = uuid.MustParse(*e.ID)
	}
	return row
}

func (e ExperienceInput) ToEntity(userID uuid.UUID) entity.Experience {
	row := entity.Experience{
		UserID:      userID,
		Title:       e.Title,
		Company:     e.Company,
		Location:    e.Location,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Description: e.Description,
	}
	if e.ID != nil {
		row.ID = uuid.MustParse(*e.ID)
	}
	return row
}

func (l SocialLinkInput) ToEntity(userID uuid.UUID) entity.SocialLink {
	row := entity.SocialLink{
		UserID:   userID,
		Platform: l.Platform,
		URL:      l.URL,
	}
	if l.ID != nil {
		row.ID = uuid.MustParse(*l.ID)
	}
	return row
}

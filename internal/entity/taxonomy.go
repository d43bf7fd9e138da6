package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interest is the root of the taxonomy. Slug collisions are rejected by the
// unique index, never auto-suffixed.
type Interest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug         string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	MembersCount int       `gorm:"default:0" json:"members_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Interest) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID, err = uuid.NewV7()
	}
	return
}

// Topic belongs to an Interest. The (interest_id, slug) pair is unique.
type Topic struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InterestID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_topic_interest_slug,priority:1" json:"interest_id"`
	Interest     *Interest `gorm:"constraint:OnDelete:CASCADE" json:"interest,omitempty"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Slug         string    `gorm:"size:100;not null;uniqueIndex:idx_topic_interest_slug,priority:2" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	MembersCount int       `gorm:"default:0" json:"members_count"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

// Tag optionally belongs to a Topic. (topic_id, slug) uniqueness is checked
// explicitly in the service before insert/update, not by a DB constraint.
// UsageCount tracks exactly the number of CommunityTag rows referencing it.
type Tag struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID    *uuid.UUID `gorm:"type:uuid;index" json:"topic_id,omitempty"`
	Topic      *Topic     `gorm:"constraint:OnDelete:SET NULL" json:"topic,omitempty"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Slug       string     `gorm:"size:100;not null;index" json:"slug"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`
	UsageCount int        `gorm:"default:0" json:"usage_count"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

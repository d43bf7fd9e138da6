package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow is a directed edge between users. The (follower_id, followed_id)
// pair is unique; blocking reuses the same row via BlockedAt.
type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_follower_followed,priority:1" json:"follower_id"`
	Follower   *User     `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	FollowedID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_follower_followed,priority:2" json:"followed_id"`
	Followed   *User     `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"followed,omitempty"`

	// IsAccepted is false while a follow of a private account awaits approval.
	IsAccepted bool       `gorm:"default:true" json:"is_accepted"`
	IsMuted    bool       `gorm:"default:false" json:"is_muted"`
	BlockedAt  *time.Time `json:"blocked_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

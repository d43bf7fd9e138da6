package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationFollowRequest = "follow_request"
	NotificationFollowed      = "followed"
	NotificationFollowAccept  = "follow_accepted"
	NotificationMemberJoined  = "member_joined"
)

type Notification struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Actor   *User      `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL" json:"actor,omitempty"`

	Type        string `gorm:"size:30;not null" json:"type"`
	Message     string `gorm:"type:text;not null" json:"message"`
	ReferenceID string `gorm:"size:36" json:"reference_id,omitempty"`

	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}

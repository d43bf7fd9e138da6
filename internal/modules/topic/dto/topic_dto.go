package dto

import (
	"anoa.com/communityhub/internal/entity"
	"github.com/google/uuid"
)

type CreateTopicRequest struct {
	InterestID  string  `json:"interest_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateTopicRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// TopicWithCommunityCount annotates a topic with the number of communities
// associated through the community_topics pivot.
type TopicWithCommunityCount struct {
	entity.Topic
	CommunitiesCount int64 `json:"communities_count"`
}

type InterestTopicsResponse struct {
	Interest *entity.Interest          `json:"interest"`
	Topics   []TopicWithCommunityCount `json:"topics"`
}

type TopicID struct {
	ID uuid.UUID `uri:"id" binding:"required,uuid"`
}

package dto

import (
	"io"

	"anoa.com/communityhub/internal/entity"
	commonDto "anoa.com/communityhub/pkg/dto"
)

type CreateCommunityRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=3,max=150"`
	Description string `json:"description" form:"description" binding:"required,max=5000"`
	InterestID  string `json:"interest_id" form:"interest_id" binding:"required,uuid"`
	TopicID     string `json:"topic_id" form:"topic_id" binding:"required,uuid"`

	Type       string `json:"type" form:"type" binding:"required,oneof=professional student"`
	Visibility string `json:"visibility" form:"visibility" binding:"required,oneof=public private unlisted invite_only"`
	JoinPolicy string `json:"join_policy" form:"join_policy" binding:"required,oneof=open request invite application"`

	MaxMembers *int     `json:"max_members" form:"max_members" binding:"omitempty,min=2"`
	TagIDs     []string `json:"tags" form:"tags" binding:"omitempty,max=10,dive,uuid"`

	FAQs                  entity.JSON `json:"faqs" form:"faqs"`
	VerificationQuestions entity.JSON `json:"verification_questions" form:"verification_questions"`
	CustomTheme           entity.JSON `json:"custom_theme" form:"custom_theme"`
	Settings              entity.JSON `json:"settings" form:"settings"`
	RankingMetrics        entity.JSON `json:"ranking_metrics" form:"ranking_metrics"`
}

type UpdateCommunityRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=3,max=150"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=5000"`
	TopicID     *string `json:"topic_id" form:"topic_id" binding:"omitempty,uuid"`

	Type       *string `json:"type" form:"type" binding:"omitempty,oneof=professional student"`
	Visibility *string `json:"visibility" form:"visibility" binding:"omitempty,oneof=public private unlisted invite_only"`
	JoinPolicy *string `json:"join_policy" form:"join_policy" binding:"omitempty,oneof=open request invite application"`

	MaxMembers *int      `json:"max_members" form:"max_members" binding:"omitempty,min=2"`
	TagIDs     *[]string `json:"tags" form:"tags" binding:"omitempty,max=10,dive,uuid"`

	FAQs                  entity.JSON `json:"faqs" form:"faqs"`
	VerificationQuestions entity.JSON `json:"verification_questions" form:"verification_questions"`
	CustomTheme           entity.JSON `json:"custom_theme" form:"custom_theme"`
	Settings              entity.JSON `json:"settings" form:"settings"`
}

// ImageFile wraps an uploaded image stream.
type ImageFile struct {
	Reader   io.Reader
	FileName string
}

// CommunityImages carries the optional avatar/banner uploads alongside a
// create or update request.
type CommunityImages struct {
	Avatar *ImageFile
	Banner *ImageFile
}

// CommunityResponse annotates a community with the ephemeral joined flag,
// computed per response for the acting user and never persisted.
type CommunityResponse struct {
	*entity.Community
	Joined bool          `json:"joined"`
	Tags   []*entity.Tag `json:"tags,omitempty"`
}

type CommunityListResponse struct {
	Data []CommunityResponse     `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type CommunityFilter struct {
	Search string `form:"search"`
	Type   string `form:"type" binding:"omitempty,oneof=professional student"`
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

package dto

import (
	"anoa.com/communityhub/internal/entity"
	commonDto "anoa.com/communityhub/pkg/dto"
)

type FollowResponse struct {
	Follow  *entity.Follow `json:"follow"`
	Pending bool           `json:"pending"`
}

// FollowUser is the projection used in follower/following lists.
type FollowUser struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FullName  string  `json:"full_name"`
	Headline  *string `json:"headline,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

type FollowListResponse struct {
	Data []FollowUser        `json:"data"`
	Meta commonDto.CursorMeta `json:"meta"`
}

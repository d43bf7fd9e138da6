package dto

type CreateTagRequest struct {
	TopicID  *string `json:"topic_id" binding:"omitempty,uuid"`
	Name     string  `json:"name" binding:"required,max=100"`
	Slug     *string `json:"slug" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

type UpdateTagRequest struct {
	TopicID  *string `json:"topic_id" binding:"omitempty,uuid"`
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Slug     *string `json:"slug" binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

package dto

type CreateInterestRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateInterestRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Slug        *string `json:"slug" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

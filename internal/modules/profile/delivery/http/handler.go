package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"anoa.com/communityhub/internal/modules/profile/dto"
	profile "anoa.com/communityhub/internal/modules/profile/service"
	"anoa.com/communityhub/pkg/apperror"
	"anoa.com/communityhub/pkg/response"
	"anoa.com/communityhub/pkg/validator"
	"github.com/gin-gonic/gin"
)

const maxAvatarSize = 2 << 20 // 2 MiB

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type ProfileHandler struct {
	service profile.ProfileService
}

func NewProfileHandler(service profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetByUsername(c *gin.Context) {
	found, err := h.service.GetByUsername(c.Request.Context(), c.Param("username"), response.OptionalUserID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	me, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, me)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationErrors(err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated successfully", "profile": updated})
}

func (h *ProfileHandler) UpdateAvatar(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		response.ResponseError(c, &apperror.ValidationError{Fields: map[string]string{
			"avatar": "avatar file is required",
		}})
		return
	}
	if header.Size > maxAvatarSize {
		response.ResponseError(c, &apperror.ValidationError{Fields: map[string]string{
			"avatar": "avatar must be at most 2MB",
		}})
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAvatarExts[ext] {
		response.ResponseError(c, &apperror.ValidationError{Fields: map[string]string{
			"avatar": fmt.Sprintf("unsupported image type %q", ext),
		}})
		return
	}

	file, err := header.Open()
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer file.Close()

	user, err := h.service.UpdateAvatar(c.Request.Context(), userID, &dto.AvatarFile{Reader: file, FileName: header.Filename})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "avatar updated successfully", "user": user})
}

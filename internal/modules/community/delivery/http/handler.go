package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"anoa.com/communityhub/internal/modules/community/dto"
	community "anoa.com/communityhub/internal/modules/community/service"
	"anoa.com/communityhub/pkg/apperror"
	"anoa.com/communityhub/pkg/response"
	"anoa.com/communityhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxImageSize = 5 << 20 // 5 MiB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type CommunityHandler struct {
	service community.CommunityService
}

func NewCommunityHandler(service community.CommunityService) *CommunityHandler {
	return &CommunityHandler{service: service}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCommunityRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationErrors(err))
		return
	}

	images, err := h.bindImages(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req, images)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "community created successfully", "community": created})
}

func (h *CommunityHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.UpdateCommunityRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationErrors(err))
		return
	}

	images, err := h.bindImages(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), userID, id, req, images)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "community updated successfully", "community": updated})
}

func (h *CommunityHandler) GetBySlug(c *gin.Context) {
	found, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"), response.OptionalUserID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *CommunityHandler) List(c *gin.Context) {
	var filter dto.CommunityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.FormatValidationErrors(err))
		return
	}

	list, err := h.service.List(c.Request.Context(), filter, response.OptionalUserID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *CommunityHandler) GetByTopic(c *gin.Context) {
	topicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	data, err := h.service.GetByTopic(c.Request.Context(), topicID, response.OptionalUserID(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	community, err := h.service.Join(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "joined community successfully", "community": community})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	community, err := h.service.Leave(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "left community successfully", "community": community})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	members, meta, err := h.service.Members(c.Request.Context(), id, page, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members, "meta": meta})
}

// bindImages pulls the optional avatar/banner files out of a multipart
// request. JSON requests simply have no files.
func (h *CommunityHandler) bindImages(c *gin.Context) (dto.CommunityImages, error) {
	var images dto.CommunityImages
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return images, nil
	}

	avatar, err := h.openImage(c, "avatar")
	if err != nil {
		return images, err
	}
	images.Avatar = avatar

	banner, err := h.openImage(c, "banner")
	if err != nil {
		return images, err
	}
	images.Banner = banner

	return images, nil
}

func (h *CommunityHandler) openImage(c *gin.Context, field string) (*dto.ImageFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// Absent file is fine, both images are optional.
		return nil, nil
	}

	if header.Size > maxImageSize {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			field: "image must be at most 5MB",
		}}
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return nil, &apperror.ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("unsupported image type %q", ext),
		}}
	}

	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &dto.ImageFile{Reader: file, FileName: header.Filename}, nil
}

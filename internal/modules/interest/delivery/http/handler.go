package handler

import (
	"net/http"

	"anoa.com/communityhub/internal/modules/interest/dto"
	interest "anoa.com/communityhub/internal/modules/interest/service"
	"anoa.com/communityhub/pkg/response"
	"anoa.com/communityhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InterestHandler struct {
	service interest.InterestService
}

func NewInterestHandler(service interest.InterestService) *InterestHandler {
	return &InterestHandler{service: service}
}

func (h *InterestHandler) Create(c *gin.Context) {
	var req dto.CreateInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationErrors(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "interest created successfully", "interest": created})
}

func (h *InterestHandler) GetAll(c *gin.Context) {
	interests, err := h.service.GetAll(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": interests})
}

func (h *InterestHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *InterestHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	var req dto.UpdateInterestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.FormatValidationErrors(err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "interest updated successfully", "interest": updated})
}

func (h *InterestHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

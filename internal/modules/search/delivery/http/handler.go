package handler

import (
	"net/http"
	"strconv"

	search "anoa.com/communityhub/internal/modules/search/service"
	"anoa.com/communityhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.SearchService
}

func NewSearchHandler(service search.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Communities(c *gin.Context) {
	if h.service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not available"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	docs, err := h.service.SearchCommunities(c.Request.Context(), c.Query("q"), c.Query("type"), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}

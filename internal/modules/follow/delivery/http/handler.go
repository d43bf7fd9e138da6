package handler

import (
	"net/http"
	"strconv"

	follow "anoa.com/communityhub/internal/modules/follow/service"
	"anoa.com/communityhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FollowHandler struct {
	service follow.FollowService
}

func NewFollowHandler(service follow.FollowService) *FollowHandler {
	return &FollowHandler{service: service}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	userID, targetID, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	result, err := h.service.Follow(c.Request.Context(), userID, targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	message := "followed successfully"
	if result.Pending {
		message = "follow request sent"
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "follow": result.Follow})
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	userID, targetID, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.service.Unfollow(c.Request.Context(), userID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "unfollowed successfully"})
}

func (h *FollowHandler) Accept(c *gin.Context) {
	userID, followerID, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	edge, err := h.service.Accept(c.Request.Context(), userID, followerID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "follow request accepted", "follow": edge})
}

func (h *FollowHandler) Block(c *gin.Context) {
	userID, targetID, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.service.Block(c.Request.Context(), userID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user blocked"})
}

func (h *FollowHandler) Unblock(c *gin.Context) {
	userID, targetID, ok := h.actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.service.Unblock(c.Request.Context(), userID, targetID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user unblocked"})
}

func (h *FollowHandler) Followers(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.service.Followers(c.Request.Context(), userID, c.Query("cursor"), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *FollowHandler) Following(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.service.Following(c.Request.Context(), userID, c.Query("cursor"), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *FollowHandler) actorAndTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return uuid.Nil, uuid.Nil, false
	}

	return userID, targetID, true
}

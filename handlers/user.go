package handlers

import (
	"net/http"

	"socialhub/middleware"
	"socialhub/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Relationships *services.Relationships
}

// GET /api/user
func (h *UserHandler) Profile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.Relationships.Profile(ctx, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// POST /api/follow/:id
func (h *UserHandler) Follow(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Relationships.Follow(ctx, middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// POST /api/unfollow/:id
func (h *UserHandler) Unfollow(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Relationships.Unfollow(ctx, middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

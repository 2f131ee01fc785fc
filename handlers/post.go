package handlers

import (
	"net/http"

	"socialhub/middleware"
	"socialhub/services"

	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Desc  string `json:"desc"`
}

// Desc is checked by the service after the post lookup, so a missing post
// still answers 404, with or without a body.
type CommentRequest struct {
	Desc string `json:"desc"`
}

type PostHandler struct {
	Posts      *services.Posts
	Engagement *services.Engagement
}

// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req CreatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.Posts.Create(ctx, middleware.CurrentUserID(c), req.Title, req.Desc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Posts.Delete(ctx, middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// GET /api/all_posts
func (h *PostHandler) ListMine(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	posts, err := h.Posts.ListByOwner(ctx, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GET /api/posts/:id, no authentication.
func (h *PostHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	post, err := h.Posts.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// POST /api/like/:id
func (h *PostHandler) Like(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Engagement.Like(ctx, middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// POST /api/unlike/:id
func (h *PostHandler) Unlike(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	msg, err := h.Engagement.Unlike(ctx, middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// POST /api/comment/:id
func (h *PostHandler) Comment(c *gin.Context) {
	var req CommentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id, err := h.Engagement.Comment(ctx, middleware.CurrentUserID(c), c.Param("id"), req.Desc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment_id": id})
}

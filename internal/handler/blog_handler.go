package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service"
)

// BlogHandler обрабатывает запросы контента блога
type BlogHandler struct {
	blogService *service.BlogService
}

func NewBlogHandler(blogService *service.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

// BlogPostRequest представляет запрос на создание/обновление статьи
type BlogPostRequest struct {
	Title         string     `json:"title" binding:"required,max=500"`
	Slug          string     `json:"slug" binding:"required,max=255"`
	Excerpt       string     `json:"excerpt" binding:"omitempty,max=1000"`
	Content       string     `json:"content" binding:"required"`
	CoverImageURL string     `json:"cover_image_url" binding:"omitempty,max=500"`
	AuthorName    string     `json:"author_name" binding:"omitempty,max=255"`
	CategoryID    uint       `json:"category_id" binding:"required"`
	PublishedAt   *time.Time `json:"published_at"`
}

// ListPosts возвращает опубликованные статьи с фильтрами
func (h *BlogHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	posts, total, err := h.blogService.ListPublished(
		c.Query("category"), c.Query("tag"), perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts", "error_type": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":    posts,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// GetPost возвращает статью по slug
func (h *BlogHandler) GetPost(c *gin.Context) {
	post, err := h.blogService.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found", "error_type": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListCategories возвращает категории блога
func (h *BlogHandler) ListCategories(c *gin.Context) {
	categories, err := h.blogService.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListTags возвращает теги блога
func (h *BlogHandler) ListTags(c *gin.Context) {
	tags, err := h.blogService.ListTags()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tags", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// CreatePost создает статью (только для администраторов)
func (h *BlogHandler) CreatePost(c *gin.Context) {
	var req BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	post := h.postFromRequest(0, req)
	if err := h.blogService.CreatePost(post); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost обновляет статью (только для администраторов)
func (h *BlogHandler) UpdatePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID", "error_type": "invalid_request"})
		return
	}

	var req BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	post := h.postFromRequest(uint(id), req)
	if err := h.blogService.UpdatePost(post); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost удаляет статью (только для администраторов)
func (h *BlogHandler) DeletePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID", "error_type": "invalid_request"})
		return
	}

	if err := h.blogService.DeletePost(uint(id)); err != nil {
		h.handleContentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *BlogHandler) postFromRequest(id uint, req BlogPostRequest) *entity.BlogPost {
	return &entity.BlogPost{
		ID:            id,
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		CoverImageURL: req.CoverImageURL,
		AuthorName:    req.AuthorName,
		CategoryID:    req.CategoryID,
		PublishedAt:   req.PublishedAt,
	}
}

func (h *BlogHandler) handleContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Slug already in use", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "error_type": "validation_error", "details": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service"
)

// FAQHandler обрабатывает запросы справочного контента
type FAQHandler struct {
	faqService *service.FAQService
}

func NewFAQHandler(faqService *service.FAQService) *FAQHandler {
	return &FAQHandler{faqService: faqService}
}

// FAQRequest представляет запрос на создание/обновление вопроса
type FAQRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Question   string `json:"question" binding:"required,max=1000"`
	Answer     string `json:"answer" binding:"required"`
	SortOrder  int    `json:"sort_order"`
	IsActive   *bool  `json:"is_active"`
}

// ListCategories возвращает категории с вопросами
func (h *FAQHandler) ListCategories(c *gin.Context) {
	categories, err := h.faqService.ListCategories()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load FAQ", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListByCategory возвращает вопросы одной категории
func (h *FAQHandler) ListByCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID", "error_type": "invalid_request"})
		return
	}

	items, err := h.faqService.ListByCategory(uint(categoryID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load FAQ", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Create добавляет вопрос (только для администраторов)
func (h *FAQHandler) Create(c *gin.Context) {
	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	faq := &entity.FAQ{
		CategoryID: req.CategoryID,
		Question:   req.Question,
		Answer:     req.Answer,
		SortOrder:  req.SortOrder,
		IsActive:   true,
	}
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}

	if err := h.faqService.CreateFAQ(faq); err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "error_type": "validation_error", "details": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create FAQ", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusCreated, faq)
}

// Update обновляет вопрос (только для администраторов)
func (h *FAQHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid FAQ ID", "error_type": "invalid_request"})
		return
	}

	var req FAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	faq := &entity.FAQ{
		ID:         uint(id),
		CategoryID: req.CategoryID,
		Question:   req.Question,
		Answer:     req.Answer,
		SortOrder:  req.SortOrder,
		IsActive:   true,
	}
	if req.IsActive != nil {
		faq.IsActive = *req.IsActive
	}

	if err := h.faqService.UpdateFAQ(faq); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "FAQ not found", "error_type": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update FAQ", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, faq)
}

// Delete удаляет вопрос (только для администраторов)
func (h *FAQHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid FAQ ID", "error_type": "invalid_request"})
		return
	}

	if err := h.faqService.DeleteFAQ(uint(id)); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "FAQ not found", "error_type": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete FAQ", "error_type": "internal_server_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FAQ deleted"})
}

package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service"
)

// SupportTicketHandler обрабатывает обращения в поддержку
type SupportTicketHandler struct {
	ticketService *service.SupportTicketService
}

func NewSupportTicketHandler(ticketService *service.SupportTicketService) *SupportTicketHandler {
	return &SupportTicketHandler{ticketService: ticketService}
}

// CreateTicketRequest представляет запрос на создание обращения
type CreateTicketRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Subject    string `json:"subject" binding:"required,max=500"`
	Message    string `json:"message" binding:"required"`
	Priority   string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// TicketCommentRequest представляет запрос на добавление комментария
type TicketCommentRequest struct {
	Message string `json:"message" binding:"required"`
}

// UpdateTicketStatusRequest представляет запрос на смену статуса
type UpdateTicketStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in_progress resolved closed"`
}

// Create создает обращение
func (h *SupportTicketHandler) Create(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	ticket, err := h.ticketService.CreateTicket(c.Request.Context(), userID, service.TicketInput{
		CategoryID: req.CategoryID,
		Subject:    req.Subject,
		Message:    req.Message,
		Priority:   req.Priority,
	})
	if err != nil {
		h.handleTicketError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// Get возвращает обращение по референсу
func (h *SupportTicketHandler) Get(c *gin.Context) {
	userID := c.GetUint("user_id")

	ticket, err := h.ticketService.GetTicket(c.Request.Context(), c.Param("reference"), userID)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// ListMine возвращает обращения текущего пользователя
func (h *SupportTicketHandler) ListMine(c *gin.Context) {
	userID := c.GetUint("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}

	tickets, total, err := h.ticketService.ListUserTickets(c.Request.Context(), userID, c.Query("status"), perPage, (page-1)*perPage)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "total": total, "page": page, "per_page": perPage})
}

// AddComment добавляет комментарий в обращение
func (h *SupportTicketHandler) AddComment(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req TicketCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	comment, err := h.ticketService.AddComment(c.Request.Context(), c.Param("reference"), userID, req.Message)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments возвращает комментарии обращения
func (h *SupportTicketHandler) ListComments(c *gin.Context) {
	userID := c.GetUint("user_id")

	comments, err := h.ticketService.ListComments(c.Request.Context(), c.Param("reference"), userID)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments, "count": len(comments)})
}

// ListCategories возвращает категории обращений
func (h *SupportTicketHandler) ListCategories(c *gin.Context) {
	categories, err := h.ticketService.ListCategories(c.Request.Context())
	if err != nil {
		h.handleTicketError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListAll возвращает обращения по фильтру (только для администраторов)
func (h *SupportTicketHandler) ListAll(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}

	filter := h.filterFromQuery(c)
	tickets, total, err := h.ticketService.ListAllTickets(c.Request.Context(), filter, perPage, (page-1)*perPage)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "total": total, "page": page, "per_page": perPage})
}

// UpdateStatus переводит обращение в новый статус (только для администраторов)
func (h *SupportTicketHandler) UpdateStatus(c *gin.Context) {
	var req UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request"})
		return
	}

	ticket, err := h.ticketService.UpdateStatus(c.Request.Context(), c.Param("reference"), req.Status)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// Export выгружает обращения в Excel (только для администраторов).
// Используем StreamWriter для эффективной работы с большими выгрузками.
func (h *SupportTicketHandler) Export(c *gin.Context) {
	filter := h.filterFromQuery(c)
	tickets, _, err := h.ticketService.ListAllTickets(c.Request.Context(), filter, 500, 0)
	if err != nil {
		h.handleTicketError(c, err)
		return
	}

	filename := fmt.Sprintf("support_tickets_%s", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Tickets"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[SupportTicketHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file", "error_type": "internal_server_error"})
		return
	}

	headers := []interface{}{"Reference", "User ID", "Category", "Subject", "Status", "Priority", "Created", "Resolved"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[SupportTicketHandler] Ошибка записи заголовков: %v", err)
	}

	for i, ticket := range tickets {
		resolvedAt := ""
		if ticket.ResolvedAt != nil {
			resolvedAt = ticket.ResolvedAt.Format(time.RFC3339)
		}
		row := []interface{}{
			ticket.Reference,
			ticket.UserID,
			ticket.Category.Name,
			ticket.Subject,
			ticket.Status,
			ticket.Priority,
			ticket.CreatedAt.Format(time.RFC3339),
			resolvedAt,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[SupportTicketHandler] Ошибка записи строки %s: %v", cell, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[SupportTicketHandler] Ошибка завершения записи: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file", "error_type": "internal_server_error"})
		return
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[SupportTicketHandler] Ошибка отправки файла: %v", err)
	}
}

func (h *SupportTicketHandler) filterFromQuery(c *gin.Context) repository.SupportTicketFilter {
	filter := repository.SupportTicketFilter{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil {
		filter.UserID = uint(userID)
	}
	if categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 32); err == nil {
		filter.CategoryID = uint(categoryID)
	}
	return filter
}

func (h *SupportTicketHandler) handleTicketError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation error", "error_type": "validation_error", "details": err.Error()})
	default:
		log.Printf("[SupportTicketHandler] Ошибка: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
	}
}

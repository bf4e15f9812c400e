package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// TicketInput содержит данные нового обращения
type TicketInput struct {
	CategoryID uint
	Subject    string
	Message    string
	Priority   string
}

// SupportTicketService управляет обращениями пользователей в поддержку.
type SupportTicketService struct {
	ticketRepo repository.SupportTicketRepository
	userRepo   repository.UserRepository
}

func NewSupportTicketService(
	ticketRepo repository.SupportTicketRepository,
	userRepo repository.UserRepository,
) (*SupportTicketService, error) {
	if ticketRepo == nil {
		return nil, fmt.Errorf("support ticket repository is required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &SupportTicketService{
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
	}, nil
}

// CreateTicket создает обращение с публичным uuid-референсом
func (s *SupportTicketService) CreateTicket(ctx context.Context, userID uint, input TicketInput) (*entity.SupportTicket, error) {
	subject := strings.TrimSpace(input.Subject)
	message := strings.TrimSpace(input.Message)
	if subject == "" || message == "" {
		return nil, fmt.Errorf("%w: subject and message are required", apperrors.ErrValidation)
	}

	priority := input.Priority
	switch priority {
	case "":
		priority = entity.TicketPriorityMedium
	case entity.TicketPriorityLow, entity.TicketPriorityMedium, entity.TicketPriorityHigh, entity.TicketPriorityUrgent:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", apperrors.ErrValidation, input.Priority)
	}

	ticket := &entity.SupportTicket{
		Reference:  uuid.New().String(),
		UserID:     userID,
		CategoryID: input.CategoryID,
		Subject:    subject,
		Message:    message,
		Status:     entity.TicketStatusOpen,
		Priority:   priority,
	}
	if err := s.ticketRepo.Create(ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	log.Printf("[SupportTicketService] Создан тикет reference=%s user_id=%d", ticket.Reference, userID)
	return ticket, nil
}

// GetTicket возвращает тикет по референсу, проверяя владельца.
// Администраторы видят любые тикеты.
func (s *SupportTicketService) GetTicket(ctx context.Context, reference string, requesterID uint) (*entity.SupportTicket, error) {
	ticket, err := s.ticketRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ticket, requesterID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ListUserTickets возвращает тикеты пользователя
func (s *SupportTicketService) ListUserTickets(ctx context.Context, userID uint, status string, limit, offset int) ([]entity.SupportTicket, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.ticketRepo.List(repository.SupportTicketFilter{UserID: userID, Status: status}, limit, offset)
}

// ListAllTickets возвращает тикеты по фильтру (только для администраторов)
func (s *SupportTicketService) ListAllTickets(ctx context.Context, filter repository.SupportTicketFilter, limit, offset int) ([]entity.SupportTicket, int64, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.ticketRepo.List(filter, limit, offset)
}

// AddComment добавляет ответ в тикет. Закрытый тикет комментировать нельзя.
func (s *SupportTicketService) AddComment(ctx context.Context, reference string, authorID uint, message string) (*entity.TicketComment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", apperrors.ErrValidation)
	}

	ticket, err := s.ticketRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ticket, authorID); err != nil {
		return nil, err
	}
	if ticket.IsTerminal() {
		return nil, fmt.Errorf("%w: ticket is closed", apperrors.ErrValidation)
	}

	author, err := s.userRepo.GetByID(authorID)
	if err != nil {
		return nil, err
	}

	comment := &entity.TicketComment{
		TicketID:    ticket.ID,
		AuthorID:    authorID,
		IsFromStaff: author.IsAdmin(),
		Message:     message,
	}
	if err := s.ticketRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	// Ответ сотрудника переводит открытый тикет в работу
	if author.IsAdmin() && ticket.Status == entity.TicketStatusOpen {
		ticket.Status = entity.TicketStatusInProgress
		if err := s.ticketRepo.Update(ticket); err != nil {
			log.Printf("[SupportTicketService] Не удалось обновить статус тикета %s: %v", ticket.Reference, err)
		}
	}
	return comment, nil
}

// ListComments возвращает комментарии тикета
func (s *SupportTicketService) ListComments(ctx context.Context, reference string, requesterID uint) ([]entity.TicketComment, error) {
	ticket, err := s.ticketRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ticket, requesterID); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListComments(ticket.ID)
}

// UpdateStatus переводит тикет в новый статус (только для администраторов)
func (s *SupportTicketService) UpdateStatus(ctx context.Context, reference, status string) (*entity.SupportTicket, error) {
	switch status {
	case entity.TicketStatusOpen, entity.TicketStatusInProgress, entity.TicketStatusResolved, entity.TicketStatusClosed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, status)
	}

	ticket, err := s.ticketRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	ticket.Status = status
	if status == entity.TicketStatusResolved && ticket.ResolvedAt == nil {
		now := time.Now()
		ticket.ResolvedAt = &now
	}
	if err := s.ticketRepo.Update(ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return ticket, nil
}

// ListCategories возвращает категории обращений
func (s *SupportTicketService) ListCategories(ctx context.Context) ([]entity.SupportCategory, error) {
	return s.ticketRepo.ListCategories()
}

// authorizeAccess пропускает владельца тикета и администраторов
func (s *SupportTicketService) authorizeAccess(ticket *entity.SupportTicket, requesterID uint) error {
	if ticket.UserID == requesterID {
		return nil
	}
	requester, err := s.userRepo.GetByID(requesterID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		return err
	}
	if !requester.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}

package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// SupportTicketRepo реализует repository.SupportTicketRepository
type SupportTicketRepo struct {
	db *gorm.DB
}

func NewSupportTicketRepo(db *gorm.DB) *SupportTicketRepo {
	return &SupportTicketRepo{db: db}
}

func (r *SupportTicketRepo) Create(ticket *entity.SupportTicket) error {
	err := r.db.Create(ticket).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("failed to create support ticket: %w", err)
	}
	return nil
}

func (r *SupportTicketRepo) GetByID(id uint) (*entity.SupportTicket, error) {
	var ticket entity.SupportTicket
	err := r.db.
		Preload("Category").
		First(&ticket, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *SupportTicketRepo) GetByReference(reference string) (*entity.SupportTicket, error) {
	var ticket entity.SupportTicket
	err := r.db.
		Preload("Category").
		Where("reference = ?", reference).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// List возвращает тикеты по фильтру с пагинацией и общим количеством
func (r *SupportTicketRepo) List(filter repository.SupportTicketFilter, limit, offset int) ([]entity.SupportTicket, int64, error) {
	query := r.db.Model(&entity.SupportTicket{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count support tickets: %w", err)
	}

	var tickets []entity.SupportTicket
	err := query.
		Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list support tickets: %w", err)
	}

	return tickets, total, nil
}

func (r *SupportTicketRepo) Update(ticket *entity.SupportTicket) error {
	return r.db.Save(ticket).Error
}

func (r *SupportTicketRepo) AddComment(comment *entity.TicketComment) error {
	return r.db.Create(comment).Error
}

func (r *SupportTicketRepo) ListComments(ticketID uint) ([]entity.TicketComment, error) {
	var comments []entity.TicketComment
	err := r.db.
		Where("ticket_id = ?", ticketID).
		Order("created_at").
		Find(&comments).Error
	return comments, err
}

func (r *SupportTicketRepo) ListCategories() ([]entity.SupportCategory, error) {
	var categories []entity.SupportCategory
	err := r.db.
		Where("is_active = true").
		Order("sort_order, id").
		Find(&categories).Error
	return categories, err
}

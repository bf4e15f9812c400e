package repository

import "github.com/yourusername/account-api/internal/domain/entity"

// SupportTicketFilter ограничивает выборку тикетов (пустые поля игнорируются).
type SupportTicketFilter struct {
	UserID     uint
	CategoryID uint
	Status     string
	Priority   string
}

// SupportTicketRepository хранит обращения в поддержку и комментарии к ним.
type SupportTicketRepository interface {
	Create(ticket *entity.SupportTicket) error
	GetByID(id uint) (*entity.SupportTicket, error)
	GetByReference(reference string) (*entity.SupportTicket, error)
	List(filter SupportTicketFilter, limit, offset int) ([]entity.SupportTicket, int64, error)
	Update(ticket *entity.SupportTicket) error
	AddComment(comment *entity.TicketComment) error
	ListComments(ticketID uint) ([]entity.TicketComment, error)
	ListCategories() ([]entity.SupportCategory, error)
}

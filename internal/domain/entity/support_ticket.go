package entity

import "time"

// Support ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// Support ticket priorities.
const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

// SupportCategory groups tickets by subject (billing, account, bug, ...).
type SupportCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (SupportCategory) TableName() string {
	return "support_categories"
}

// SupportTicket is a user-submitted support request. Reference is a short
// public identifier users quote when contacting support out of band.
type SupportTicket struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Reference  string     `gorm:"size:36;not null;uniqueIndex" json:"reference"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	CategoryID uint       `gorm:"not null;index" json:"category_id"`
	Subject    string     `gorm:"size:500;not null" json:"subject"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	Status     string     `gorm:"size:20;not null;default:'open';index" json:"status"`
	Priority   string     `gorm:"size:20;not null;default:'medium'" json:"priority"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Category SupportCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Comments []TicketComment `gorm:"foreignKey:TicketID" json:"comments,omitempty"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

// IsTerminal reports whether the ticket can no longer accept comments.
func (t *SupportTicket) IsTerminal() bool {
	return t.Status == TicketStatusClosed
}

// TicketComment is a reply on a ticket, either by the reporter or an admin.
type TicketComment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TicketID    uint      `gorm:"not null;index" json:"ticket_id"`
	AuthorID    uint      `gorm:"not null" json:"author_id"`
	IsFromStaff bool      `gorm:"not null;default:false" json:"is_from_staff"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TicketComment) TableName() string {
	return "ticket_comments"
}

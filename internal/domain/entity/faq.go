package entity

import "time"

// FAQCategory groups FAQ entries shown in the mobile app help screen.
type FAQCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []FAQ `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

func (FAQCategory) TableName() string {
	return "faq_categories"
}

// FAQ is a single question/answer entry.
type FAQ struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Question   string    `gorm:"type:text;not null" json:"question"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	SortOrder  int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (FAQ) TableName() string {
	return "faqs"
}

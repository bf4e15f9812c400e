package repository

import "github.com/yourusername/account-api/internal/domain/entity"

// FAQRepository отдает справочный контент для экрана помощи.
type FAQRepository interface {
	ListCategories() ([]entity.FAQCategory, error)
	ListByCategory(categoryID uint) ([]entity.FAQ, error)
	GetByID(id uint) (*entity.FAQ, error)
	Create(faq *entity.FAQ) error
	Update(faq *entity.FAQ) error
	Delete(id uint) error
}

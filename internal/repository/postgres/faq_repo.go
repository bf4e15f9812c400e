package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// FAQRepo реализует repository.FAQRepository
type FAQRepo struct {
	db *gorm.DB
}

func NewFAQRepo(db *gorm.DB) *FAQRepo {
	return &FAQRepo{db: db}
}

func (r *FAQRepo) ListCategories() ([]entity.FAQCategory, error) {
	var categories []entity.FAQCategory
	err := r.db.
		Where("is_active = true").
		Order("sort_order, id").
		Find(&categories).Error
	return categories, err
}

func (r *FAQRepo) ListByCategory(categoryID uint) ([]entity.FAQ, error) {
	var faqs []entity.FAQ
	err := r.db.
		Where("category_id = ? AND is_active = true", categoryID).
		Order("sort_order, id").
		Find(&faqs).Error
	return faqs, err
}

func (r *FAQRepo) GetByID(id uint) (*entity.FAQ, error) {
	var faq entity.FAQ
	err := r.db.First(&faq, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &faq, nil
}

func (r *FAQRepo) Create(faq *entity.FAQ) error {
	return r.db.Create(faq).Error
}

func (r *FAQRepo) Update(faq *entity.FAQ) error {
	return r.db.Save(faq).Error
}

func (r *FAQRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.FAQ{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

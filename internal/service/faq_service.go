package service

import (
	"fmt"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// FAQService отдает справочный контент экрана помощи.
type FAQService struct {
	faqRepo repository.FAQRepository
}

func NewFAQService(faqRepo repository.FAQRepository) (*FAQService, error) {
	if faqRepo == nil {
		return nil, fmt.Errorf("faq repository is required")
	}
	return &FAQService{faqRepo: faqRepo}, nil
}

// ListCategories возвращает активные категории вместе с вопросами
func (s *FAQService) ListCategories() ([]entity.FAQCategory, error) {
	return s.faqRepo.ListCategories()
}

// ListByCategory возвращает активные вопросы категории
func (s *FAQService) ListByCategory(categoryID uint) ([]entity.FAQ, error) {
	return s.faqRepo.ListByCategory(categoryID)
}

// CreateFAQ добавляет вопрос (только для администраторов)
func (s *FAQService) CreateFAQ(faq *entity.FAQ) error {
	if faq.Question == "" || faq.Answer == "" {
		return fmt.Errorf("%w: question and answer are required", apperrors.ErrValidation)
	}
	return s.faqRepo.Create(faq)
}

// UpdateFAQ обновляет вопрос
func (s *FAQService) UpdateFAQ(faq *entity.FAQ) error {
	if faq.ID == 0 {
		return fmt.Errorf("%w: faq id is required", apperrors.ErrValidation)
	}
	return s.faqRepo.Update(faq)
}

// DeleteFAQ удаляет вопрос
func (s *FAQService) DeleteFAQ(id uint) error {
	return s.faqRepo.Delete(id)
}

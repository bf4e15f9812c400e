package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/account-api/internal/domain/entity"
	"github.com/yourusername/account-api/internal/domain/repository"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// BlogService отдает опубликованные статьи и управляет контентом блога.
type BlogService struct {
	blogRepo repository.BlogRepository
}

func NewBlogService(blogRepo repository.BlogRepository) (*BlogService, error) {
	if blogRepo == nil {
		return nil, fmt.Errorf("blog repository is required")
	}
	return &BlogService{blogRepo: blogRepo}, nil
}

// ListPublished возвращает опубликованные статьи с фильтрами по категории и тегу
func (s *BlogService) ListPublished(categorySlug, tagSlug string, limit, offset int) ([]entity.BlogPost, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.blogRepo.ListPublished(categorySlug, tagSlug, limit, offset)
}

// GetBySlug возвращает опубликованную статью и увеличивает счетчик просмотров
func (s *BlogService) GetBySlug(slug string) (*entity.BlogPost, error) {
	post, err := s.blogRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, apperrors.ErrNotFound
	}

	// Счетчик просмотров не критичен для ответа
	if err := s.blogRepo.IncrementViewCount(post.ID); err != nil {
		log.Printf("[BlogService] Не удалось увеличить счетчик просмотров post_id=%d: %v", post.ID, err)
	}
	return post, nil
}

// ListCategories возвращает категории блога
func (s *BlogService) ListCategories() ([]entity.BlogCategory, error) {
	return s.blogRepo.ListCategories()
}

// ListTags возвращает теги блога
func (s *BlogService) ListTags() ([]entity.BlogTag, error) {
	return s.blogRepo.ListTags()
}

// CreatePost создает статью (только для администраторов)
func (s *BlogService) CreatePost(post *entity.BlogPost) error {
	if post.Title == "" || post.Slug == "" {
		return fmt.Errorf("%w: title and slug are required", apperrors.ErrValidation)
	}
	if err := s.blogRepo.Create(post); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("%w: slug already in use", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// UpdatePost обновляет статью
func (s *BlogService) UpdatePost(post *entity.BlogPost) error {
	if post.ID == 0 {
		return fmt.Errorf("%w: post id is required", apperrors.ErrValidation)
	}
	return s.blogRepo.Update(post)
}

// DeletePost удаляет статью
func (s *BlogService) DeletePost(id uint) error {
	return s.blogRepo.Delete(id)
}

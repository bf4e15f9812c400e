package repository

import "github.com/yourusername/account-api/internal/domain/entity"

// BlogRepository отдает опубликованные статьи блога.
type BlogRepository interface {
	ListPublished(categorySlug, tagSlug string, limit, offset int) ([]entity.BlogPost, int64, error)
	GetBySlug(slug string) (*entity.BlogPost, error)
	IncrementViewCount(id uint) error
	ListCategories() ([]entity.BlogCategory, error)
	ListTags() ([]entity.BlogTag, error)
	Create(post *entity.BlogPost) error
	Update(post *entity.BlogPost) error
	Delete(id uint) error
}

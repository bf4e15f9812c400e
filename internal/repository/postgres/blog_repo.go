package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/account-api/internal/domain/entity"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
)

// BlogRepo реализует repository.BlogRepository
type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db: db}
}

// ListPublished возвращает опубликованные посты с пагинацией и общим количеством.
// categorySlug и tagSlug опциональны (пустая строка — без фильтра).
func (r *BlogRepo) ListPublished(categorySlug, tagSlug string, limit, offset int) ([]entity.BlogPost, int64, error) {
	query := r.db.Model(&entity.BlogPost{}).
		Where("blog_posts.published_at IS NOT NULL AND blog_posts.published_at <= ?", time.Now())

	if categorySlug != "" {
		query = query.
			Joins("JOIN blog_categories ON blog_categories.id = blog_posts.category_id").
			Where("blog_categories.slug = ?", categorySlug)
	}
	if tagSlug != "" {
		query = query.
			Joins("JOIN blog_post_tags ON blog_post_tags.blog_post_id = blog_posts.id").
			Joins("JOIN blog_tags ON blog_tags.id = blog_post_tags.blog_tag_id").
			Where("blog_tags.slug = ?", tagSlug)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count blog posts: %w", err)
	}

	var posts []entity.BlogPost
	err := query.
		Preload("Category").
		Preload("Tags").
		Order("blog_posts.published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list blog posts: %w", err)
	}

	return posts, total, nil
}

func (r *BlogRepo) GetBySlug(slug string) (*entity.BlogPost, error) {
	var post entity.BlogPost
	err := r.db.
		Preload("Category").
		Preload("Tags").
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *BlogRepo) IncrementViewCount(id uint) error {
	return r.db.Model(&entity.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).
		Error
}

func (r *BlogRepo) ListCategories() ([]entity.BlogCategory, error) {
	var categories []entity.BlogCategory
	err := r.db.Order("name").Find(&categories).Error
	return categories, err
}

func (r *BlogRepo) ListTags() ([]entity.BlogTag, error) {
	var tags []entity.BlogTag
	err := r.db.Order("name").Find(&tags).Error
	return tags, err
}

func (r *BlogRepo) Create(post *entity.BlogPost) error {
	err := r.db.Create(post).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

func (r *BlogRepo) Update(post *entity.BlogPost) error {
	return r.db.Save(post).Error
}

func (r *BlogRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

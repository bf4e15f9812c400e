package entity

import "time"

// BlogCategory groups published blog posts.
type BlogCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BlogCategory) TableName() string {
	return "blog_categories"
}

// BlogTag is a free-form label attached to posts via blog_post_tags.
type BlogTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (BlogTag) TableName() string {
	return "blog_tags"
}

// BlogPost is a published article. Only posts with a non-nil PublishedAt
// in the past are visible to non-admin clients.
type BlogPost struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CategoryID    uint       `gorm:"not null;index" json:"category_id"`
	Title         string     `gorm:"size:500;not null" json:"title"`
	Slug          string     `gorm:"size:500;not null;uniqueIndex" json:"slug"`
	Excerpt       string     `gorm:"type:text;not null;default:''" json:"excerpt"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	CoverImageURL string     `gorm:"size:1024;not null;default:''" json:"cover_image_url,omitempty"`
	AuthorName    string     `gorm:"size:255;not null;default:''" json:"author_name,omitempty"`
	ViewCount     int64      `gorm:"not null;default:0" json:"view_count"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Category BlogCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Tags     []BlogTag    `gorm:"many2many:blog_post_tags" json:"tags,omitempty"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}

// IsPublished reports whether the post is visible to regular clients.
func (p *BlogPost) IsPublished() bool {
	return p.PublishedAt != nil && p.PublishedAt.Before(time.Now())
}

// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// Post represents authored content. Published state is derived entirely from
// PublishedAt: nil means draft, non-nil means published.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AuthorID    uint       `gorm:"not null;index" json:"author_id"`
	Author      User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"-"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Slug        string     `gorm:"size:120" json:"slug"`
	Views       int        `gorm:"not null;default:0" json:"views"`
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	Tags        []Tag      `gorm:"many2many:post_tags" json:"tags"`
	Images      []Gallery  `gorm:"foreignKey:PostID" json:"images,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Published reports whether the post is visible to non-authors.
func (p *Post) Published() bool {
	return p.PublishedAt != nil
}

// BeforeSave derives the slug from the current title and primary key. The slug
// is never caller-settable; every save recomputes it.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	p.Slug = MakeSlug(p.Title, p.ID)
	return nil
}

// AfterCreate fixes up the slug once the primary key is known. UpdateColumn
// skips hooks so this does not recurse through BeforeSave.
func (p *Post) AfterCreate(tx *gorm.DB) error {
	p.Slug = MakeSlug(p.Title, p.ID)
	return tx.Model(&Post{}).Where("id = ?", p.ID).UpdateColumn("slug", p.Slug).Error
}

// PostSummary is the abbreviated list representation of a post; it carries
// everything except the body content.
type PostSummary struct {
	ID          uint       `json:"id"`
	AuthorID    uint       `json:"author_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Views       int        `json:"views"`
	PublishedAt *time.Time `json:"published_at"`
	Tags        []Tag      `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Summary returns the abbreviated representation of the post.
func (p *Post) Summary() PostSummary {
	tags := p.Tags
	if tags == nil {
		tags = []Tag{}
	}
	return PostSummary{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		Title:       p.Title,
		Slug:        p.Slug,
		Views:       p.Views,
		PublishedAt: p.PublishedAt,
		Tags:        tags,
		CreatedAt:   p.CreatedAt,
	}
}

// MakeSlug builds the canonical slug for a title and primary key. The title
// is lowercased, punctuation is dropped, runs of whitespace and hyphens
// collapse to a single hyphen, and the primary key is appended so slugs stay
// unique per post.
func MakeSlug(title string, id uint) string {
	base := strings.ToLower(fmt.Sprintf("%s_%d", title, id))
	var b strings.Builder
	pendingSep := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingSep = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingSep = true
		}
		// any other rune is dropped entirely
	}
	return strings.Trim(b.String(), "-_")
}

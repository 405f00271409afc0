package models

import (
	"fmt"
	"time"
)

// EntityKind discriminates which entity table a polymorphic comment target
// points into. The supported kinds are enumerated at compile time; there is
// no runtime type registry.
type EntityKind string

const (
	EntityKindPost    EntityKind = "post"
	EntityKindComment EntityKind = "comment"
	EntityKindTag     EntityKind = "tag"
	EntityKindGallery EntityKind = "gallery"
)

// SupportedEntityKinds returns every kind a comment may attach to. Comments
// themselves are a valid target, so threads are possible.
func SupportedEntityKinds() []EntityKind {
	return []EntityKind{EntityKindPost, EntityKindComment, EntityKindTag, EntityKindGallery}
}

// ParseEntityKind validates a caller-supplied content type identifier.
func ParseEntityKind(s string) (EntityKind, error) {
	for _, k := range SupportedEntityKinds() {
		if s == string(k) {
			return k, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("Unsupported content type %q", s))
}

// Comment attaches free-form content to any supported entity via the
// (ContentType, ObjectID) composite key. The pair is a lookup key, not an
// enforced foreign key: deleting the target leaves the comment dangling.
type Comment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatorID   uint       `gorm:"not null;index" json:"creator_id"`
	Creator     User       `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"-"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	ContentType EntityKind `gorm:"size:32;not null;index:idx_comments_target" json:"content_type"`
	ObjectID    uint       `gorm:"not null;index:idx_comments_target" json:"object_id"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	ModifiedAt  time.Time  `gorm:"autoUpdateTime" json:"modified_at"`
}

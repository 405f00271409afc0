package models

// Tag is a bare label shared across posts via a many-to-many join. Tags are
// deduplicated by value and never owned by a single post.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Value string `gorm:"size:100;uniqueIndex;not null" json:"value"`

	Posts []Post `gorm:"many2many:post_tags" json:"-"`
}

package models

import "time"

// Gallery is a single image attached to exactly one post. Rows are removed
// together with their post; the stored files live under a date-partitioned
// path so no two entries ever share a file path.
type Gallery struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PostID        uint      `gorm:"not null;index" json:"post_id"`
	Post          Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ImagePath     string    `gorm:"not null" json:"image_path"`
	ThumbnailPath string    `json:"thumbnail_path"`
	MimeType      string    `gorm:"size:64" json:"mime_type"`
	SizeBytes     int64     `json:"size_bytes"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

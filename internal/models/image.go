package models

import "time"

// Image is an uploaded binary addressed by the sha256 of its bytes.
type Image struct {
	Hash        string    `gorm:"primaryKey;size:64" json:"hash"`
	ContentType string    `gorm:"size:100;not null" json:"content_type"`
	SizeBytes   int64     `gorm:"not null" json:"size_bytes"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Data        []byte    `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

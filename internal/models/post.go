package models

import "time"

// MediaPathPrefix is the public route stored images are served from.
const MediaPathPrefix = "/media/"

// Post is a short text entry written by a user, optionally tagged with a group.
type Post struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Text      string  `gorm:"type:text;not null" json:"text"`
	UserID    uint    `gorm:"not null;index" json:"author_id"`
	User      User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID   *uint   `gorm:"index" json:"group_id"`
	Group     *Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	ImageHash *string `gorm:"size:64" json:"-"`
	// ImageURL is not persisted; derived from ImageHash when loaded
	ImageURL  string    `gorm:"-" json:"image_url,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MediaURL returns the public URL of a stored image.
func MediaURL(hash string) string {
	if hash == "" {
		return ""
	}
	return MediaPathPrefix + hash
}

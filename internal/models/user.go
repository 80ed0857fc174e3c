package models

import "time"

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// User represents a registered account.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password       string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	ImageURL       string    `json:"image_url" gorm:"type:text"`
	HeaderImageURL string    `json:"header_image_url" gorm:"type:text"`
	Bio            string    `json:"bio" gorm:"type:text"`
	Location       string    `json:"location" gorm:"type:varchar(100)"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileUpdate carries the profile fields a caller wants to change.
// A nil field keeps the stored value.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	ImageURL       *string
	HeaderImageURL *string
	Bio            *string
	Location       *string
}

// Apply overwrites the supplied fields on u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.ImageURL != nil {
		u.ImageURL = *p.ImageURL
	}
	if p.HeaderImageURL != nil {
		u.HeaderImageURL = *p.HeaderImageURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
}

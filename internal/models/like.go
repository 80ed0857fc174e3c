package models

import "time"

// Like records that UserID likes MessageID. The pair is unique.
type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	MessageID uint      `json:"message_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"created_at"`

	User    *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Message *Message `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

// LikeState is the outcome of a like toggle.
type LikeState int

const (
	UnlikedNow LikeState = iota
	LikedNow
)

func (s LikeState) String() string {
	if s == LikedNow {
		return "liked"
	}
	return "unliked"
}

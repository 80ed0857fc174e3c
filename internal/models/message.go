package models

import (
	"time"
	"unicode/utf8"
)

// MaxMessageLength is the longest message body accepted, in characters.
const MaxMessageLength = 140

// Message is a short post owned by a user.
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:varchar(140);not null"`
	Timestamp time.Time `json:"timestamp" gorm:"column:posted_at;not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// ValidText reports whether text fits the message length bounds.
func ValidText(text string) bool {
	n := utf8.RuneCountInString(text)
	return n > 0 && n <= MaxMessageLength
}

// Newer reports whether m sorts before other in a recency-ordered feed.
// Equal timestamps fall back to the higher ID.
func (m Message) Newer(other Message) bool {
	if m.Timestamp.Equal(other.Timestamp) {
		return m.ID > other.ID
	}
	return m.Timestamp.After(other.Timestamp)
}

// TimelineEntry is a message annotated for a particular viewer.
type TimelineEntry struct {
	Message
	Liked bool `json:"liked"`
}

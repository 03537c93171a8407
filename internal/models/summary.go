package models

import "time"

// Mood labels a summary.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
	MoodAngry   Mood = "angry"
)

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodNeutral, MoodAngry:
		return true
	}
	return false
}

// Summary is the generated text for one user and one week. Date is the
// Monday that anchors the week; (UserID, Date) is unique.
type Summary struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_summaries_user_date"`
	Date      Date      `json:"date" gorm:"not null;uniqueIndex:idx_summaries_user_date"`
	Mood      Mood      `json:"mood" gorm:"type:varchar(10);not null"`
	Summary   string    `json:"summary" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

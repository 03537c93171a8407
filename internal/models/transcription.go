package models

import "time"

// Transcription is one dated journal entry. Length is the word count reported
// by the client; Transcript is nil when the client sent no text.
type Transcription struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"user_id" gorm:"type:varchar(36);not null;index:idx_transcriptions_user_date"`
	Date       Date      `json:"date" gorm:"not null;index:idx_transcriptions_user_date"`
	Length     int       `json:"length" gorm:"not null"`
	Transcript *string   `json:"transcript" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

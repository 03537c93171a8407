package models

import "time"

// User is an account holder. Transcriptions and summaries belong to exactly one user.
type User struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email                string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name                 string    `json:"name" gorm:"type:varchar(100);not null"`
	PasswordHash         string    `json:"-" gorm:"type:varchar(255);not null"`
	IsActive             bool      `json:"is_active" gorm:"not null;default:true"`
	IsStaff              bool      `json:"is_staff" gorm:"not null;default:false"`
	IsEmailVerified      bool      `json:"is_email_verified" gorm:"not null;default:false"`
	IsSubscriptionActive bool      `json:"is_subscription_active" gorm:"not null;default:false"`
	VerificationCode     string    `json:"-" gorm:"index;type:varchar(36)"`
	VerificationAttempts int       `json:"-" gorm:"not null;default:0"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Transcriptions []Transcription `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Summaries      []Summary       `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

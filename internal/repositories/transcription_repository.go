package repositories

import (
	"context"

	"thoughtforest/internal/models"
)

// TranscriptionRepository defines the interface for transcription data access.
// Every read and write except ListWithTextBetween is scoped to one owner.
type TranscriptionRepository interface {
	Create(ctx context.Context, t *models.Transcription) error
	GetForUser(ctx context.Context, userID, id string) (*models.Transcription, error)
	ListByUser(ctx context.Context, userID string) ([]models.Transcription, error)
	Update(ctx context.Context, t *models.Transcription) error
	DeleteForUser(ctx context.Context, userID, id string) error
	// ListWithTextBetween returns transcriptions of all users dated in
	// [from, to) whose transcript is not null, ordered by user, then date.
	ListWithTextBetween(ctx context.Context, from, to models.Date) ([]models.Transcription, error)
}

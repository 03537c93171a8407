package repositories

import (
	"context"

	"thoughtforest/internal/models"
)

// SummaryRepository defines the interface for summary data access.
type SummaryRepository interface {
	Create(ctx context.Context, s *models.Summary) error
	GetForUser(ctx context.Context, userID, id string) (*models.Summary, error)
	ListByUser(ctx context.Context, userID string) ([]models.Summary, error)
	Update(ctx context.Context, s *models.Summary) error
	DeleteForUser(ctx context.Context, userID, id string) error
	// Upsert creates the (userID, date) summary with mood and text, or, when
	// it already exists, overwrites only its text. created reports which
	// happened. The stored row is returned.
	Upsert(ctx context.Context, userID string, date models.Date, mood models.Mood, text string) (stored *models.Summary, created bool, err error)
}

package repositories

import (
	"context"
	"fmt"

	"thoughtforest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMTranscriptionRepository is a GORM implementation of TranscriptionRepository.
type GORMTranscriptionRepository struct {
	db *gorm.DB
}

// NewGORMTranscriptionRepository creates a new instance of GORMTranscriptionRepository.
func NewGORMTranscriptionRepository(db *gorm.DB) *GORMTranscriptionRepository {
	return &GORMTranscriptionRepository{db: db}
}

// Create creates a new transcription in the database.
func (r *GORMTranscriptionRepository) Create(ctx context.Context, t *models.Transcription) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create transcription: %w", translate(err))
	}
	return nil
}

// GetForUser retrieves one of userID's transcriptions.
func (r *GORMTranscriptionRepository) GetForUser(ctx context.Context, userID, id string) (*models.Transcription, error) {
	var t models.Transcription
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, fmt.Errorf("transcription with ID %s: %w", id, translate(err))
	}
	return &t, nil
}

// ListByUser retrieves all of userID's transcriptions, oldest first.
func (r *GORMTranscriptionRepository) ListByUser(ctx context.Context, userID string) ([]models.Transcription, error) {
	var ts []models.Transcription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("failed to list transcriptions for user %s: %w", userID, err)
	}
	return ts, nil
}

// Update writes the date, length and transcript of t.
func (r *GORMTranscriptionRepository) Update(ctx context.Context, t *models.Transcription) error {
	res := r.db.WithContext(ctx).Model(&models.Transcription{}).
		Where("id = ? AND user_id = ?", t.ID, t.UserID).
		Updates(map[string]interface{}{
			"date":       t.Date,
			"length":     t.Length,
			"transcript": t.Transcript,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update transcription %s: %w", t.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transcription with ID %s not found for update: %w", t.ID, ErrNotFound)
	}
	return nil
}

// DeleteForUser deletes one of userID's transcriptions.
func (r *GORMTranscriptionRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Transcription{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete transcription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transcription with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// ListWithTextBetween implements TranscriptionRepository.
func (r *GORMTranscriptionRepository) ListWithTextBetween(ctx context.Context, from, to models.Date) ([]models.Transcription, error) {
	var ts []models.Transcription
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ? AND transcript IS NOT NULL", from, to).
		Order("user_id ASC, date ASC, created_at ASC").
		Find(&ts).Error; err != nil {
		return nil, fmt.Errorf("failed to list transcriptions between %s and %s: %w", from, to, err)
	}
	return ts, nil
}

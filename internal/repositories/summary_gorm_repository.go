package repositories

import (
	"context"
	"fmt"

	"thoughtforest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSummaryRepository is a GORM implementation of SummaryRepository.
type GORMSummaryRepository struct {
	db *gorm.DB
}

// NewGORMSummaryRepository creates a new instance of GORMSummaryRepository.
func NewGORMSummaryRepository(db *gorm.DB) *GORMSummaryRepository {
	return &GORMSummaryRepository{db: db}
}

// Create creates a new summary. A second summary for the same user and date
// fails with ErrDuplicate.
func (r *GORMSummaryRepository) Create(ctx context.Context, s *models.Summary) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Mood == "" {
		s.Mood = models.MoodNeutral
	}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("failed to create summary: %w", translate(err))
	}
	return nil
}

// GetForUser retrieves one of userID's summaries.
func (r *GORMSummaryRepository) GetForUser(ctx context.Context, userID, id string) (*models.Summary, error) {
	var s models.Summary
	if err := r.db.WithContext(ctx).First(&s, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, fmt.Errorf("summary with ID %s: %w", id, translate(err))
	}
	return &s, nil
}

// ListByUser retrieves all of userID's summaries, oldest first.
func (r *GORMSummaryRepository) ListByUser(ctx context.Context, userID string) ([]models.Summary, error) {
	var ss []models.Summary
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&ss).Error; err != nil {
		return nil, fmt.Errorf("failed to list summaries for user %s: %w", userID, err)
	}
	return ss, nil
}

// Update writes the date, mood and text of s.
func (r *GORMSummaryRepository) Update(ctx context.Context, s *models.Summary) error {
	res := r.db.WithContext(ctx).Model(&models.Summary{}).
		Where("id = ? AND user_id = ?", s.ID, s.UserID).
		Updates(map[string]interface{}{
			"date":    s.Date,
			"mood":    s.Mood,
			"summary": s.Summary,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update summary %s: %w", s.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("summary with ID %s not found for update: %w", s.ID, ErrNotFound)
	}
	return nil
}

// DeleteForUser deletes one of userID's summaries.
func (r *GORMSummaryRepository) DeleteForUser(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Summary{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete summary: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("summary with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Upsert relies on the idx_summaries_user_date unique index, so concurrent
// writers for the same key converge on one row.
func (r *GORMSummaryRepository) Upsert(ctx context.Context, userID string, date models.Date, mood models.Mood, text string) (*models.Summary, bool, error) {
	if mood == "" {
		mood = models.MoodNeutral
	}
	candidate := &models.Summary{
		ID:      uuid.New().String(),
		UserID:  userID,
		Date:    date,
		Mood:    mood,
		Summary: text,
	}

	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
	}).Create(candidate).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert summary for user %s on %s: %w", userID, date, translate(err))
	}

	var stored models.Summary
	if err := db.First(&stored, "user_id = ? AND date = ?", userID, date).Error; err != nil {
		return nil, false, fmt.Errorf("failed to reload summary for user %s on %s: %w", userID, date, translate(err))
	}
	return &stored, stored.ID == candidate.ID, nil
}

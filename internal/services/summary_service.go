package services

import (
	"context"

	"thoughtforest/internal/models"
	"thoughtforest/internal/repositories"
)

// SummaryService handles the authenticated user's weekly summaries.
type SummaryService struct {
	repo repositories.SummaryRepository
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(repo repositories.SummaryRepository) *SummaryService {
	return &SummaryService{repo: repo}
}

// SummaryPatch holds the fields to change; nil means unchanged.
type SummaryPatch struct {
	Date    *models.Date
	Mood    *models.Mood
	Summary *string
}

// Create stores a summary. An empty mood means neutral. A second summary
// for the same date fails with repositories.ErrDuplicate.
func (s *SummaryService) Create(ctx context.Context, userID string, date models.Date, mood models.Mood, text string) (*models.Summary, error) {
	if mood == "" {
		mood = models.MoodNeutral
	}
	if !mood.Valid() {
		return nil, ErrInvalidMood
	}
	sum := &models.Summary{UserID: userID, Date: date, Mood: mood, Summary: text}
	if err := s.repo.Create(ctx, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *SummaryService) List(ctx context.Context, userID string) ([]models.Summary, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *SummaryService) Get(ctx context.Context, userID, id string) (*models.Summary, error) {
	return s.repo.GetForUser(ctx, userID, id)
}

func (s *SummaryService) Update(ctx context.Context, userID, id string, patch SummaryPatch) (*models.Summary, error) {
	if patch.Mood != nil && !patch.Mood.Valid() {
		return nil, ErrInvalidMood
	}
	sum, err := s.repo.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Date != nil {
		sum.Date = *patch.Date
	}
	if patch.Mood != nil {
		sum.Mood = *patch.Mood
	}
	if patch.Summary != nil {
		sum.Summary = *patch.Summary
	}
	if err := s.repo.Update(ctx, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

func (s *SummaryService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteForUser(ctx, userID, id)
}

package services

import (
	"context"

	"thoughtforest/internal/models"
	"thoughtforest/internal/repositories"
)

// TranscriptionService handles the authenticated user's journal entries.
type TranscriptionService struct {
	repo repositories.TranscriptionRepository
}

// NewTranscriptionService creates a new TranscriptionService.
func NewTranscriptionService(repo repositories.TranscriptionRepository) *TranscriptionService {
	return &TranscriptionService{repo: repo}
}

// TranscriptionPatch holds the fields to change; nil means unchanged.
// ClearTranscript removes the body and wins over Transcript.
type TranscriptionPatch struct {
	Date            *models.Date
	Length          *int
	Transcript      *string
	ClearTranscript bool
}

func (s *TranscriptionService) Create(ctx context.Context, userID string, date models.Date, length int, transcript *string) (*models.Transcription, error) {
	t := &models.Transcription{
		UserID:     userID,
		Date:       date,
		Length:     length,
		Transcript: transcript,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TranscriptionService) List(ctx context.Context, userID string) ([]models.Transcription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *TranscriptionService) Get(ctx context.Context, userID, id string) (*models.Transcription, error) {
	return s.repo.GetForUser(ctx, userID, id)
}

func (s *TranscriptionService) Update(ctx context.Context, userID, id string, patch TranscriptionPatch) (*models.Transcription, error) {
	t, err := s.repo.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Length != nil {
		t.Length = *patch.Length
	}
	switch {
	case patch.ClearTranscript:
		t.Transcript = nil
	case patch.Transcript != nil:
		t.Transcript = patch.Transcript
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TranscriptionService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteForUser(ctx, userID, id)
}

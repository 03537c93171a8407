package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"thoughtforest/internal/mail"
	"thoughtforest/internal/models"
	"thoughtforest/internal/repositories"
)

// UserService manages the authenticated user's own profile.
type UserService struct {
	userRepo          repositories.UserRepository
	transcriptionRepo repositories.TranscriptionRepository
	summaryRepo       repositories.SummaryRepository
	mailer            mail.Mailer
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, transcriptionRepo repositories.TranscriptionRepository, summaryRepo repositories.SummaryRepository, mailer mail.Mailer) *UserService {
	return &UserService{
		userRepo:          userRepo,
		transcriptionRepo: transcriptionRepo,
		summaryRepo:       summaryRepo,
		mailer:            mailer,
	}
}

// ProfileUpdate holds the fields a user may change; nil means unchanged.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) Update(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		if email != user.Email {
			if other, err := s.userRepo.GetByEmail(ctx, email); err == nil && other.ID != user.ID {
				return nil, ErrEmailTaken
			}
			user.Email = email
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Delete removes the account together with its transcriptions and summaries.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return s.userRepo.Delete(ctx, userID)
}

// Export is the document mailed by RequestExport.
type Export struct {
	UserDetails    *models.User           `json:"user_details"`
	Transcriptions []models.Transcription `json:"transcriptions"`
	Summaries      []models.Summary       `json:"summaries"`
}

// BuildExport collects everything stored for the user.
func (s *UserService) BuildExport(ctx context.Context, userID string) (*Export, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	transcriptions, err := s.transcriptionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summaryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if transcriptions == nil {
		transcriptions = []models.Transcription{}
	}
	if summaries == nil {
		summaries = []models.Summary{}
	}
	return &Export{UserDetails: user, Transcriptions: transcriptions, Summaries: summaries}, nil
}

// RequestExport mails the export to the user as user_data.json.
func (s *UserService) RequestExport(ctx context.Context, userID string) error {
	export, err := s.BuildExport(ctx, userID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(export, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return s.mailer.Send(ctx, mail.Export(export.UserDetails.Email, data))
}

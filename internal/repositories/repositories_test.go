package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"thoughtforest/internal/config"
	"thoughtforest/internal/database"
	"thoughtforest/internal/models"
	"thoughtforest/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(config.DBConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func createUser(t *testing.T, repo repositories.UserRepository, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: "Test", PasswordHash: "hash", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(newTestDB(t))

	u := createUser(t, repo, "a@example.com")
	assert.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Name = "Renamed"
	got.VerificationCode = "code-1"
	require.NoError(t, repo.Update(ctx, got))

	byCode, err := repo.GetByVerificationCode(ctx, "code-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", byCode.Name)

	_, err = repo.GetByVerificationCode(ctx, "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Update(ctx, &models.User{ID: "missing", Email: "x@example.com"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := repositories.NewGORMUserRepository(newTestDB(t))
	createUser(t, repo, "dup@example.com")

	err := repo.Create(context.Background(), &models.User{Email: "dup@example.com", Name: "Other", PasswordHash: "x"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	transcriptions := repositories.NewGORMTranscriptionRepository(db)
	summaries := repositories.NewGORMSummaryRepository(db)

	u := createUser(t, users, "gone@example.com")
	keep := createUser(t, users, "keep@example.com")
	day := models.NewDate(2026, 10, 12)

	require.NoError(t, transcriptions.Create(ctx, &models.Transcription{UserID: u.ID, Date: day, Length: 1, Transcript: strPtr("x")}))
	require.NoError(t, transcriptions.Create(ctx, &models.Transcription{UserID: keep.ID, Date: day, Length: 1, Transcript: strPtr("y")}))
	_, _, err := summaries.Upsert(ctx, u.ID, day, models.MoodNeutral, "s")
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, u.ID))

	var count int64
	db.Model(&models.Transcription{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Summary{}).Where("user_id = ?", u.ID).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.Transcription{}).Where("user_id = ?", keep.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, users.Delete(ctx, u.ID), repositories.ErrNotFound)
}

func TestTranscriptionRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	repo := repositories.NewGORMTranscriptionRepository(db)

	owner := createUser(t, users, "owner@example.com")
	other := createUser(t, users, "other@example.com")

	tr := &models.Transcription{UserID: owner.ID, Date: models.NewDate(2026, 10, 13), Length: 2, Transcript: strPtr("hello there")}
	require.NoError(t, repo.Create(ctx, tr))

	_, err := repo.GetForUser(ctx, other.ID, tr.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteForUser(ctx, other.ID, tr.ID), repositories.ErrNotFound)

	hijack := *tr
	hijack.UserID = other.ID
	assert.ErrorIs(t, repo.Update(ctx, &hijack), repositories.ErrNotFound)

	tr.Transcript = strPtr("edited")
	tr.Length = 1
	require.NoError(t, repo.Update(ctx, tr))

	got, err := repo.GetForUser(ctx, owner.ID, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Transcript)
	assert.Equal(t, "edited", *got.Transcript)
	assert.Equal(t, models.NewDate(2026, 10, 13), got.Date)

	require.NoError(t, repo.DeleteForUser(ctx, owner.ID, tr.ID))
	list, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTranscriptionRepository_ListWithTextBetween(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	repo := repositories.NewGORMTranscriptionRepository(db)
	u := createUser(t, users, "window@example.com")

	monday := models.NewDate(2026, 10, 12)
	seed := []models.Transcription{
		{UserID: u.ID, Date: monday.AddDays(2), Length: 1, Transcript: strPtr("wednesday")},
		{UserID: u.ID, Date: monday, Length: 1, Transcript: strPtr("monday")},
		{UserID: u.ID, Date: monday.AddDays(1), Length: 0, Transcript: nil},
		{UserID: u.ID, Date: monday.AddDays(-1), Length: 1, Transcript: strPtr("previous sunday")},
		{UserID: u.ID, Date: monday.AddDays(7), Length: 1, Transcript: strPtr("next monday")},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	got, err := repo.ListWithTextBetween(ctx, monday, monday.AddDays(7))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "monday", *got[0].Transcript)
	assert.Equal(t, "wednesday", *got[1].Transcript)
}

func TestSummaryRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := createUser(t, repositories.NewGORMUserRepository(db), "upsert@example.com")
	repo := repositories.NewGORMSummaryRepository(db)
	week := models.NewDate(2026, 10, 12)

	first, created, err := repo.Upsert(ctx, u.ID, week, models.MoodNeutral, "same text")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.Upsert(ctx, u.ID, week, models.MoodNeutral, "same text")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "same text", list[0].Summary)
}

func TestSummaryRepository_UpsertOverwritesTextKeepsMood(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := createUser(t, repositories.NewGORMUserRepository(db), "overwrite@example.com")
	repo := repositories.NewGORMSummaryRepository(db)
	week := models.NewDate(2026, 10, 12)

	_, _, err := repo.Upsert(ctx, u.ID, week, models.MoodHappy, "T1")
	require.NoError(t, err)
	stored, created, err := repo.Upsert(ctx, u.ID, week, models.MoodSad, "T2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "T2", stored.Summary)
	assert.Equal(t, models.MoodHappy, stored.Mood)

	var count int64
	db.Model(&models.Summary{}).Where("user_id = ?", u.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSummaryRepository_CreateRejectsDuplicateWeek(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := createUser(t, repositories.NewGORMUserRepository(db), "dupweek@example.com")
	repo := repositories.NewGORMSummaryRepository(db)
	week := models.NewDate(2026, 10, 12)

	require.NoError(t, repo.Create(ctx, &models.Summary{UserID: u.ID, Date: week, Summary: "a"}))
	err := repo.Create(ctx, &models.Summary{UserID: u.ID, Date: week, Summary: "b"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestSummaryRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	u := createUser(t, repositories.NewGORMUserRepository(db), "sum@example.com")
	repo := repositories.NewGORMSummaryRepository(db)

	s := &models.Summary{UserID: u.ID, Date: models.NewDate(2026, 10, 5), Summary: "old"}
	require.NoError(t, repo.Create(ctx, s))
	assert.Equal(t, models.MoodNeutral, s.Mood)

	s.Mood = models.MoodAngry
	s.Summary = "new"
	require.NoError(t, repo.Update(ctx, s))

	got, err := repo.GetForUser(ctx, u.ID, s.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MoodAngry, got.Mood)
	assert.Equal(t, "new", got.Summary)

	assert.ErrorIs(t, repo.DeleteForUser(ctx, "someone-else", s.ID), repositories.ErrNotFound)
	require.NoError(t, repo.DeleteForUser(ctx, u.ID, s.ID))
	_, err = repo.GetForUser(ctx, u.ID, s.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"thoughtforest/internal/config"
	"thoughtforest/internal/mail"
	"thoughtforest/internal/models"
	"thoughtforest/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup, login, tokens and account verification.
type AuthService struct {
	userRepo    repositories.UserRepository
	mailer      mail.Mailer
	jwtSecret   []byte
	tokenTTL    time.Duration
	baseURL     string
	adminEmail  string
	accessCode  string
	maxAttempts int
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, mailer mail.Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		mailer:      mailer,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    cfg.JWTTTL,
		baseURL:     cfg.BaseURL,
		adminEmail:  cfg.Mail.AdminEmail,
		accessCode:  cfg.SubscriptionAccessCode,
		maxAttempts: cfg.VerificationMaxAttempts,
		now:         time.Now,
	}
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Register creates a user, then mails a welcome message with the
// verification link and notifies the admin address.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	user, err := s.createUser(ctx, email, name, password, false)
	if err != nil {
		return nil, err
	}

	link := mail.VerificationLink(s.baseURL, user.VerificationCode)
	s.send(ctx, mail.Welcome(user.Email, user.Name, link))
	if s.adminEmail != "" {
		s.send(ctx, mail.AdminSignup(s.adminEmail, user.Name, s.now()))
	}
	return user, nil
}

// CreateStaff creates a verified staff account without sending mail.
func (s *AuthService) CreateStaff(ctx context.Context, email, name, password string) (*models.User, error) {
	return s.createUser(ctx, email, name, password, true)
}

func (s *AuthService) createUser(ctx context.Context, email, name, password string, staff bool) (*models.User, error) {
	email = NormalizeEmail(email)
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:           email,
		Name:            strings.TrimSpace(name),
		PasswordHash:    string(hashed),
		IsActive:        true,
		IsStaff:         staff,
		IsEmailVerified: staff,
	}
	if !staff {
		user.VerificationCode = uuid.New().String()
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		// unknown email and wrong password look the same to the caller
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInactiveAccount
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("token validation failed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if id, _ := claims["user_id"].(string); id == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidToken)
	}
	return claims, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrIncorrectPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)
	return s.userRepo.Update(ctx, user)
}

// VerifyEmail marks the owner of code as verified. Once a code has been
// used maxAttempts times it is replaced, the new link is mailed and
// ErrVerificationExpired is returned.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return repositories.ErrNotFound
	}
	user, err := s.userRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	if user.VerificationAttempts >= s.maxAttempts {
		user.VerificationCode = uuid.New().String()
		user.VerificationAttempts = 0
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		s.sendVerification(ctx, user)
		return ErrVerificationExpired
	}

	user.IsEmailVerified = true
	user.VerificationAttempts++
	return s.userRepo.Update(ctx, user)
}

// RegenerateVerificationCode issues a fresh code and mails it.
func (s *AuthService) RegenerateVerificationCode(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.VerificationCode = uuid.New().String()
	user.VerificationAttempts = 0
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.sendVerification(ctx, user)
	return nil
}

// ActivateSubscription turns the subscription on when code matches the
// configured access code.
func (s *AuthService) ActivateSubscription(ctx context.Context, userID, code string) error {
	if s.accessCode == "" || subtle.ConstantTimeCompare([]byte(code), []byte(s.accessCode)) != 1 {
		return ErrInvalidAccessCode
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.IsSubscriptionActive = true
	return s.userRepo.Update(ctx, user)
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) {
	link := mail.VerificationLink(s.baseURL, user.VerificationCode)
	s.send(ctx, mail.Verification(user.Email, user.VerificationCode, link))
}

func (s *AuthService) send(ctx context.Context, msg mail.Message) {
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("kind", msg.Kind).Msg("failed to hand off mail")
	}
}

package services

import "errors"

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInactiveAccount     = errors.New("account is disabled")
	ErrIncorrectPassword   = errors.New("old password is incorrect")
	ErrInvalidAccessCode   = errors.New("invalid access code")
	ErrVerificationExpired = errors.New("verification code expired, a new code has been sent")
	ErrAlreadyVerified     = errors.New("email is already verified")
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidMood         = errors.New("mood must be one of happy, sad, neutral, angry")
)

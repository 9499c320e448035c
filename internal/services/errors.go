package services

import "errors"

var (
	ErrInvalidEntry       = errors.New("invalid entry")
	ErrMoodNotFound       = errors.New("mood not found")
	ErrInvalidImport      = errors.New("invalid data format: moods array is missing")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrChatNotConfigured  = errors.New("API key is not configured")
	ErrUploadUnavailable  = errors.New("file upload service not available")
)

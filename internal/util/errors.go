package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrNationalIDRegistered = errors.New("national id already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrTestNotFound         = errors.New("test not found")
	ErrTestNotActive        = errors.New("test not active")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptNotActive     = errors.New("attempt is no longer active")
	ErrAttemptExpired       = errors.New("attempt has expired")
	ErrAttemptSubmitted     = errors.New("attempt already submitted")
	ErrConsentRequired      = errors.New("consent is required to start the test")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionNotInSet     = errors.New("question is not part of this attempt")
	ErrCohortNotFound       = errors.New("cohort not found")
	ErrNotEnoughAttempts    = errors.New("not enough attempts to compare")
	ErrNoSnapshotImage      = errors.New("no image provided")
	ErrUnsupportedFileType  = errors.New("unsupported file type")
)

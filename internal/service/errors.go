package service

import (
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors carry the message shown to API clients.
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrUsernameTaken      = errors.New("Username already taken")
	ErrWrongPassword      = errors.New("Current password is incorrect")
	ErrUserNotFound       = errors.New("User not found")
	ErrUserGone           = errors.New("Token is valid but user no longer exists.")

	ErrQuestionNotFound  = errors.New("Question not found")
	ErrAttemptNotFound   = errors.New("Quiz attempt not found or already completed")
	ErrNoQuestions       = errors.New("No questions found for this topic")
	ErrQuestionNotInQuiz = errors.New("Question is not part of this quiz")

	ErrStorageDisabled = errors.New("Avatar storage is not configured")
	ErrAvatarNotFound  = errors.New("Avatar not found")
)

// ValidationError reports bad client input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// validID reports whether id is a canonical UUID. Row IDs are UUID columns,
// so anything else can never match and is treated as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

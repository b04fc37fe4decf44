package engine

import (
	"errors"
	"fmt"
)

// InputError describes input the engine refused. Engine operations log it
// and return a nil error; it is exported so callers and tests can build
// and inspect the same values.
type InputError struct {
	// Code identifies the error category.
	Code InputErrorCode

	// Message is a human-readable description.
	Message string

	// Skill names the skill involved, if any.
	Skill string
}

// InputErrorCode categorizes refused input.
type InputErrorCode string

const (
	// ErrCodeNoCharacter indicates the operation was given a nil character.
	ErrCodeNoCharacter InputErrorCode = "NO_CHARACTER"

	// ErrCodeBlankName indicates a skill mention without a usable name.
	ErrCodeBlankName InputErrorCode = "BLANK_NAME"

	// ErrCodeUnknownAttribute indicates an attribute outside the fixed set.
	ErrCodeUnknownAttribute InputErrorCode = "UNKNOWN_ATTRIBUTE"

	// ErrCodeInvalidXP indicates a non-positive direct attribute award.
	ErrCodeInvalidXP InputErrorCode = "INVALID_XP"
)

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Skill != "" {
		return fmt.Sprintf("%s: %s (skill=%s)", e.Code, e.Message, e.Skill)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInputError reports whether err is an InputError with the given code.
// Uses errors.As to handle wrapped errors.
func IsInputError(err error, code InputErrorCode) bool {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

func errNoCharacter(op string) *InputError {
	return &InputError{Code: ErrCodeNoCharacter, Message: op + ": character not loaded"}
}

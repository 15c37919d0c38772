package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an item or user does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrForbidden is returned when the actor lacks the required role.
	ErrForbidden = errors.New("catalog: forbidden")
	// ErrNotRegistered is returned when an unregistered user tries to upload.
	ErrNotRegistered = errors.New("catalog: user not registered")
	// ErrInvalidInput is returned for empty or oversized text input.
	ErrInvalidInput = errors.New("catalog: invalid input")
	// ErrCategoryMismatch is returned when an upload does not fit the chosen category.
	ErrCategoryMismatch = errors.New("catalog: media does not match category")
	// ErrUnsupportedMedia is returned for messages without a usable attachment.
	ErrUnsupportedMedia = errors.New("catalog: unsupported media")
	// ErrUnknownCategory is returned when parsing an unknown category name.
	ErrUnknownCategory = errors.New("catalog: unknown category")
)

// MismatchError reports the category an upload was detected as.
type MismatchError struct {
	Target   Category
	Detected Category
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("catalog: %s upload does not match category %s", e.Detected, e.Target)
}

// Unwrap makes errors.Is(err, ErrCategoryMismatch) hold.
func (e *MismatchError) Unwrap() error { return ErrCategoryMismatch }

// Code satisfies the handler summary error-code convention.
func (e *MismatchError) Code() string { return "category_mismatch" }

// InputError describes why a piece of text input was rejected.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("catalog: invalid %s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold.
func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Code satisfies the handler summary error-code convention.
func (e *InputError) Code() string { return "invalid_input" }

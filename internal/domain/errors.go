// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the input failed validation.
var ErrValidation = errors.New("validation error")

// ErrInvalidTransition indicates a task status change that would move the
// lifecycle backwards or out of a terminal state.
var ErrInvalidTransition = errors.New("invalid status transition")

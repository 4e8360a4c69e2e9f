package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/flowvault/internal/access"
)

// NotFoundError reports that no project with the given name is registered.
type NotFoundError struct {
	Project string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %s not found", e.Project)
}

// PermissionError reports that a project exists but the user lacks the
// capability the operation requires.
type PermissionError struct {
	Project    string
	User       string
	Capability access.Capability
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s does not have %s on project %s", e.User, e.Capability, e.Project)
}

// ValidationError reports invalid caller input, detected before any side
// effect takes place.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports that a project of the given name already exists,
// in memory or on disk.
type ConflictError struct {
	Project string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("project %s already exists", e.Project)
}

// UploadError reports that an upload was rejected because the flow set
// carried structural errors and force was not set. Messages holds every
// accumulated error; Error joins them with newlines.
type UploadError struct {
	Project  string
	Messages []string
}

func (e *UploadError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// PersistError reports an I/O failure while creating directories or
// writing, renaming or reading files. It wraps the underlying cause.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a project-not-found error.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsPermissionDenied reports whether err is a permission denial.
func IsPermissionDenied(err error) bool {
	var e *PermissionError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a caller-input validation error.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a duplicate-project conflict.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsUploadRejected reports whether err is a rejected upload carrying
// accumulated flow errors.
func IsUploadRejected(err error) bool {
	var e *UploadError
	return errors.As(err, &e)
}

// IsPersistence reports whether err is an I/O persistence failure.
func IsPersistence(err error) bool {
	var e *PersistError
	return errors.As(err, &e)
}

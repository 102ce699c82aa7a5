// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"fmt"
	"strconv"
	"strings"
)

// Error codes for access workflow errors
const (
	ErrCodeInvalidReference   = "INVALID_REFERENCE"
	ErrCodeUsersNotFound      = "USERS_NOT_FOUND"
	ErrCodeCollectionNotFound = "COLLECTION_NOT_FOUND"
	ErrCodeGroupNotFound      = "GROUP_NOT_FOUND"
	ErrCodeValidationError    = "VALIDATION_ERROR"
)

// AccessError represents a domain-specific error for access operations
type AccessError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable error message
	Op         string            // Operation that failed (e.g., "GrantAccess")
	Metadata   map[string]string // Additional context about the error
	Underlying error             // The underlying error if any
}

// Error implements the error interface
func (e *AccessError) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

// Is implements error unwrapping for errors.Is
func (e *AccessError) Is(target error) bool {
	t, ok := target.(*AccessError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func (e *AccessError) Unwrap() error {
	return e.Underlying
}

// Emails returns the addresses carried by a USERS_NOT_FOUND error.
func (e *AccessError) Emails() []string {
	v, ok := e.Metadata["emails"]
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func NewInvalidReferenceError(ref string, op string, err error) *AccessError {
	return &AccessError{
		Code:    ErrCodeInvalidReference,
		Message: fmt.Sprintf("invalid object reference %q", ref),
		Op:      op,
		Metadata: map[string]string{
			"reference": ref,
		},
		Underlying: err,
	}
}

func NewUsersNotFoundError(emails []string, op string) *AccessError {
	return &AccessError{
		Code:    ErrCodeUsersNotFound,
		Message: fmt.Sprintf("users not found: %s", strings.Join(emails, ", ")),
		Op:      op,
		Metadata: map[string]string{
			"emails": strings.Join(emails, ","),
		},
	}
}

func NewCollectionNotFoundError(collectionID int, op string, err error) *AccessError {
	id := "root"
	if collectionID > 0 {
		id = strconv.Itoa(collectionID)
	}
	return &AccessError{
		Code:    ErrCodeCollectionNotFound,
		Message: fmt.Sprintf("collection %s not found", id),
		Op:      op,
		Metadata: map[string]string{
			"collection_id": id,
		},
		Underlying: err,
	}
}

func NewGroupNotFoundError(name string, op string) *AccessError {
	return &AccessError{
		Code:    ErrCodeGroupNotFound,
		Message: fmt.Sprintf("group %q not found", name),
		Op:      op,
		Metadata: map[string]string{
			"group_name": name,
		},
	}
}

func NewValidationError(field, reason string, op string) *AccessError {
	return &AccessError{
		Code:    ErrCodeValidationError,
		Message: fmt.Sprintf("validation failed: %s %s", field, reason),
		Op:      op,
		Metadata: map[string]string{
			"field":  field,
			"reason": reason,
		},
	}
}

// Sentinel errors for use with errors.Is
var (
	ErrInvalidReference   = &AccessError{Code: ErrCodeInvalidReference}
	ErrUsersNotFound      = &AccessError{Code: ErrCodeUsersNotFound}
	ErrCollectionNotFound = &AccessError{Code: ErrCodeCollectionNotFound}
	ErrGroupNotFound      = &AccessError{Code: ErrCodeGroupNotFound}
	ErrValidation         = &AccessError{Code: ErrCodeValidationError}
)

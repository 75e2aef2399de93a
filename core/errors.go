package core

import (
	"errors"
	"fmt"
)

// Identity error kinds. Every *EntityError unwraps to exactly one of these.
var (
	// ErrIdentityConflict is returned when a create request already carries an identity
	ErrIdentityConflict = errors.New("identity conflict")

	// ErrIdentityRequired is returned when an update request carries no identity
	ErrIdentityRequired = errors.New("identity required")

	// ErrIdentityMismatch is returned when the path and body identities differ
	ErrIdentityMismatch = errors.New("identity mismatch")

	// ErrNotFound is returned when an operation targets an absent identity
	ErrNotFound = errors.New("entity not found")
)

// Client-facing error keys, reported in the X-<app>-error header and problem body.
const (
	ErrorKeyIDExists   = "idexists"
	ErrorKeyIDNull     = "idnull"
	ErrorKeyIDInvalid  = "idinvalid"
	ErrorKeyIDNotFound = "idnotfound"
	ErrorKeyNotFound   = "notfound"
)

// EntityError describes an identity rule violation for one entity kind.
type EntityError struct {
	// Kind is one of the identity sentinels above
	Kind error
	// Entity is the entity name, e.g. "caseDefinition"
	Entity string
	// Field is the offending field, always "id" for identity rules
	Field string
	// Key is the client-facing error key
	Key string
	// Message is a short human-readable explanation
	Message string
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s.%s: %s (%s)", e.Entity, e.Field, e.Message, e.Key)
}

// Unwrap exposes the kind so callers can use errors.Is.
func (e *EntityError) Unwrap() error {
	return e.Kind
}

// IsPrecondition reports whether the error was raised by request validation,
// before any record was read for the operation. Precondition failures are
// client errors even when their kind is ErrNotFound.
func (e *EntityError) IsPrecondition() bool {
	return e.Key != ErrorKeyNotFound
}

// NewIdentityConflict reports a create request that already carries an identity.
func NewIdentityConflict(entity string) *EntityError {
	return &EntityError{
		Kind:    ErrIdentityConflict,
		Entity:  entity,
		Field:   "id",
		Key:     ErrorKeyIDExists,
		Message: fmt.Sprintf("A new %s cannot already have an ID", entity),
	}
}

// NewIdentityRequired reports an update request without an identity.
func NewIdentityRequired(entity string) *EntityError {
	return &EntityError{
		Kind:    ErrIdentityRequired,
		Entity:  entity,
		Field:   "id",
		Key:     ErrorKeyIDNull,
		Message: "Invalid id",
	}
}

// NewIdentityMismatch reports a body identity that differs from the path identity.
func NewIdentityMismatch(entity string, pathID, bodyID int64) *EntityError {
	return &EntityError{
		Kind:    ErrIdentityMismatch,
		Entity:  entity,
		Field:   "id",
		Key:     ErrorKeyIDInvalid,
		Message: fmt.Sprintf("Invalid ID: path %d does not match body %d", pathID, bodyID),
	}
}

// NewIdentityNotFound reports an update request whose identity does not exist.
func NewIdentityNotFound(entity string, id int64) *EntityError {
	return &EntityError{
		Kind:    ErrNotFound,
		Entity:  entity,
		Field:   "id",
		Key:     ErrorKeyIDNotFound,
		Message: fmt.Sprintf("Entity not found: %d", id),
	}
}

// NewNotFound reports a lookup that produced no record.
func NewNotFound(entity string, id int64) *EntityError {
	return &EntityError{
		Kind:    ErrNotFound,
		Entity:  entity,
		Field:   "id",
		Key:     ErrorKeyNotFound,
		Message: fmt.Sprintf("%s %d not found", entity, id),
	}
}

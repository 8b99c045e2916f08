package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/benchwise/gridvault/db"
)

var (
	ErrDocumentNotFound = fmt.Errorf("document %w", db.ErrNotFound)
	ErrVersionNotFound  = fmt.Errorf("version %w", db.ErrNotFound)
	ErrDuplicateVersion = errors.New("version with identical content already exists")
	ErrInvalidParent    = errors.New("parent version does not belong to the document")
	ErrCrossDocument    = errors.New("versions belong to different documents")
)

// DuplicateVersionError reports a create that matched an existing version's
// content hash. It is a signal the caller is expected to handle ("no changes
// detected"), not a hard failure.
type DuplicateVersionError struct {
	ExistingVersionID uuid.UUID
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateVersion, e.ExistingVersionID)
}

func (e *DuplicateVersionError) Unwrap() error {
	return ErrDuplicateVersion
}

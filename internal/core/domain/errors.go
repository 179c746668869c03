package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent synchronisation failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested element does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates a malformed argument or setting value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates the project is already being synchronised.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrAmbiguousTitle indicates two elements of one class share a title.
	// Matching across the timeline and the novel is by title, so this is fatal.
	ErrAmbiguousTitle = errors.New("ambiguous title")

	// ErrSchema indicates the timeline template cannot express what a sync needs.
	ErrSchema = errors.New("schema error")

	// ErrDocumentIO indicates an archive or project file could not be read or written.
	ErrDocumentIO = errors.New("document I/O error")

	// ErrInvalidDocument indicates the timeline payload is missing required fields.
	ErrInvalidDocument = errors.New("invalid timeline document")

	// ErrUnsupportedFile indicates a file extension that selects no sync direction.
	ErrUnsupportedFile = errors.New("file type is not supported")

	// ErrFileNotFound indicates the source or target file is missing.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileExists indicates a target that must not be overwritten already exists.
	ErrFileExists = errors.New("file already exists")

	// ErrProjectLocked indicates the novel project is locked by another application.
	ErrProjectLocked = errors.New("project is locked")
)

// Sides of a synchronisation, used in error messages.
const (
	SideTimeline = "timeline"
	SideNovel    = "novel"
)

// AmbiguousTitleError names the duplicated title and the side it was found on.
type AmbiguousTitleError struct {
	// Side is SideTimeline or SideNovel.
	Side string

	// Kind is the element class, e.g. "character" or "event".
	Kind string

	// Title is the offending title.
	Title string
}

func (e *AmbiguousTitleError) Error() string {
	return fmt.Sprintf("ambiguous %s %s title %q", e.Side, e.Kind, e.Title)
}

// Unwrap allows errors.Is(err, ErrAmbiguousTitle).
func (e *AmbiguousTitleError) Unwrap() error {
	return ErrAmbiguousTitle
}

// SchemaError describes a template that cannot be healed.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "schema error: " + e.Reason
}

// Unwrap allows errors.Is(err, ErrSchema).
func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// DocumentIOError wraps a storage failure with the operation and path.
type DocumentIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *DocumentIOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrDocumentIO and the underlying cause.
func (e *DocumentIOError) Unwrap() []error {
	return []error{ErrDocumentIO, e.Err}
}

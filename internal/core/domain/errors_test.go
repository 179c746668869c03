package domain

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are distinct
func TestErrors_Existence(t *testing.T) {
	all := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrSyncInProgress,
		ErrAmbiguousTitle,
		ErrSchema,
		ErrDocumentIO,
		ErrInvalidDocument,
		ErrUnsupportedFile,
		ErrFileNotFound,
		ErrFileExists,
		ErrProjectLocked,
	}

	for i, err := range all {
		assert.NotEmpty(t, err.Error())
		for j, other := range all {
			if i != j {
				assert.False(t, errors.Is(err, other), "%v matches %v", err, other)
			}
		}
	}
}

func TestAmbiguousTitleError(t *testing.T) {
	err := error(&AmbiguousTitleError{Side: SideNovel, Kind: "character", Title: "Alice"})

	assert.Equal(t, `ambiguous novel character title "Alice"`, err.Error())
	assert.ErrorIs(t, err, ErrAmbiguousTitle)

	var target *AmbiguousTitleError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "Alice", target.Title)
}

func TestSchemaError(t *testing.T) {
	err := error(&SchemaError{Reason: "no AD era"})

	assert.Equal(t, "schema error: no AD era", err.Error())
	assert.ErrorIs(t, err, ErrSchema)
	assert.NotErrorIs(t, err, ErrDocumentIO)
}

func TestDocumentIOError(t *testing.T) {
	err := error(&DocumentIOError{Op: "open", Path: "a.novx", Err: fs.ErrPermission})

	assert.Equal(t, `open "a.novx": permission denied`, err.Error())
	assert.ErrorIs(t, err, ErrDocumentIO)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.NotErrorIs(t, err, ErrFileNotFound)
}

func TestDocumentIOError_Wrapped(t *testing.T) {
	inner := &DocumentIOError{Op: "read", Path: "a.aeonzip", Err: ErrInvalidDocument}
	err := errors.Join(errors.New("load timeline"), inner)

	assert.ErrorIs(t, err, ErrDocumentIO)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	var target *DocumentIOError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "read", target.Op)
}

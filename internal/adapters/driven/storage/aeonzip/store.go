package aeonzip

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
	"github.com/custodia-labs/aeonsync/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.TimelineStore = (*Store)(nil)

// BackupSuffix is appended to the archive path to name the backup.
const BackupSuffix = ".bak"

// Store reads and writes timeline archives on the local filesystem.
type Store struct{}

// NewStore creates a new archive store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the timeline.json member of the archive at path.
func (s *Store) Load(_ context.Context, path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.DocumentIOError{Op: "open", Path: path, Err: domain.ErrFileNotFound}
		}
		return nil, &domain.DocumentIOError{Op: "open", Path: path, Err: err}
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &domain.DocumentIOError{Op: "read", Path: path, Err: err}
	}

	payload, err := readMember(reader, domain.TimelineMember)
	if err != nil {
		return nil, &domain.DocumentIOError{Op: "read", Path: path, Err: err}
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, fmt.Errorf("%w: %s has an empty %s", domain.ErrInvalidDocument, path, domain.TimelineMember)
	}

	doc, err := domain.ParseDocument(payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	logger.Debug("Loaded timeline %s: %d entities, %d events", path, len(doc.Entities), len(doc.Events))
	return doc, nil
}

// Save writes doc to path. An existing archive is copied to the backup
// first and its other members are carried over.
func (s *Store) Save(_ context.Context, doc *domain.Document, path string) error {
	payload, err := doc.Encode()
	if err != nil {
		return &domain.DocumentIOError{Op: "encode", Path: path, Err: err}
	}

	previous, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.DocumentIOError{Op: "open", Path: path, Err: err}
	}

	archive, err := buildArchive(previous, payload)
	if err != nil {
		return &domain.DocumentIOError{Op: "write", Path: path, Err: err}
	}

	if previous != nil {
		backup := path + BackupSuffix
		if err := atomic.WriteFile(backup, bytes.NewReader(previous)); err != nil {
			return &domain.DocumentIOError{Op: "backup", Path: backup, Err: err}
		}
		logger.Debug("Backed up %s", backup)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(archive)); err != nil {
		return &domain.DocumentIOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// readMember returns the content of the named archive member.
func readMember(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: no %s member", domain.ErrInvalidDocument, name)
}

// buildArchive returns a new archive holding payload as the timeline member.
// Members of previous keep their order; a previous archive that cannot be
// read is replaced entirely.
func buildArchive(previous, payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	written := false
	writePayload := func() error {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: domain.TimelineMember, Method: zip.Deflate})
		if err != nil {
			return err
		}
		_, err = fw.Write(payload)
		written = true
		return err
	}

	if previous != nil {
		reader, err := zip.NewReader(bytes.NewReader(previous), int64(len(previous)))
		if err != nil {
			logger.Warn("Previous archive is unreadable, rewriting it: %v", err)
		} else {
			for _, file := range reader.File {
				if file.Name == domain.TimelineMember {
					if written {
						continue
					}
					if err := writePayload(); err != nil {
						return nil, err
					}
					continue
				}
				if err := w.Copy(file); err != nil {
					return nil, fmt.Errorf("copy member %s: %w", file.Name, err)
				}
			}
		}
	}

	if !written {
		if err := writePayload(); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

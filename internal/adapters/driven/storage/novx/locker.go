package novx

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
	"github.com/custodia-labs/aeonsync/internal/core/ports/driven"
)

// Ensure Locker implements the interface.
var _ driven.ProjectLocker = (*Locker)(nil)

// Locker marks projects as locked with the lock file the novel editor
// checks before opening a project.
type Locker struct {
	now func() time.Time
}

// NewLocker creates a new lock file locker.
func NewLocker() *Locker {
	return &Locker{now: time.Now}
}

// LockFilePath returns the lock file of the project at path:
// .LOCK.<file name># in the project's directory.
func LockFilePath(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, ".LOCK."+name+"#")
}

// Lock creates the lock file. An existing lock is left alone.
func (l *Locker) Lock(path string) error {
	lockPath := LockFilePath(path)
	f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return &domain.DocumentIOError{Op: "lock", Path: path, Err: err}
	}
	defer f.Close()

	content := strings.Join([]string{"aeonsync", l.now().Format(time.RFC3339)}, "\n")
	if _, err := f.WriteString(content); err != nil {
		return &domain.DocumentIOError{Op: "lock", Path: path, Err: err}
	}
	return nil
}

// IsLocked reports whether a lock file exists for the project at path.
func (l *Locker) IsLocked(path string) bool {
	_, err := os.Stat(LockFilePath(path))
	return err == nil
}

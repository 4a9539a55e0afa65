// Package lockfile keeps two processes from working on the same data file.
package lockfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrLocked = errors.New("data file is in use by another process")

type Lock struct {
	path string
	file *os.File
}

// Acquire creates path exclusively and writes the current PID into it.
// A leftover lock from a crashed process must be removed by hand.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return nil, errors.Wrapf(ErrLocked, "%s (pid %s)", path, Owner(path))
	}
	if err != nil {
		return nil, errors.Wrap(err, "create lock")
	}

	if _, err = fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, errors.Wrap(err, "write lock")
	}

	return &Lock{path: path, file: f}, nil
}

// Owner returns the PID recorded in the lock file, or "unknown".
func Owner(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	pid := strings.TrimSpace(string(data))
	if _, err = strconv.Atoi(pid); err != nil {
		return "unknown"
	}
	return pid
}

func (l *Lock) Path() string {
	return l.path
}

func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	closeErr := l.file.Close()
	l.file = nil

	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove lock")
	}
	return closeErr
}

package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.dat.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), Owner(path))

	_, err = Acquire(path)
	assert.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, l.Release())
	require.NoError(t, l.Release())

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	l, err = Acquire(path)
	require.NoError(t, err)
	assert.NoError(t, l.Release())
}

func TestOwner_Unknown(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "unknown", Owner(filepath.Join(dir, "missing")))

	path := filepath.Join(dir, "garbage.lock")
	require.NoError(t, os.WriteFile(path, []byte("xyz"), 0o644))
	assert.Equal(t, "unknown", Owner(path))
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/studygroups/internal/config"
	"github.com/yakoovad/studygroups/internal/lockfile"
	"github.com/yakoovad/studygroups/internal/repository"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Encodings(t *testing.T) {
	for _, encoding := range []string{"snapshot", "rows", "sqlite"} {
		t.Run(encoding, func(t *testing.T) {
			dir := t.TempDir()
			common := []string{
				"--config", filepath.Join(dir, "missing.yaml"),
				"--data", filepath.Join(dir, "groups"),
				"--encoding", encoding,
			}

			code, _, errOut := execute(t, append([]string{"create", "algo", "Math", "--name", "Kim", "--id", "kim@uni.kr"}, common...)...)
			require.Equal(t, 0, code, errOut)

			code, out, errOut := execute(t, append([]string{"list", "--brief"}, common...)...)
			require.Equal(t, 0, code, errOut)
			if encoding == "rows" {
				assert.Equal(t, "algo - Math (0 members)\n", out)
			} else {
				assert.Equal(t, "algo - Math (1 members)\n", out)
			}
		})
	}
}

func TestRun_ExitStatus(t *testing.T) {
	dir := t.TempDir()
	common := []string{"--config", filepath.Join(dir, "missing.yaml"), "--data", filepath.Join(dir, "groups.dat")}

	for i := 0; i < 20; i++ {
		code, _, errOut := execute(t, append([]string{"list"}, common...)...)
		require.Equal(t, 0, code, errOut)
	}

	code, _, errOut := execute(t, append([]string{"join", "missing", "--name", "Kim", "--id", "a@b"}, common...)...)
	assert.Equal(t, 1, code)
	assert.Equal(t, "error: group not found\n", errOut)

	_, err := os.Stat(filepath.Join(dir, "groups.dat.lock"))
	assert.True(t, os.IsNotExist(err), "lock must be released after every run")
}

func TestRun_Locked(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "groups.dat")

	lock, err := lockfile.Acquire(data + ".lock")
	require.NoError(t, err)
	defer lock.Release()

	code, _, errOut := execute(t, "list", "--config", filepath.Join(dir, "missing.yaml"), "--data", data)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, lockfile.ErrLocked.Error())
}

func TestRun_BadEncoding(t *testing.T) {
	dir := t.TempDir()

	code, _, _ := execute(t, "list", "--config", filepath.Join(dir, "missing.yaml"), "--encoding", "xml")
	assert.Equal(t, 1, code)
}

func TestRun_ConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studygroups.yaml")

	code, out, errOut := execute(t, "config", "init", "--config", path, "--encoding", "rows")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "wrote "+path+"\n", out)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, repository.EncodingRows, cfg.Storage.Encoding)

	_, err = os.Stat(cfg.DataPath() + ".lock")
	assert.True(t, os.IsNotExist(err), "config init must not open the data file")

	code, _, errOut = execute(t, "config", "init", "--config", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "already exists")

	code, _, errOut = execute(t, "config", "init", "--config", path, "--force")
	require.Equal(t, 0, code, errOut)
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, repository.EncodingSnapshot, cfg.Storage.Encoding)
}

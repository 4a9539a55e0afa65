package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/studygroups/internal/model"
	"github.com/yakoovad/studygroups/internal/repository"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "study_groups.dat", cfg.DataPath())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studygroups.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  encoding: rows
members:
  identifier: student_id
  letters_only_names: true
logging:
  level: debug
`), 0o644))

	t.Setenv(EnvLogLevel, "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, repository.EncodingRows, cfg.Storage.Encoding)
	assert.Equal(t, "study_groups.csv", cfg.DataPath())
	assert.Equal(t, model.IdentifierStudentID, cfg.Members.Identifier)
	assert.True(t, cfg.Members.LettersOnlyNames)
	assert.True(t, cfg.Members.FounderRequired)
	assert.Equal(t, "error", cfg.Logging.Level)

	t.Setenv(EnvData, "/tmp/other.csv")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.csv", cfg.DataPath())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studygroups.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [oops"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studygroups.yaml")
	cfg := DefaultConfig()
	cfg.Storage.Encoding = repository.EncodingSQLite

	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"encoding", func(c *Config) { c.Storage.Encoding = "xml" }},
		{"identifier", func(c *Config) { c.Members.Identifier = "phone" }},
		{"level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

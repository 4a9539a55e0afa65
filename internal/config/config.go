package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/yakoovad/studygroups/internal/model"
	"github.com/yakoovad/studygroups/internal/repository"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EnvData       = "STUDYGROUPS_DATA"
	EnvEncoding   = "STUDYGROUPS_ENCODING"
	EnvLogLevel   = "STUDYGROUPS_LOG_LEVEL"
	EnvIdentifier = "STUDYGROUPS_IDENTIFIER"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Members MembersConfig `yaml:"members"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Encoding repository.Encoding `yaml:"encoding"` // snapshot, rows, sqlite
	Path     string              `yaml:"path"`     // defaults per encoding
	Lock     bool                `yaml:"lock"`
}

type MembersConfig struct {
	Identifier       model.IdentifierKind `yaml:"identifier"` // student_id, email
	LettersOnlyNames bool                 `yaml:"letters_only_names"`
	FounderRequired  bool                 `yaml:"founder_required"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Encoding: repository.EncodingSnapshot,
			Lock:     true,
		},
		Members: MembersConfig{
			Identifier:      model.IdentifierEmail,
			FounderRequired: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err = yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvData); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvEncoding); v != "" {
		c.Storage.Encoding = repository.Encoding(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvIdentifier); v != "" {
		c.Members.Identifier = model.IdentifierKind(v)
	}
}

// DataPath returns the configured path or the default file name for the encoding.
func (c *Config) DataPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Encoding {
	case repository.EncodingRows:
		return "study_groups.csv"
	case repository.EncodingSQLite:
		return "study_groups.db"
	default:
		return "study_groups.dat"
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Encoding {
	case repository.EncodingSnapshot, repository.EncodingRows, repository.EncodingSQLite:
	default:
		return errors.Errorf("storage.encoding: unknown value %q", c.Storage.Encoding)
	}

	switch c.Members.Identifier {
	case model.IdentifierStudentID, model.IdentifierEmail:
	default:
		return errors.Errorf("members.identifier: unknown value %q", c.Members.Identifier)
	}

	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.Wrap(err, "logging.level")
	}

	return nil
}

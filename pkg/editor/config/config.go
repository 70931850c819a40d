// Package config loads the editor settings from a YAML file, a .env file and the environment.
package config

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/pipeline-editor/internal/ctxlog"
	"github.com/askiada/pipeline-editor/pkg/editor/drawer"
	"github.com/askiada/pipeline-editor/pkg/editor/filewatch"
	"github.com/askiada/pipeline-editor/pkg/editor/interaction"
	"github.com/askiada/pipeline-editor/pkg/editor/layout"
	"github.com/askiada/pipeline-editor/pkg/editor/logstream"
	"github.com/askiada/pipeline-editor/pkg/editor/persist"
	"github.com/askiada/pipeline-editor/pkg/editor/session"
	"github.com/askiada/pipeline-editor/pkg/editor/viewport"
)

// Environment variables overriding the file.
const (
	EnvAPIURL    = "PIPELINE_EDITOR_API_URL"
	EnvStreamURL = "PIPELINE_EDITOR_STREAM_URL"
	EnvLogLevel  = "PIPELINE_EDITOR_LOG_LEVEL"
)

type Log struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Config is the whole editor configuration.
type Config struct {
	Log         Log                `yaml:"log"`
	Interaction interaction.Config `yaml:"interaction"`
	Connection  drawer.Style       `yaml:"connection"`
	Viewport    viewport.Config    `yaml:"viewport"`
	Layout      layout.Config      `yaml:"layout"`
	Files       filewatch.Config   `yaml:"files"`
	Session     session.Config     `yaml:"session"`
	Stream      logstream.Config   `yaml:"stream"`
	Store       persist.Config     `yaml:"store"`
}

func Default() Config {
	return Config{
		Log:         Log{Level: "info", Format: "text"},
		Interaction: interaction.DefaultConfig(),
		Connection:  drawer.DefaultStyle(),
		Viewport:    viewport.DefaultConfig(),
		Layout:      layout.DefaultConfig(),
		Files:       filewatch.DefaultConfig(),
		Session:     session.DefaultConfig(),
		Stream:      logstream.DefaultConfig(),
		Store:       persist.DefaultConfig(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c *Config) Validate() error {
	return errors.Wrap(validate.Struct(c), "invalid configuration")
}

// Logger builds the logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return ctxlog.New(c.Log.Level, c.Log.Format, w)
}

// Decode reads YAML over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, errors.Wrap(err, "unable to parse configuration")
	}

	return cfg, nil
}

// Load reads the file at path, when set, loads the .env files that exist and applies the environment overrides
// before validating the result.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "unable to read configuration %s", path)
		}

		cfg, err = Decode(bytes.NewReader(data))
		if err != nil {
			return cfg, err
		}
	}

	if err := loadEnv(envFiles...); err != nil {
		return cfg, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "unable to load %s", file)
		}
	}

	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		c.Session.APIURL = v
	}

	if v, ok := os.LookupEnv(EnvStreamURL); ok {
		c.Stream.URL = v
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
}

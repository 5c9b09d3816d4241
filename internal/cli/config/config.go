package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// FileName is the project configuration file at the project root
const FileName = "nebula.config.toml"

// ErrNotProject is returned when no nebula.config.toml can be found
var ErrNotProject = errors.New("not a Nebula project directory (no " + FileName + " found)")

// ErrInvalid wraps every configuration validation failure
var ErrInvalid = errors.New("invalid configuration")

// Config represents the Nebula project configuration
type Config struct {
	Project   ProjectConfig   `mapstructure:"project" toml:"project"`
	Paths     PathsConfig     `mapstructure:"paths" toml:"paths"`
	Generator GeneratorConfig `mapstructure:"generator" toml:"generator"`
}

// ProjectConfig describes the generated project
type ProjectConfig struct {
	Name       string `mapstructure:"name" toml:"name" validate:"required"`
	Type       string `mapstructure:"type" toml:"type" validate:"oneof=server client full"`
	Database   string `mapstructure:"database" toml:"database" validate:"oneof=postgresql mysql mariadb sqlite mongodb"`
	ServerType string `mapstructure:"server_type" toml:"server_type" validate:"oneof=rest graphql"`
}

// PathsConfig holds generator output paths relative to the project root
type PathsConfig struct {
	Entities   string `mapstructure:"entities" toml:"entities" validate:"required"`
	Handlers   string `mapstructure:"handlers" toml:"handlers" validate:"required"`
	Resolvers  string `mapstructure:"resolvers" toml:"resolvers" validate:"required"`
	Migrations string `mapstructure:"migrations" toml:"migrations" validate:"required"`
	// Routes is the router file rebuilt by `generate routes`
	Routes string `mapstructure:"routes" toml:"routes" validate:"required"`
	// Schema is the GraphQL schema file rebuilt for graphql servers
	Schema string `mapstructure:"schema" toml:"schema" validate:"required"`
}

// GeneratorConfig tunes the entity compiler
type GeneratorConfig struct {
	// ExtraTypes are appended to the built-in scalar type allow-list
	ExtraTypes []string `mapstructure:"extra_types" toml:"extra_types"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "")
	v.SetDefault("project.type", "server")
	v.SetDefault("project.database", "postgresql")
	v.SetDefault("project.server_type", "rest")
	v.SetDefault("paths.entities", "src/entities")
	v.SetDefault("paths.handlers", "src/handlers")
	v.SetDefault("paths.resolvers", "src/resolvers")
	v.SetDefault("paths.migrations", "migrations")
	v.SetDefault("paths.routes", "src/route.rs")
	v.SetDefault("paths.schema", "src/graphql.rs")
	v.SetDefault("generator.extra_types", []string{})
}

// Default returns the configuration written for a new project
func Default(name string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name:       name,
			Type:       "server",
			Database:   "postgresql",
			ServerType: "rest",
		},
		Paths: PathsConfig{
			Entities:   "src/entities",
			Handlers:   "src/handlers",
			Resolvers:  "src/resolvers",
			Migrations: "migrations",
			Routes:     "src/route.rs",
			Schema:     "src/graphql.rs",
		},
	}
}

// Load reads nebula.config.toml from root. Values may be overridden by
// NEBULA_ prefixed environment variables, e.g. NEBULA_PROJECT_DATABASE.
func Load(fs afero.Fs, root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if !exists {
		return nil, ErrNotProject
	}

	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvPrefix("NEBULA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := configKey(fe.Namespace())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", key))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got: %v", key, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", key, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// configKey turns a validator namespace such as Config.Project.ServerType
// into the file key project.server_type
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toKey(p)
	}
	return strings.Join(parts, ".")
}

func toKey(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Write encodes cfg as TOML into root/nebula.config.toml
func Write(fs afero.Fs, root string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(root, FileName)
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FindProjectRoot walks up from start looking for nebula.config.toml
func FindProjectRoot(fs afero.Fs, start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if _, err := fs.Stat(filepath.Join(dir, FileName)); err == nil {
			return dir, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotProject
		}
		dir = parent
	}
}

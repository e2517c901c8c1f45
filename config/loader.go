package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/httpwrap/logger"
)

// FileSystem abstracts the file operations the loader performs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file without overriding variables already set.
func (osFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Defaulter is implemented by configs that fill in defaults after loading.
type Defaulter interface {
	ApplyDefaults()
}

// Validator is implemented by configs that check themselves after loading.
type Validator interface {
	Validate() error
}

// LoaderConfig holds the loader's dependencies and file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file, skips the search
	EnvFile    string // explicit .env file, skips the search
	EnvPrefix  string // prefix for environment variable names
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets the filesystem used to find and load files.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix makes environment variables match as PREFIX_KEY.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// LoadConfig loads configuration for a service into cfg, which must be a
// pointer to a struct with mapstructure tags.
//
// Sources in increasing precedence: the YAML config file, the .env file,
// the process environment. Nested keys map to environment variables by
// joining with underscores, so http_client.timeout reads HTTP_CLIENT_TIMEOUT.
// When cfg implements Defaulter and Validator they run after unmarshalling.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: osFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	files := resolveFiles(serviceName, lc)
	log := logger.Get("config")

	if files.EnvFile != "" {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("config: load env file %s: %w", files.EnvFile, err)
		}
	}

	v := viper.New()
	if files.ConfigFile != "" {
		if lc.FileSystem.Exists(files.ConfigFile) {
			v.SetConfigFile(files.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("config: read %s: %w", files.ConfigFile, err)
			}
		} else {
			log.Warn("config file not found", logger.Fields("path", files.ConfigFile))
		}
	}

	bindEnv(v, reflect.TypeOf(cfg), "", lc.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if val, ok := cfg.(Validator); ok {
		if err := val.Validate(); err != nil {
			return err
		}
	}

	log.Debug("configuration loaded", logger.Fields(
		"service", serviceName,
		"config_file", files.ConfigFile,
		"env_file", files.EnvFile,
	))
	return nil
}

type resolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// resolveFiles returns the explicit paths, or the first existing file from
// the standard locations.
func resolveFiles(serviceName string, lc LoaderConfig) resolvedFiles {
	files := resolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(lc.FileSystem, []string{
			"./cmd/" + serviceName + "/config.yml",
			"./config/" + serviceName + ".yml",
			"./config/config.yml",
			"./config.yml",
			"./config.yaml",
		})
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(lc.FileSystem, []string{
			"./cmd/" + serviceName + "/.env",
			"./.env." + serviceName,
			"./.env",
		})
	}
	return files
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// bindEnv binds every leaf key of t to its environment variable so that
// Unmarshal sees values that only exist in the environment.
func bindEnv(v *viper.Viper, t reflect.Type, prefix, envPrefix string) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, squash := fieldKey(f)
		if name == "-" {
			continue
		}
		if squash {
			bindEnv(v, f.Type, prefix, envPrefix)
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			bindEnv(v, ft, key, envPrefix)
			continue
		}
		_ = v.BindEnv(key, envName(envPrefix, key))
	}
}

func fieldKey(f reflect.StructField) (name string, squash bool) {
	parts := strings.Split(f.Tag.Get("mapstructure"), ",")
	name = parts[0]
	for _, p := range parts[1:] {
		if p == "squash" {
			squash = true
		}
	}
	if name == "" && !squash {
		name = strings.ToLower(f.Name)
	}
	return name, squash
}

func envName(prefix, key string) string {
	name := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if prefix != "" {
		return strings.ToUpper(prefix) + "_" + name
	}
	return name
}

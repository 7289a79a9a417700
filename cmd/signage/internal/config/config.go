// Package config loads the optional signage.yaml or signage.toml of a display
// project and resolves it against the built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/signage/pkg/descriptor"
)

// Defaults applied by Resolve.
const (
	DefaultLayout           = "layout.xml"
	DefaultAPI              = "http://localhost:8000"
	DefaultTimeout          = 10 * time.Second
	DefaultListen           = ":8080"
	DefaultDepartmentPeriod = time.Second
	DefaultContentPeriod    = 30 * time.Second
)

// APIEnv overrides api.base when set.
const APIEnv = "SIGNAGE_API"

// Config represents the optional project configuration file.
type Config struct {
	Display DisplayConfig `yaml:"display" toml:"display"`
	API     APIConfig     `yaml:"api" toml:"api"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Refresh RefreshConfig `yaml:"refresh" toml:"refresh"`
}

// DisplayConfig names the layout and the files it refers to.
type DisplayConfig struct {
	Layout     string `yaml:"layout,omitempty" toml:"layout"`
	Schema     string `yaml:"schema,omitempty" toml:"schema"`
	StaticDir  string `yaml:"static_dir,omitempty" toml:"static_dir"`
	StaticRoot string `yaml:"static_root,omitempty" toml:"static_root"`
	MediaDir   string `yaml:"media_dir,omitempty" toml:"media_dir"`
}

// APIConfig points at the backend serving lecturers and content.
type APIConfig struct {
	Base    string `yaml:"base,omitempty" toml:"base"`
	Timeout string `yaml:"timeout,omitempty" toml:"timeout"`
}

// ServerConfig configures signage serve.
type ServerConfig struct {
	Listen string `yaml:"listen,omitempty" toml:"listen"`
	// Reload is the browser meta refresh interval. Empty disables it.
	Reload string `yaml:"reload,omitempty" toml:"reload"`
}

// RefreshConfig overrides the polling periods of the live widgets.
type RefreshConfig struct {
	Department string `yaml:"department,omitempty" toml:"department"`
	Content    string `yaml:"content,omitempty" toml:"content"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root             string
	Layout           string
	Schema           string
	StaticDir        string
	StaticRoot       string
	MediaDir         string
	APIBase          string
	Timeout          time.Duration
	Listen           string
	Reload           time.Duration
	DepartmentPeriod time.Duration
	ContentPeriod    time.Duration
}

var fileNames = []string{"signage.yaml", "signage.yml", "signage.toml"}

// LoadOptional reads the project configuration if present. It is an error
// for more than one configuration file to exist.
func LoadOptional(dir string) (*Config, error) {
	var found []string
	for _, name := range fileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			found = append(found, name)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
	}
	switch len(found) {
	case 0:
		return &Config{}, nil
	case 1:
	default:
		return nil, fmt.Errorf("conflicting configuration files: %s", strings.Join(found, ", "))
	}

	name := found[0]
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var cfg Config
	if filepath.Ext(name) == ".toml" {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse %s: unknown key %q", name, undecoded[0].String())
		}
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &cfg, nil
}

// Resolve loads the project configuration (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Root:       dir,
		Layout:     project(dir, orDefault(cfg.Display.Layout, DefaultLayout)),
		Schema:     strings.TrimSpace(cfg.Display.Schema),
		StaticRoot: orDefault(cfg.Display.StaticRoot, "/static"),
		APIBase:    orDefault(cfg.API.Base, DefaultAPI),
		Listen:     orDefault(cfg.Server.Listen, DefaultListen),
	}
	if s := strings.TrimSpace(cfg.Display.StaticDir); s != "" {
		r.StaticDir = project(dir, s)
	}
	if s := strings.TrimSpace(cfg.Display.MediaDir); s != "" {
		r.MediaDir = project(dir, s)
	}
	if env := strings.TrimSpace(os.Getenv(APIEnv)); env != "" {
		r.APIBase = env
	}

	durations := []struct {
		key  string
		raw  string
		def  time.Duration
		dest *time.Duration
	}{
		{"api.timeout", cfg.API.Timeout, DefaultTimeout, &r.Timeout},
		{"server.reload", cfg.Server.Reload, 0, &r.Reload},
		{"refresh.department", cfg.Refresh.Department, DefaultDepartmentPeriod, &r.DepartmentPeriod},
		{"refresh.content", cfg.Refresh.Content, DefaultContentPeriod, &r.ContentPeriod},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.raw, d.def)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}

	if err := validateSchema(r.Schema); err != nil {
		return nil, err
	}
	return r, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// project resolves a configured path relative to the project directory.
func project(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func parseDuration(key, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", key, raw)
	}
	return d, nil
}

func validateSchema(v string) error {
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid display.schema %q: not a semantic version", v)
	}
	if semver.Major(v) != semver.Major(descriptor.SchemaVersion) {
		return fmt.Errorf("display.schema %s is not supported (this build reads %s)", v, descriptor.SchemaVersion)
	}
	return nil
}

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Konsultn-Engineering/sqlgen/connector"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the name the CLI looks for in the working directory.
const ConfigFile = "sqlgen.yaml"

// Config is the content of a project's sqlgen.yaml.
type Config struct {
	// Root holds the host files; Out receives the generated code and
	// defaults to Root.
	Root string `yaml:"root"`
	Out  string `yaml:"out"`

	Package    string `yaml:"package"`
	BaseType   string `yaml:"base_type"`
	BaseImport string `yaml:"base_import"`
	Dialect    string `yaml:"dialect"`
	Jobs       int    `yaml:"jobs"`
	FailFast   bool   `yaml:"fail_fast"`
	CacheSize  int    `yaml:"cache_size"`

	// Interval between walks in watch mode.
	Interval time.Duration `yaml:"interval"`

	// Connection is used by CRUD generation only.
	Connection *connector.Config `yaml:"connection,omitempty"`
	Crud       []CrudTarget      `yaml:"crud,omitempty"`
}

// CrudTarget asks for the template statements of one table.
type CrudTarget struct {
	Table  string `yaml:"table"`
	Schema string `yaml:"schema,omitempty"`
	// Generator is one of schema.GeneratorNames(); defaults to "cruds".
	Generator string `yaml:"generator,omitempty"`
	// Output is the host file to write, relative to Root. Defaults to the
	// exported table name, e.g. BlogPosts.sqlg.
	Output string `yaml:"output,omitempty"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Root:      ".",
		CacheSize: DefaultCacheSize,
		Interval:  2 * time.Second,
	}
}

// LoadConfig reads path over DefaultConfig. Relative Root and Out are
// resolved against the directory of path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(dir, cfg.Root)
	}
	if cfg.Out != "" && !filepath.IsAbs(cfg.Out) {
		cfg.Out = filepath.Join(dir, cfg.Out)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("invalid jobs: %d", c.Jobs)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("invalid interval: %s", c.Interval)
	}
	for i, t := range c.Crud {
		if t.Table == "" {
			return fmt.Errorf("crud[%d]: table is required", i)
		}
	}
	if len(c.Crud) > 0 && c.Connection == nil {
		return fmt.Errorf("crud targets need a connection")
	}
	if c.Connection != nil {
		return c.Connection.Validate()
	}
	return nil
}

// Options returns the generation options the config describes, with a
// compiler of its own.
func (c *Config) Options() (Options, error) {
	size := c.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	compiler, err := NewCompiler(nil, size)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Package:    c.Package,
		BaseType:   c.BaseType,
		BaseImport: c.BaseImport,
		Dialect:    c.DialectName(),
		Jobs:       c.Jobs,
		FailFast:   c.FailFast,
		Compiler:   compiler,
	}, nil
}

// DialectName returns Dialect, or the dialect of the connection's driver
// when Dialect is unset and the driver is registered.
func (c *Config) DialectName() string {
	if c.Dialect != "" || c.Connection == nil {
		return c.Dialect
	}
	d, err := connector.DialectOf(c.Connection.Driver)
	if err != nil {
		return ""
	}
	return d.Name()
}

// OutRoot returns Out, or Root when Out is unset.
func (c *Config) OutRoot() string {
	if c.Out == "" {
		return c.Root
	}
	return c.Out
}

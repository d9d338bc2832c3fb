// Package config handles the moavm.toml file holding command line defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"
)

// FileName is the name searched for by FindAndLoad.
const FileName = "moavm.toml"

// Output formats for the final VM state.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Config represents a moavm.toml file.
type Config struct {
	Run Run `toml:"run"`
	Asm Asm `toml:"asm"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// Run configures `moavm run`.
type Run struct {
	Trace   bool          `toml:"trace"`
	Stacks  bool          `toml:"stacks"`
	Format  string        `toml:"format"`
	Timeout time.Duration `toml:"timeout"`
}

// Asm configures `moavm asm`.
type Asm struct {
	Compress bool `toml:"compress"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{Run: Run{Format: FormatText}}
}

// Load parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Newf("unknown key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// FindAndLoad walks up from startDir looking for a moavm.toml file, and
// loads it; defaults are returned if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		} else if !oserror.IsNotExist(err) {
			return nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks field values the TOML decoder cannot.
func (cfg *Config) Validate() error {
	switch cfg.Run.Format {
	case FormatText, FormatYAML:
	default:
		return errors.Newf("run.format must be %q or %q, not %q", FormatText, FormatYAML, cfg.Run.Format)
	}
	if cfg.Run.Timeout < 0 {
		return errors.Newf("run.timeout must not be negative, got %v", cfg.Run.Timeout)
	}
	return nil
}

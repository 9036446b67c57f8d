package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// Output formats accepted by the CLI.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatLSP  = "lsp"
)

// Options controls a checking run. It is loaded from mambacheck.toml and can
// be overridden by command line flags.
type Options struct {
	// Workers bounds the number of files/bodies checked in parallel.
	// Zero means GOMAXPROCS.
	Workers int `toml:"workers"`

	// WarnUncaughtRaises reports a warning for raise statements that are not
	// covered by an enclosing try.
	WarnUncaughtRaises bool `toml:"warn_uncaught_raises"`

	// StrictOptional rejects attribute access on a value whose type is still
	// Optional at that point.
	StrictOptional bool `toml:"strict_optional"`

	Format string       `toml:"format"`
	Cache  CacheOptions `toml:"cache"`

	Catalog CatalogOptions `toml:"catalog"`
}

type CacheOptions struct {
	// Path of the sqlite result cache. Empty disables caching.
	Path string `toml:"path"`
}

type CatalogOptions struct {
	// Extra stub files in the catalog YAML format, loaded after the
	// built-in catalog.
	Extra []string `toml:"extra"`
}

// Default returns the options used when no config file is present.
func Default() Options {
	return Options{
		Workers:        0,
		StrictOptional: true,
		Format:         FormatText,
	}
}

// EffectiveWorkers resolves the zero value to the number of usable CPUs.
func (o Options) EffectiveWorkers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Validate rejects values the checker cannot honor.
func (o Options) Validate() error {
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", o.Workers)
	}
	switch o.Format {
	case FormatText, FormatJSON, FormatLSP:
	default:
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	return nil
}

// Parse decodes TOML on top of the defaults, so keys missing from the file
// keep their default value.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if err := toml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Load reads options from path. A missing file yields the defaults when
// optional is set (the implicit mambacheck.toml lookup).
func Load(path string, optional bool) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

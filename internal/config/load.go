package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Overrides are command line values; a zero field leaves the config alone.
type Overrides struct {
	Seed     *int64
	Database string
	Workbook string
	Metrics  string
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Root is the project directory relative paths resolve against, and
	// where .env is looked for. Defaults to ".".
	Root string
	// File is an optional .yaml, .yml or .cue config file.
	File string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	Overrides Overrides
}

// Load builds and validates the run configuration. Nothing is generated or
// written before it returns.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()
	if opts.Root != "" {
		cfg.Paths.Root = opts.Root
	}

	if opts.File != "" {
		if err := loadFile(&cfg, opts.File); err != nil {
			return Config{}, err
		}
	}

	lookup, err := newLookup(filepath.Join(cfg.Paths.Root, ".env"), opts.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	cfg.apply(opts.Overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(cfg, data)
	case ".cue":
		return decodeCUE(cfg, path, data)
	default:
		return fmt.Errorf("unsupported config file %s: want .yaml, .yml or .cue", path)
	}
}

// decodeYAML overlays data onto cfg, rejecting unknown keys.
func decodeYAML(cfg *Config, data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// decodeCUE checks data against the embedded #Config schema and overlays the
// result onto cfg.
func decodeCUE(cfg *Config, path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("building config schema: %w", err)
	}

	file := ctx.CompileBytes(data, cue.Filename(path))
	if err := file.Err(); err != nil {
		return fmt.Errorf("failed to parse CUE: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	raw, err := value.MarshalJSON()
	if err != nil {
		return fmt.Errorf("exporting CUE config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decoding CUE config: %w", err)
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.Seed != nil {
		c.Generation.Seed = *o.Seed
	}
	if o.Database != "" {
		c.Paths.Database = o.Database
	}
	if o.Workbook != "" {
		c.Workbook = o.Workbook
	}
	if o.Metrics != "" {
		c.Metrics = o.Metrics
	}
}

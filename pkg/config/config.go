package config

import (
	"bytes"
	_ "embed"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/panbanda/jsclean/pkg/deadcode"
	"github.com/panbanda/jsclean/pkg/format"
	"github.com/panbanda/jsclean/pkg/parser"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://github.com/panbanda/jsclean/jsclean.schema.json"

// Config holds all configuration options for jsclean.
type Config struct {
	// Engine settings
	Engine EngineConfig `koanf:"engine" toml:"engine" json:"engine"`

	// Output formatting of cleaned files
	Format FormatConfig `koanf:"format" toml:"format" json:"format"`

	// Output file naming and report settings
	Output OutputConfig `koanf:"output" toml:"output" json:"output"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude" json:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache" json:"cache"`
}

// EngineConfig controls the elimination engine.
type EngineConfig struct {
	Passes     int    `koanf:"passes" toml:"passes" json:"passes"`
	FixedPoint bool   `koanf:"fixed_point" toml:"fixed_point" json:"fixed_point"`
	MaxPasses  int    `koanf:"max_passes" toml:"max_passes" json:"max_passes"`
	Grammar    string `koanf:"grammar" toml:"grammar" json:"grammar"` // auto, javascript, typescript, tsx
}

// FormatConfig controls the formatter applied to cleaned output.
type FormatConfig struct {
	Enabled       bool `koanf:"enabled" toml:"enabled" json:"enabled"`
	SingleQuote   bool `koanf:"single_quote" toml:"single_quote" json:"single_quote"`
	Semi          bool `koanf:"semi" toml:"semi" json:"semi"`
	TrailingComma bool `koanf:"trailing_comma" toml:"trailing_comma" json:"trailing_comma"`
}

// OutputConfig controls output naming and reports.
type OutputConfig struct {
	Suffix string `koanf:"suffix" toml:"suffix" json:"suffix"`
	Format string `koanf:"format" toml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" json:"color"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns" toml:"patterns" json:"patterns"`
	Dirs      []string `koanf:"dirs" toml:"dirs" json:"dirs"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore" json:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" json:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" json:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" json:"ttl"` // TTL in hours
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Passes:     1,
			FixedPoint: false,
			MaxPasses:  deadcode.DefaultMaxPasses,
			Grammar:    "auto",
		},
		Format: FormatConfig{
			Enabled:       true,
			SingleQuote:   true,
			Semi:          true,
			TrailingComma: false,
		},
		Output: OutputConfig{
			Suffix: ".cleaned",
			Format: "text",
			Color:  true,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.d.ts",
			},
			Dirs: []string{
				"node_modules",
				".git",
				".jsclean",
				"dist",
				"build",
				"coverage",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".jsclean/cache",
			TTL:     24,
		},
	}
}

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is the config file path, or "" when defaults were used.
	Source string
}

type loadOptions struct {
	path string
	dirs []string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

// WithPath loads the given file instead of searching for one.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs overrides the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// configNames are the file names searched for, in order.
var configNames = []string{
	"jsclean.toml",
	"jsclean.yaml",
	"jsclean.yml",
	"jsclean.json",
	".jsclean.toml",
	".jsclean.yaml",
	".jsclean.yml",
	".jsclean.json",
}

// LoadConfig loads an explicit config file, or the first config file found
// in the search directories, or the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := &loadOptions{dirs: []string{".", ".jsclean"}}
	for _, opt := range opts {
		opt(o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, err
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range o.dirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, err
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}

	return &LoadResult{Config: DefaultConfig()}, nil
}

// Load loads configuration from a file, validating it against the schema.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var p koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p = yaml.Parser()
	case ".json":
		p = json.Parser()
	default:
		p = toml.Parser()
	}

	if err := k.Load(file.Provider(path), p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

func validateSchema(raw map[string]any) error {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}

	// Round-trip through JSON so parser-specific value types validate
	// like their JSON equivalents.
	data, err := stdjson.Marshal(raw)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return schema.Validate(inst)
}

// Validate checks values the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.Passes < 1 {
		errs = append(errs, fmt.Errorf("engine.passes must be at least 1, got %d", c.Engine.Passes))
	}
	if c.Engine.MaxPasses < 1 {
		errs = append(errs, fmt.Errorf("engine.max_passes must be at least 1, got %d", c.Engine.MaxPasses))
	}
	if _, err := parser.ParseLanguage(c.Engine.Grammar); err != nil {
		errs = append(errs, fmt.Errorf("engine.grammar: %w", err))
	}
	if !strings.HasPrefix(c.Output.Suffix, ".") || len(c.Output.Suffix) < 2 ||
		strings.ContainsAny(c.Output.Suffix, `/\`) {
		errs = append(errs, fmt.Errorf("output.suffix must look like \".cleaned\", got %q", c.Output.Suffix))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %d", c.Cache.TTL))
	}
	return errors.Join(errs...)
}

// EngineOptions returns the elimination options described by the config.
func (c *Config) EngineOptions() deadcode.Options {
	return deadcode.Options{
		Passes:     c.Engine.Passes,
		FixedPoint: c.Engine.FixedPoint,
		MaxPasses:  c.Engine.MaxPasses,
	}
}

// FormatOptions returns the formatter options described by the config.
func (c *Config) FormatOptions() format.Options {
	return format.Options{
		SingleQuote:   c.Format.SingleQuote,
		Semi:          c.Format.Semi,
		TrailingComma: c.Format.TrailingComma,
	}
}

// Language returns the forced grammar, or parser.LangUnknown to choose by
// file extension.
func (c *Config) Language() parser.Language {
	lang, err := parser.ParseLanguage(c.Engine.Grammar)
	if err != nil {
		return parser.LangUnknown
	}
	return lang
}

// ShouldExclude checks if a path should be excluded from cleaning.
func (c *Config) ShouldExclude(path string) bool {
	// Check directory exclusions
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	if c.IsOutput(base) {
		return true
	}

	// Check pattern exclusions
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// IsOutput reports whether a file name looks like a cleaned output, such
// as "app.cleaned.js".
func (c *Config) IsOutput(name string) bool {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return c.Output.Suffix != "" && strings.HasSuffix(stem, c.Output.Suffix)
}

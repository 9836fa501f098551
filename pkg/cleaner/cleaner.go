// Package cleaner runs the complete clean pipeline over one source: parse,
// eliminate dead code, render, format and write the result next to the
// input.
package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/panbanda/jsclean/internal/cache"
	"github.com/panbanda/jsclean/pkg/ast/treesitter"
	"github.com/panbanda/jsclean/pkg/config"
	"github.com/panbanda/jsclean/pkg/deadcode"
	"github.com/panbanda/jsclean/pkg/format"
	"github.com/panbanda/jsclean/pkg/parser"
	"github.com/panbanda/jsclean/pkg/printer"
)

// DefaultSuffix is inserted between the name and extension of outputs.
const DefaultSuffix = ".cleaned"

// Options configures a clean run.
type Options struct {
	Engine deadcode.Options
	// Format is applied when Formatting is set.
	Format     format.Options
	Formatting bool
	// Language forces a grammar. Empty or parser.LangUnknown selects it
	// from the file extension.
	Language parser.Language
	Suffix   string
	// DryRun computes results without writing output files.
	DryRun bool
	// Cache, when enabled, short-circuits sources cleaned before with the
	// same options.
	Cache  *cache.Cache
	Logger *slog.Logger
}

// DefaultOptions returns single-pass elimination with default formatting.
func DefaultOptions() Options {
	return Options{
		Engine:     deadcode.DefaultOptions(),
		Format:     format.DefaultOptions(),
		Formatting: true,
		Suffix:     DefaultSuffix,
	}
}

// FromConfig builds options from a loaded configuration. The cache is not
// opened; callers attach one when they want it.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Engine:     cfg.EngineOptions(),
		Format:     cfg.FormatOptions(),
		Formatting: cfg.Format.Enabled,
		Language:   cfg.Language(),
		Suffix:     cfg.Output.Suffix,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) suffix() string {
	if o.Suffix == "" {
		return DefaultSuffix
	}
	return o.Suffix
}

// fingerprint identifies every option that changes the cleaned text.
func (o Options) fingerprint(lang parser.Language) string {
	return cache.Fingerprint(
		string(lang),
		strconv.Itoa(o.Engine.Passes),
		strconv.FormatBool(o.Engine.FixedPoint),
		strconv.Itoa(o.Engine.MaxPasses),
		strconv.FormatBool(o.Formatting),
		strconv.FormatBool(o.Format.SingleQuote),
		strconv.FormatBool(o.Format.Semi),
		strconv.FormatBool(o.Format.TrailingComma),
	)
}

// Result is the outcome of cleaning one source.
type Result struct {
	Path string `json:"path" toon:"path"`
	// OutputPath is where the output was, or would be, written.
	OutputPath string          `json:"output_path,omitempty" toon:"output_path"`
	Output     string          `json:"-" toon:"-"`
	InputSize  int             `json:"input_size" toon:"input_size"`
	Language   parser.Language `json:"language" toon:"language"`
	Stats      *deadcode.Stats `json:"stats" toon:"stats"`
	Cached     bool            `json:"cached" toon:"cached"`
}

// FileError is an I/O failure on a named file.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// OutputPath derives the output file for path: `dir/app.js` becomes
// `dir/app<suffix>.js`.
func OutputPath(path, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	return dir + name + suffix + ext
}

// CleanSource cleans in-memory source. path selects the grammar and names
// the source in errors; it may be empty.
func CleanSource(ctx context.Context, src []byte, path string, opts Options) (*Result, error) {
	p := parser.New(parser.WithLanguage(opts.Language))
	defer p.Close()

	res, err := p.ParseSource(ctx, src, path)
	if err != nil {
		return nil, err
	}
	lang := res.Language
	fp := opts.fingerprint(lang)

	if entry, ok := opts.Cache.Get(src, fp); ok {
		opts.logger().Debug("cache hit", slog.String("path", path))
		return &Result{
			Path:      path,
			Output:    entry.Output,
			InputSize: len(src),
			Language:  lang,
			Stats:     &deadcode.Stats{Removals: entry.Removals, Passes: entry.Passes},
			Cached:    true,
		}, nil
	}

	tree, err := treesitter.Build(res)
	if err != nil {
		return nil, err
	}

	engine := opts.Engine
	if engine.Logger == nil {
		engine.Logger = opts.logger()
	}
	stats, err := deadcode.Eliminate(ctx, tree, engine)
	if err != nil {
		return nil, err
	}

	out := printer.Render(tree)
	if opts.Formatting && out != "" {
		out, err = format.Format(ctx, []byte(out), lang, opts.Format)
		if err != nil {
			return nil, err
		}
	}

	if err := opts.Cache.Put(src, fp, cache.Entry{
		Output:   out,
		Removals: stats.Removals,
		Passes:   stats.Passes,
	}); err != nil {
		opts.logger().Debug("cache write failed", slog.String("path", path), slog.String("error", err.Error()))
	}

	return &Result{
		Path:      path,
		Output:    out,
		InputSize: len(src),
		Language:  lang,
		Stats:     stats,
	}, nil
}

// CleanFile cleans the file at path and writes the output beside it.
// Nothing is written unless every stage succeeds.
func CleanFile(ctx context.Context, path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: "read", Err: err}
	}

	result, err := CleanSource(ctx, src, path, opts)
	if err != nil {
		return nil, err
	}
	result.OutputPath = OutputPath(path, opts.suffix())

	log := opts.logger()
	log.Debug("cleaned file",
		slog.String("path", path),
		slog.Int("removals", result.Stats.Total()),
		slog.Int("passes", result.Stats.Passes),
		slog.Bool("cached", result.Cached),
	)

	if opts.DryRun {
		return result, nil
	}
	if err := writeFile(result.OutputPath, []byte(result.Output)); err != nil {
		return nil, err
	}
	return result, nil
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}
	name := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(name)
		return &FileError{Path: path, Op: "write", Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return &FileError{Path: path, Op: "write", Err: err}
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return &FileError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap returns every collected error, so errors.Is and errors.As look
// through all of them.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	errs := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		errs[i] = pe
	}
	return errs
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file processing error occurs.
// Receives the file path and the error.
type ErrorFunc func(path string, err error)

// Options configures a parallel run.
type Options struct {
	// Workers bounds concurrency. Zero or less uses 2x NumCPU.
	Workers    int
	OnProgress ProgressFunc
	OnError    ErrorFunc
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ForEachFile processes files in parallel, calling fn for each file.
// Errors from individual files are skipped; use ForEachFileWithContext to
// collect them.
func ForEachFile[T any](files []string, fn func(string) (T, error)) []T {
	results, _ := ForEachFileWithContext(context.Background(), files, func(_ context.Context, path string) (T, error) {
		return fn(path)
	}, Options{})
	return results
}

// ForEachFileWithContext processes files in parallel with context
// cancellation support. Results of files that succeeded are returned in the
// order of files. Files not started before ctx is done fail with the
// context error. The returned *ProcessingErrors is nil when every file
// succeeded.
func ForEachFileWithContext[T any](ctx context.Context, files []string, fn func(context.Context, string) (T, error), opts Options) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	type slot struct {
		value T
		ok    bool
	}
	slots := make([]slot, len(files))
	errs := &ProcessingErrors{}

	fail := func(path string, err error) {
		errs.Add(path, err)
		if opts.OnError != nil {
			opts.OnError(path, err)
		}
	}

	p := pool.New().WithMaxGoroutines(opts.workers()).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if opts.OnProgress != nil {
				defer opts.OnProgress()
			}

			// Check for cancellation before processing
			if err := ctx.Err(); err != nil {
				fail(path, err)
				return nil
			}

			result, err := fn(ctx, path)
			if err != nil {
				fail(path, err)
				return nil // Don't stop pool on individual file errors
			}
			// Each goroutine owns its slot
			slots[i] = slot{value: result, ok: true}
			return nil
		})
	}
	_ = p.Wait() // Errors are already captured in errs

	results := make([]T, 0, len(files))
	for _, s := range slots {
		if s.ok {
			results = append(results, s.value)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

package cleaner

import (
	"context"

	"github.com/panbanda/jsclean/internal/fileproc"
)

// CleanFiles cleans files concurrently. Results of files that succeeded
// come back in the order of files; failures are collected per path and do
// not stop the others.
func CleanFiles(ctx context.Context, files []string, opts Options, popts fileproc.Options) ([]*Result, *fileproc.ProcessingErrors) {
	return fileproc.ForEachFileWithContext(ctx, files, func(ctx context.Context, path string) (*Result, error) {
		return CleanFile(ctx, path, opts)
	}, popts)
}

// Summary totals a batch of results.
type Summary struct {
	Files    int `json:"files" toon:"files"`
	Changed  int `json:"changed" toon:"changed"`
	Removals int `json:"removals" toon:"removals"`
}

// Summarize totals results, skipping nils.
func Summarize(results []*Result) Summary {
	var s Summary
	for _, r := range results {
		if r == nil || r.Stats == nil {
			continue
		}
		s.Files++
		if n := r.Stats.Total(); n > 0 {
			s.Changed++
			s.Removals += n
		}
	}
	return s
}

package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/jsclean/internal/fileproc"
	"github.com/panbanda/jsclean/pkg/cleaner"
	"github.com/panbanda/jsclean/pkg/deadcode"
)

// FileRow summarizes the removals made in one file.
type FileRow struct {
	Path        string             `json:"path" toon:"path"`
	Output      string             `json:"output,omitempty" toon:"output"`
	Variables   int                `json:"variables" toon:"variables"`
	Functions   int                `json:"functions" toon:"functions"`
	Imports     int                `json:"imports" toon:"imports"`
	Assignments int                `json:"assignments" toon:"assignments"`
	Total       int                `json:"total" toon:"total"`
	Passes      int                `json:"passes" toon:"passes"`
	InputBytes  int                `json:"input_bytes" toon:"input_bytes"`
	OutputBytes int                `json:"output_bytes" toon:"output_bytes"`
	Cached      bool               `json:"cached" toon:"cached"`
	Removals    []deadcode.Removal `json:"removals" toon:"removals"`
}

// FailedFile is a file that could not be cleaned.
type FailedFile struct {
	Path  string `json:"path" toon:"path"`
	Error string `json:"error" toon:"error"`
}

// Summary aggregates a run.
type Summary struct {
	Files       int `json:"files" toon:"files"`
	Changed     int `json:"changed" toon:"changed"`
	Failed      int `json:"failed" toon:"failed"`
	Removals    int `json:"removals" toon:"removals"`
	Variables   int `json:"variables" toon:"variables"`
	Functions   int `json:"functions" toon:"functions"`
	Imports     int `json:"imports" toon:"imports"`
	Assignments int `json:"assignments" toon:"assignments"`
	// MeanRemovals and StdDevRemovals describe removals per cleaned file.
	MeanRemovals   float64 `json:"mean_removals" toon:"mean_removals"`
	StdDevRemovals float64 `json:"stddev_removals" toon:"stddev_removals"`
	InputBytes     int     `json:"input_bytes" toon:"input_bytes"`
	OutputBytes    int     `json:"output_bytes" toon:"output_bytes"`
	TokensSaved    int     `json:"tokens_saved" toon:"tokens_saved"`
}

// CleanReport is a Renderable report of a clean or check run.
type CleanReport struct {
	Title    string       `json:"-" toon:"-"`
	DryRun   bool         `json:"dry_run" toon:"dry_run"`
	Summary  Summary      `json:"summary" toon:"summary"`
	Files    []FileRow    `json:"files" toon:"files"`
	Failures []FailedFile `json:"failures,omitempty" toon:"failures"`
	// Details lists every removal in text and markdown output.
	Details bool `json:"-" toon:"-"`
}

// NewCleanReport builds a report from per-file results and the failures
// collected while producing them.
func NewCleanReport(title string, results []*cleaner.Result, errs *fileproc.ProcessingErrors) *CleanReport {
	r := &CleanReport{Title: title, Files: make([]FileRow, 0, len(results))}

	counts := make([]float64, 0, len(results))
	for _, res := range results {
		if res == nil || res.Stats == nil {
			continue
		}
		s := res.Stats
		row := FileRow{
			Path:        res.Path,
			Output:      res.OutputPath,
			Variables:   s.Count(deadcode.RemovedVariable),
			Functions:   s.Count(deadcode.RemovedFunction),
			Imports:     s.Count(deadcode.RemovedImport),
			Assignments: s.Count(deadcode.RemovedAssignment),
			Total:       s.Total(),
			Passes:      s.Passes,
			InputBytes:  res.InputSize,
			OutputBytes: len(res.Output),
			Cached:      res.Cached,
			Removals:    s.Removals,
		}
		r.Files = append(r.Files, row)
		counts = append(counts, float64(row.Total))

		sum := &r.Summary
		if row.Total > 0 {
			sum.Changed++
		}
		sum.Removals += row.Total
		sum.Variables += row.Variables
		sum.Functions += row.Functions
		sum.Imports += row.Imports
		sum.Assignments += row.Assignments
		sum.InputBytes += row.InputBytes
		sum.OutputBytes += row.OutputBytes
	}

	if errs != nil {
		for _, e := range errs.Errors {
			r.Failures = append(r.Failures, FailedFile{Path: e.Path, Error: e.Err.Error()})
		}
	}

	r.Summary.Files = len(r.Files)
	r.Summary.Failed = len(r.Failures)
	r.Summary.MeanRemovals, r.Summary.StdDevRemovals = meanStdDev(counts)
	r.Summary.TokensSaved = EstimateTokensBytes(r.Summary.InputBytes) - EstimateTokensBytes(r.Summary.OutputBytes)
	return r
}

// meanStdDev returns the mean and sample standard deviation of x, using
// zero where either is undefined.
func meanStdDev(x []float64) (float64, float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

func (r *CleanReport) RenderData() any {
	return r
}

func (r *CleanReport) headers() []string {
	return []string{"File", "Variables", "Functions", "Imports", "Assignments", "Removed", "Bytes"}
}

func (r *CleanReport) rows() [][]string {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		rows = append(rows, []string{
			f.Path,
			strconv.Itoa(f.Variables),
			strconv.Itoa(f.Functions),
			strconv.Itoa(f.Imports),
			strconv.Itoa(f.Assignments),
			strconv.Itoa(f.Total),
			fmt.Sprintf("%d -> %d", f.InputBytes, f.OutputBytes),
		})
	}
	return rows
}

func (r *CleanReport) footer() []string {
	s := r.Summary
	return []string{
		fmt.Sprintf("%d files", s.Files),
		strconv.Itoa(s.Variables),
		strconv.Itoa(s.Functions),
		strconv.Itoa(s.Imports),
		strconv.Itoa(s.Assignments),
		strconv.Itoa(s.Removals),
		fmt.Sprintf("%d -> %d", s.InputBytes, s.OutputBytes),
	}
}

func (r *CleanReport) summaryLines() []string {
	s := r.Summary
	verb := "Cleaned"
	if r.DryRun {
		verb = "Checked"
	}
	lines := []string{
		fmt.Sprintf("%s %d files, %d with dead code, %d failed", verb, s.Files, s.Changed, s.Failed),
		fmt.Sprintf("Removals per file: mean %.2f, stddev %.2f", s.MeanRemovals, s.StdDevRemovals),
	}
	if s.TokensSaved > 0 {
		lines = append(lines, fmt.Sprintf("Estimated tokens saved: %s", FormatTokenCount(s.TokensSaved)))
	}
	return lines
}

func (r *CleanReport) RenderText(w io.Writer, colored bool) error {
	table := NewTable(r.Title, r.headers(), r.rows(), r.footer(), nil)
	if err := table.RenderText(w, colored); err != nil {
		return err
	}

	if r.Details {
		for _, f := range r.Files {
			for _, rm := range f.Removals {
				kind := string(rm.Kind)
				if colored {
					kind = KindColor(kind, kind)
				}
				fmt.Fprintf(w, "  %s:%d:%d  %s  %s\n", f.Path, rm.Line, rm.Column, kind, rm.Name)
			}
		}
		fmt.Fprintln(w)
	}

	for _, line := range r.summaryLines() {
		fmt.Fprintln(w, line)
	}

	for _, f := range r.Failures {
		msg := fmt.Sprintf("FAILED %s: %s", f.Path, f.Error)
		if colored {
			msg = color.RedString(msg)
		}
		fmt.Fprintln(w, msg)
	}
	return nil
}

func (r *CleanReport) RenderMarkdown(w io.Writer) error {
	table := NewTable(r.Title, r.headers(), r.rows(), r.footer(), nil)
	if err := table.RenderMarkdown(w); err != nil {
		return err
	}

	if r.Details {
		fmt.Fprintln(w, "### Removals")
		fmt.Fprintln(w)
		for _, f := range r.Files {
			for _, rm := range f.Removals {
				fmt.Fprintf(w, "- `%s:%d:%d` %s `%s`\n", f.Path, rm.Line, rm.Column, rm.Kind, rm.Name)
			}
		}
		fmt.Fprintln(w)
	}

	for _, line := range r.summaryLines() {
		fmt.Fprintf(w, "- %s\n", line)
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "### Failures")
		fmt.Fprintln(w)
		for _, f := range r.Failures {
			fmt.Fprintf(w, "- `%s`: %s\n", f.Path, strings.ReplaceAll(f.Error, "\n", " "))
		}
	}
	fmt.Fprintln(w)
	return nil
}

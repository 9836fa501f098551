package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/panbanda/jsclean/internal/output"
	"github.com/panbanda/jsclean/pkg/cleaner"
	"github.com/panbanda/jsclean/pkg/deadcode"
)

var removalKinds = []deadcode.RemovalKind{
	deadcode.RemovedVariable,
	deadcode.RemovedFunction,
	deadcode.RemovedImport,
	deadcode.RemovedAssignment,
}

// statusOut receives status messages, separate from reports written to
// --output.
var statusOut io.Writer = os.Stdout

// status returns a text formatter for status messages.
func status() *output.Formatter {
	return output.NewWriterFormatter(output.FormatText, statusOut, !color.NoColor)
}

// summarizeKinds formats per-kind removal counts, e.g. "2 variable, 1 import".
func summarizeKinds(res *cleaner.Result) string {
	var parts []string
	for _, kind := range removalKinds {
		if n := res.Stats.Count(kind); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, kind))
		}
	}
	return strings.Join(parts, ", ")
}

package deadcode

import (
	"log/slog"
)

// DefaultMaxPasses bounds fixed-point iteration.
const DefaultMaxPasses = 32

// Options configures an elimination run.
type Options struct {
	// Passes is the number of full traversals to run. Zero means one.
	Passes int
	// FixedPoint repeats traversals until one removes nothing, up to
	// MaxPasses.
	FixedPoint bool
	MaxPasses  int
	// Logger receives debug records for every removal. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the single-pass configuration.
func DefaultOptions() Options {
	return Options{Passes: 1, MaxPasses: DefaultMaxPasses}
}

func (o Options) passes() int {
	if o.Passes < 1 {
		return 1
	}
	return o.Passes
}

func (o Options) maxPasses() int {
	if o.MaxPasses < 1 {
		return DefaultMaxPasses
	}
	return o.MaxPasses
}

// RemovalKind names what was removed.
type RemovalKind string

const (
	RemovedVariable   RemovalKind = "variable"
	RemovedFunction   RemovalKind = "function"
	RemovedImport     RemovalKind = "import"
	RemovedAssignment RemovalKind = "assignment"
)

// Removal records one removed construct.
type Removal struct {
	Kind   RemovalKind `json:"kind" toon:"kind"`
	Name   string      `json:"name" toon:"name"`
	Line   int         `json:"line" toon:"line"`
	Column int         `json:"column" toon:"column"`
	Pass   int         `json:"pass" toon:"pass"`
}

// Stats summarizes an elimination run.
type Stats struct {
	Removals []Removal `json:"removals" toon:"removals"`
	Passes   int       `json:"passes" toon:"passes"`
	Crawls   int       `json:"crawls" toon:"crawls"`
}

// Total returns the number of removals.
func (s *Stats) Total() int {
	return len(s.Removals)
}

// Count returns the number of removals of the given kind.
func (s *Stats) Count(kind RemovalKind) int {
	n := 0
	for _, r := range s.Removals {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

// Names returns the removed names of the given kind in removal order.
func (s *Stats) Names(kind RemovalKind) []string {
	var names []string
	for _, r := range s.Removals {
		if r.Kind == kind {
			names = append(names, r.Name)
		}
	}
	return names
}

package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeCleanSource() string {
	return `Removes dead code from a single JavaScript or TypeScript source passed inline and returns the cleaned text.

USE WHEN:
- Shrinking a snippet before pasting it into a prompt or review
- Checking which declarations in a file nothing reads
- Previewing a clean without touching the filesystem

INTERPRETING RESULTS:
- output is the cleaned, reformatted source; empty means every statement was dead
- variable: a declared binding nothing reads (its initializer is dropped too)
- function: a function declaration never referenced
- import: an import specifier never referenced; a fully dead import keeps its side-effect form
- assignment: a plain "name = value" statement on an undeclared name nothing reads
- Top-level code is treated like any other scope, so unused top-level declarations are removed too

METRICS RETURNED:
- output, language, passes
- removals: kind, name, line, column and pass of each removed construct
- tokens_before, tokens_after: estimated token counts of the input and output`
}

func describeCleanFiles() string {
	return `Removes dead code from JavaScript and TypeScript files and writes each result beside its input as <name>.cleaned.<ext>.

USE WHEN:
- Producing trimmed copies of a directory of sources
- Reducing context size before loading files into a conversation
- Applying the clean the CLI would run, from inside an assistant

INTERPRETING RESULTS:
- Inputs are never modified; outputs appear next to them
- Files that fail to parse are listed under failures and produce no output
- changed counts files where at least one construct was removed
- mean_removals and stddev_removals describe removals per file

METRICS RETURNED:
- summary: files, changed, failed, removals by kind, bytes in and out, tokens_saved
- files: per-file removal counts, passes and output path
- failures: path and error of each file that could not be cleaned`
}

func describeCheckFiles() string {
	return `Reports the dead code that clean_files would remove, without writing any files.

USE WHEN:
- Auditing a codebase for unused declarations
- Estimating how much context a clean would save
- Gating a change on the absence of dead code

INTERPRETING RESULTS:
- Same report as clean_files with dry_run set
- A file with removals > 0 contains unreferenced declarations or dangling assignments
- Rerun with fixed_point to include code that only becomes dead once other dead code is gone

METRICS RETURNED:
- summary: files, changed, failed, removals by kind, tokens_saved
- files: per-file removals with line and column
- failures: files that could not be parsed or read`
}

package models

import (
	"sort"

	"github.com/panbanda/elide/pkg/transform"
)

// ElidedImport is one removal the analysis would apply to an import.
type ElidedImport struct {
	Operation transform.OpKind `json:"operation"`
	Module    string           `json:"module"`
	Text      string           `json:"text"`                // source text of the removed node
	Statement string           `json:"statement,omitempty"` // enclosing import statement, for partial removals
	Line      int              `json:"line"`
	Column    int              `json:"column"`
}

// IsDeclaration reports whether the whole import statement goes away.
func (e ElidedImport) IsDeclaration() bool {
	return e.Operation == transform.OpRemoveDeclaration
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Path           string         `json:"path"`
	Language       string         `json:"language"`
	Imports        int            `json:"imports"`
	RemovedNodes   int            `json:"removed_nodes"` // removed by earlier passes
	Elided         []ElidedImport `json:"elided"`
	HasParseErrors bool           `json:"has_parse_errors,omitempty"`
}

// ElisionSummary provides aggregate statistics.
type ElisionSummary struct {
	TotalFiles          int            `json:"total_files"`
	FilesWithElisions   int            `json:"files_with_elisions"`
	TotalImports        int            `json:"total_imports"`
	RemovedNodes        int            `json:"removed_nodes"`
	ElidedDeclarations  int            `json:"elided_declarations"`
	PartialRemovals     int            `json:"partial_removals"`
	FilesWithParseError int            `json:"files_with_parse_errors"`
	ByOperation         map[string]int `json:"by_operation"`
}

// FileError records a file that could not be analyzed.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// ElisionResult is the full result of an elision run.
type ElisionResult struct {
	Files   []FileResult   `json:"files"`
	Errors  []FileError    `json:"errors,omitempty"`
	Summary ElisionSummary `json:"summary"`
}

// NewElisionSummary creates an initialized summary.
func NewElisionSummary() ElisionSummary {
	return ElisionSummary{
		ByOperation: make(map[string]int),
	}
}

// AddFile updates the summary with one file's result.
func (s *ElisionSummary) AddFile(f FileResult) {
	s.TotalFiles++
	s.TotalImports += f.Imports
	s.RemovedNodes += f.RemovedNodes
	if f.HasParseErrors {
		s.FilesWithParseError++
	}
	if len(f.Elided) > 0 {
		s.FilesWithElisions++
	}
	for _, e := range f.Elided {
		s.ByOperation[e.Operation.String()]++
		if e.IsDeclaration() {
			s.ElidedDeclarations++
		} else {
			s.PartialRemovals++
		}
	}
}

// NewElisionResult assembles a result from per-file results, sorted by path.
func NewElisionResult(files []FileResult, errs []FileError) *ElisionResult {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })

	r := &ElisionResult{
		Files:   files,
		Errors:  errs,
		Summary: NewElisionSummary(),
	}
	for _, f := range files {
		r.Summary.AddFile(f)
	}
	return r
}

// HasElisions reports whether any file has something to remove.
func (r *ElisionResult) HasElisions() bool {
	return r.Summary.FilesWithElisions > 0
}

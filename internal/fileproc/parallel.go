// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/panbanda/elide/pkg/parser"
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
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Sorted returns the collected errors ordered by path.
func (e *ProcessingErrors) Sorted() []ProcessingError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ProcessingError, len(e.Errors))
	copy(out, e.Errors)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x is optimal for mixed I/O and CGO workloads.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// Workers returns the worker count to use for n. Non-positive values mean
// 2x NumCPU.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// MapFiles processes files in parallel, calling fn for each file with a
// dedicated parser. Results keep the order of files; failed files are left
// out of the results and reported in the returned ProcessingErrors, which is
// nil when every file succeeded. Once ctx is done the remaining files fail
// with the context error.
func MapFiles[T any](ctx context.Context, files []string, maxWorkers int, fn func(context.Context, *parser.Parser, string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	slots := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(Workers(maxWorkers)).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}

			// Check for cancellation before processing
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			psr := parser.New()
			defer psr.Close()

			result, err := fn(ctx, psr, path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}
			slots[i] = result
			ok[i] = true
			return nil
		})
	}
	_ = p.Wait() // Context errors are already captured in errs

	results := make([]T, 0, len(files))
	for i, r := range slots {
		if ok[i] {
			results = append(results, r)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

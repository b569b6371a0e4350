package models

import (
	"encoding/json"
	"testing"

	"github.com/panbanda/elide/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElisionSummary(t *testing.T) {
	files := []FileResult{
		{
			Path:         "src/b.ts",
			Imports:      3,
			RemovedNodes: 2,
			Elided: []ElidedImport{
				{Operation: transform.OpRemoveDeclaration, Module: "rxjs"},
				{Operation: transform.OpRemoveSpecifier, Module: "@angular/core"},
			},
		},
		{Path: "src/a.ts", Imports: 1, HasParseErrors: true},
		{
			Path:    "src/c.ts",
			Imports: 2,
			Elided:  []ElidedImport{{Operation: transform.OpRemoveNamedBindings, Module: "m"}},
		},
	}

	r := NewElisionResult(files, []FileError{{Path: "z.ts"}, {Path: "y.ts"}})

	assert.Equal(t, "src/a.ts", r.Files[0].Path)
	assert.Equal(t, "src/c.ts", r.Files[2].Path)
	assert.Equal(t, "y.ts", r.Errors[0].Path)

	s := r.Summary
	assert.Equal(t, 3, s.TotalFiles)
	assert.Equal(t, 2, s.FilesWithElisions)
	assert.Equal(t, 6, s.TotalImports)
	assert.Equal(t, 2, s.RemovedNodes)
	assert.Equal(t, 1, s.ElidedDeclarations)
	assert.Equal(t, 2, s.PartialRemovals)
	assert.Equal(t, 1, s.FilesWithParseError)
	assert.Equal(t, map[string]int{
		"remove-declaration":    1,
		"remove-specifier":      1,
		"remove-named-bindings": 1,
	}, s.ByOperation)
	assert.True(t, r.HasElisions())
}

func TestEmptyResult(t *testing.T) {
	r := NewElisionResult(nil, nil)
	assert.False(t, r.HasElisions())
	assert.Zero(t, r.Summary.TotalFiles)
}

func TestElidedImportJSONUsesKindNames(t *testing.T) {
	data, err := json.Marshal(ElidedImport{Operation: transform.OpRemoveDefaultBinding, Module: "m", Line: 3})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operation":"remove-default-binding"`)
}

package elision

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/panbanda/elide/internal/cache"
	"github.com/panbanda/elide/pkg/config"
	"github.com/panbanda/elide/pkg/models"
	"github.com/panbanda/elide/pkg/parser"
	"github.com/panbanda/elide/pkg/transform"
)

const component = `import { Component, Input } from '@angular/core';
import { Store } from './store';
import * as rx from 'rxjs';
import { helper } from './helper';

@Component({ selector: 'app' })
export class AppComponent {
  @Input() name: string;
  constructor(private store: Store) {}
  run() { return helper(); }
}
`

func angularOptions() AnalyzeOptions {
	return AnalyzeOptions{
		MetadataPolicy:   "decorated",
		RemoveDecorators: []string{"Component", "Input"},
	}
}

func modules(res *models.FileResult) []string {
	var out []string
	for _, e := range res.Elided {
		out = append(out, e.Module)
	}
	return out
}

func TestNew(t *testing.T) {
	svc := New()
	if svc.config == nil || svc.logger == nil {
		t.Fatal("New() should set a default config and logger")
	}

	cfg := config.DefaultConfig()
	cfg.Elide.RemoveDecorators = []string{"Injectable"}
	cfg.Workers = 3
	opts := New(WithConfig(cfg)).DefaultOptions()
	if opts.Workers != 3 || len(opts.RemoveDecorators) != 1 || opts.MetadataPolicy != "decorated" {
		t.Errorf("DefaultOptions() = %+v", opts)
	}
}

func TestAnalyzeSourceRemovesImportsOfStrippedDecorators(t *testing.T) {
	res, ops, err := New().AnalyzeSource(context.Background(), "app.ts", []byte(component), parser.LangTypeScript, angularOptions())
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}

	if res.Imports != 4 {
		t.Errorf("Imports = %d, want 4", res.Imports)
	}
	if res.RemovedNodes != 2 {
		t.Errorf("RemovedNodes = %d, want 2", res.RemovedNodes)
	}
	if got := strings.Join(modules(res), ","); got != "@angular/core,./store,rxjs" {
		t.Errorf("elided modules = %q", got)
	}
	for _, e := range res.Elided {
		if !e.IsDeclaration() {
			t.Errorf("%s: operation = %s, want remove-declaration", e.Module, e.Operation)
		}
	}
	first := res.Elided[0]
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("first elision at %d:%d, want 1:1", first.Line, first.Column)
	}
	if !strings.HasPrefix(first.Text, "import { Component, Input }") {
		t.Errorf("Text = %q", first.Text)
	}

	// two decorator removals plus three declarations
	if len(ops) != 5 || ops.Count(transform.OpRemoveNode) != 2 {
		t.Errorf("merged operations = %v", ops)
	}
}

func TestAnalyzeSourceKeepsMetadataTypes(t *testing.T) {
	opts := angularOptions()
	opts.EmitDecoratorMetadata = true

	res, _, err := New().AnalyzeSource(context.Background(), "app.ts", []byte(component), parser.LangTypeScript, opts)
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	if got := strings.Join(modules(res), ","); got != "@angular/core,rxjs" {
		t.Errorf("elided modules = %q, want the store import kept for metadata", got)
	}
}

func TestAnalyzeSourceWithoutRemovals(t *testing.T) {
	res, ops, err := New().AnalyzeSource(context.Background(), "app.ts", []byte(component), parser.LangTypeScript, AnalyzeOptions{})
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	if len(res.Elided) != 0 || len(ops) != 0 {
		t.Errorf("nothing was removed upstream, got %v", ops)
	}
}

func TestAnalyzeSourcePartialRemoval(t *testing.T) {
	src := `import { Input, OnInit } from '@angular/core';

export class Widget implements OnInit {
  @Input() size: number;
  ngOnInit() {}
}
`
	res, _, err := New().AnalyzeSource(context.Background(), "w.ts", []byte(src), parser.LangTypeScript, AnalyzeOptions{RemoveDecorators: []string{"Input"}})
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	// OnInit only appears in an implements clause, so both specifiers go.
	if len(res.Elided) != 1 || !res.Elided[0].IsDeclaration() {
		t.Errorf("Elided = %+v", res.Elided)
	}
}

func TestAnalyzeSourceSpecifierLevel(t *testing.T) {
	src := `import { Input, EventEmitter } from '@angular/core';

export class Widget {
  @Input() size: number;
  changed = new EventEmitter();
}
`
	res, _, err := New().AnalyzeSource(context.Background(), "w.ts", []byte(src), parser.LangTypeScript, AnalyzeOptions{RemoveDecorators: []string{"Input"}})
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	if len(res.Elided) != 1 {
		t.Fatalf("Elided = %+v", res.Elided)
	}
	e := res.Elided[0]
	if e.Operation != transform.OpRemoveSpecifier || e.Text != "Input" {
		t.Errorf("elision = %+v", e)
	}
	if !strings.HasPrefix(e.Statement, "import { Input, EventEmitter }") {
		t.Errorf("Statement = %q", e.Statement)
	}
}

func TestAnalyzeSourceSwitchCaseShadowing(t *testing.T) {
	src := `import { Dec } from 'd';
import { X } from 'x';

@Dec()
export class K {
  run(v: number) {
    switch (v) {
      case 1:
        let X = 2;
        return X;
    }
    return X;
  }
}
`
	res, _, err := New().AnalyzeSource(context.Background(), "k.ts", []byte(src), parser.LangTypeScript, AnalyzeOptions{RemoveDecorators: []string{"Dec"}})
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	if got := strings.Join(modules(res), ","); got != "d" {
		t.Errorf("elided modules = %q, want only d since X is read after the switch", got)
	}
}

func TestAnalyzeSourceParameterNamedLikeItsType(t *testing.T) {
	src := `import { Dec } from 'd';
import { Foo } from './foo';

@Dec()
export class K {
  constructor(Foo: Foo) {}
}
`
	opts := AnalyzeOptions{RemoveDecorators: []string{"Dec"}, EmitDecoratorMetadata: true}
	res, _, err := New().AnalyzeSource(context.Background(), "k.ts", []byte(src), parser.LangTypeScript, opts)
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	if got := strings.Join(modules(res), ","); got != "d" {
		t.Errorf("elided modules = %q, want ./foo kept for metadata", got)
	}

	opts.EmitDecoratorMetadata = false
	res, _, err = New().AnalyzeSource(context.Background(), "k.ts", []byte(src), parser.LangTypeScript, opts)
	if err != nil {
		t.Fatalf("AnalyzeSource() error: %v", err)
	}
	if got := strings.Join(modules(res), ","); got != "d,./foo" {
		t.Errorf("elided modules = %q, want both", got)
	}
}

func TestAnalyzeInvalidPolicy(t *testing.T) {
	_, _, err := New().AnalyzeSource(context.Background(), "a.ts", nil, parser.LangTypeScript, AnalyzeOptions{MetadataPolicy: "sometimes"})
	if err == nil || !strings.Contains(err.Error(), "unknown metadata policy") {
		t.Errorf("AnalyzeSource() error = %v", err)
	}
	if _, err := New().AnalyzeFiles(context.Background(), []string{"a.ts"}, AnalyzeOptions{MetadataPolicy: "sometimes"}); err == nil {
		t.Error("AnalyzeFiles() should reject an unknown policy")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "b.ts", component),
		writeFile(t, dir, "a.ts", "import { x } from 'x';\nconsole.log(x);\n"),
		filepath.Join(dir, "missing.ts"),
		writeFile(t, dir, "notes.md", "# notes\n"),
	}

	result, err := New().AnalyzeFiles(context.Background(), files, angularOptions())
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}

	if len(result.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(result.Files))
	}
	if filepath.Base(result.Files[0].Path) != "a.ts" {
		t.Errorf("results should be sorted by path, got %s first", result.Files[0].Path)
	}
	if len(result.Files[0].Elided) != 0 {
		t.Errorf("a.ts has no removals, got %+v", result.Files[0].Elided)
	}
	if result.Summary.ElidedDeclarations != 3 || !result.HasElisions() {
		t.Errorf("Summary = %+v", result.Summary)
	}

	if len(result.Errors) != 2 {
		t.Fatalf("Errors = %+v, want 2", result.Errors)
	}
	for _, e := range result.Errors {
		switch filepath.Base(e.Path) {
		case "missing.ts", "notes.md":
		default:
			t.Errorf("unexpected error for %s: %s", e.Path, e.Error)
		}
	}
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.ts", component)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New().AnalyzeFiles(ctx, []string{path}, angularOptions())
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}
	if len(result.Files) != 0 || len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Error, context.Canceled.Error()) {
		t.Errorf("result = %+v", result)
	}
}

func TestAnalyzeFilesUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.ts", component)

	c, err := cache.New(filepath.Join(dir, ".cache"), 24, true)
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := New(WithCache(c), WithLogger(logger))

	first, err := svc.AnalyzeFiles(context.Background(), []string{path}, angularOptions())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs.String(), "cache hit") {
		t.Fatal("first run should not hit the cache")
	}

	second, err := svc.AnalyzeFiles(context.Background(), []string{path}, angularOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "cache hit") {
		t.Error("second run should hit the cache")
	}
	if first.Summary.ElidedDeclarations != second.Summary.ElidedDeclarations {
		t.Errorf("cached summary %+v differs from %+v", second.Summary, first.Summary)
	}

	logs.Reset()
	opts := angularOptions()
	opts.EmitDecoratorMetadata = true
	if _, err := svc.AnalyzeFiles(context.Background(), []string{path}, opts); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs.String(), "cache hit") {
		t.Error("changed options should miss the cache")
	}
}

func TestAnalyzeFilesReportsUnsupportedLanguage(t *testing.T) {
	svc := New()
	p, err := newPlan(AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	psr := parser.New()
	defer psr.Close()

	_, err = svc.analyzeFile(context.Background(), psr, "style.css", p)
	if !errors.Is(err, parser.ErrUnsupportedLanguage) {
		t.Errorf("analyzeFile() error = %v, want ErrUnsupportedLanguage", err)
	}
}

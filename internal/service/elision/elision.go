// Package elision runs the import elision pipeline over source files:
// parse, bind, upstream removal passes, elision, merge.
package elision

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/panbanda/elide/internal/cache"
	"github.com/panbanda/elide/internal/fileproc"
	"github.com/panbanda/elide/pkg/analyzer/elide"
	"github.com/panbanda/elide/pkg/ast"
	"github.com/panbanda/elide/pkg/config"
	"github.com/panbanda/elide/pkg/models"
	"github.com/panbanda/elide/pkg/parser"
	"github.com/panbanda/elide/pkg/passes"
	"github.com/panbanda/elide/pkg/semantic"
	"github.com/panbanda/elide/pkg/transform"
)

// Service orchestrates elision runs.
type Service struct {
	config *config.Config
	logger *slog.Logger
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithCache enables result caching.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates a new elision service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeOptions configures one run.
type AnalyzeOptions struct {
	EmitDecoratorMetadata bool
	MetadataPolicy        string
	RemoveDecorators      []string
	Workers               int
	OnProgress            func()
}

// DefaultOptions returns the run options the service configuration implies.
func (s *Service) DefaultOptions() AnalyzeOptions {
	return AnalyzeOptions{
		EmitDecoratorMetadata: s.config.Elide.EmitDecoratorMetadata,
		MetadataPolicy:        s.config.Elide.MetadataPolicy,
		RemoveDecorators:      s.config.Elide.RemoveDecorators,
		Workers:               s.config.Workers,
	}
}

// plan is the per-run state shared by every file.
type plan struct {
	analyzer    *elide.Analyzer
	decorators  []string
	fingerprint uint64
}

func newPlan(opts AnalyzeOptions) (*plan, error) {
	policy, err := elide.PolicyByName(opts.MetadataPolicy)
	if err != nil {
		return nil, err
	}
	return &plan{
		analyzer: elide.New(
			elide.WithDecoratorMetadata(opts.EmitDecoratorMetadata),
			elide.WithMetadataPolicy(policy),
		),
		decorators: opts.RemoveDecorators,
		fingerprint: cache.Fingerprint(
			strconv.FormatBool(opts.EmitDecoratorMetadata),
			opts.MetadataPolicy,
			strings.Join(opts.RemoveDecorators, ","),
		),
	}, nil
}

// AnalyzeFiles runs the pipeline on every file. Failures of individual files
// are reported in the result and do not stop the others; the returned error
// is non-nil only for invalid options.
func (s *Service) AnalyzeFiles(ctx context.Context, files []string, opts AnalyzeOptions) (*models.ElisionResult, error) {
	p, err := newPlan(opts)
	if err != nil {
		return nil, err
	}

	results, errs := fileproc.MapFiles(ctx, files, opts.Workers, func(ctx context.Context, psr *parser.Parser, path string) (models.FileResult, error) {
		res, err := s.analyzeFile(ctx, psr, path, p)
		if err != nil {
			return models.FileResult{}, err
		}
		return *res, nil
	}, opts.OnProgress)

	var fileErrs []models.FileError
	if errs != nil {
		for _, e := range errs.Sorted() {
			s.logger.Debug("file failed", "path", e.Path, "error", e.Err)
			fileErrs = append(fileErrs, models.FileError{Path: e.Path, Error: e.Err.Error()})
		}
	}
	return models.NewElisionResult(results, fileErrs), nil
}

func (s *Service) analyzeFile(ctx context.Context, psr *parser.Parser, path string, p *plan) (*models.FileResult, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return nil, fmt.Errorf("%w for file: %s", parser.ErrUnsupportedLanguage, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if res, ok := s.cache.Lookup(path, source, p.fingerprint); ok {
		s.logger.Debug("cache hit", "path", path)
		return res, nil
	}

	res, _, err := run(ctx, psr, path, source, lang, p)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Store(path, source, p.fingerprint, res); err != nil {
		s.logger.Debug("cache store failed", "path", path, "error", err)
	}
	return res, nil
}

// AnalyzeSource runs the pipeline on in-memory source. It also returns the
// merged operations so callers can apply them to the tree.
func (s *Service) AnalyzeSource(ctx context.Context, path string, source []byte, lang parser.Language, opts AnalyzeOptions) (*models.FileResult, transform.Operations, error) {
	p, err := newPlan(opts)
	if err != nil {
		return nil, nil, err
	}
	psr := parser.New()
	defer psr.Close()
	return run(ctx, psr, path, source, lang, p)
}

func run(ctx context.Context, psr *parser.Parser, path string, source []byte, lang parser.Language, p *plan) (*models.FileResult, transform.Operations, error) {
	parsed, err := psr.Parse(ctx, source, lang, path)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	tree := parsed.Tree

	pre := passes.RemoveDecorators(tree, p.decorators)
	ops, err := p.analyzer.Analyze(tree, pre.Targets(), semantic.Bind(tree))
	if err != nil {
		return nil, nil, fmt.Errorf("analyzing %s: %w", path, err)
	}
	merged := transform.Merge(tree, pre, ops)

	return &models.FileResult{
		Path:           path,
		Language:       string(lang),
		Imports:        len(ast.FindKind(tree, tree.Root, ast.KindImportDeclaration)),
		RemovedNodes:   len(pre),
		Elided:         describe(tree, merged),
		HasParseErrors: parsed.HasErrors,
	}, merged, nil
}

// describe turns the import operations of a merged list into report entries.
func describe(tree *ast.Tree, ops transform.Operations) []models.ElidedImport {
	var out []models.ElidedImport
	for _, op := range ops {
		if op.Declaration == ast.NoNode {
			continue
		}
		line, col := tree.Position(op.Target)
		e := models.ElidedImport{
			Operation: op.Kind,
			Module:    tree.Node(op.Declaration).Name,
			Text:      tree.Text(op.Target),
			Line:      line,
			Column:    col,
		}
		if op.Kind.IsSpecifierLevel() {
			e.Statement = tree.Text(op.Declaration)
		}
		out = append(out, e)
	}
	return out
}

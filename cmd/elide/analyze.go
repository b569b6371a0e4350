package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/panbanda/elide/internal/cache"
	"github.com/panbanda/elide/internal/output"
	"github.com/panbanda/elide/internal/progress"
	"github.com/panbanda/elide/internal/scanner"
	"github.com/panbanda/elide/internal/service/elision"
	"github.com/panbanda/elide/pkg/models"
	"github.com/urfave/cli/v2"
)

// errElisions is returned by --fail-on-elision when something would be removed.
var errElisions = errors.New("imports would be elided")

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Report imports left unused after upstream removals",
		ArgsUsage: "[path...]",
		Flags: append(outputFlags(),
			&cli.BoolFlag{
				Name:  "emit-decorator-metadata",
				Usage: "Treat type annotations emitted as decorator metadata as value uses",
			},
			&cli.StringSliceFlag{
				Name:  "remove-decorator",
				Usage: "Strip decorators with this name before elision (repeatable)",
			},
			&cli.StringFlag{
				Name:  "metadata-policy",
				Usage: "Which annotations emit metadata: decorated, any, none",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of parallel workers (0 = 2x CPUs)",
			},
			&cli.BoolFlag{
				Name:  "fail-on-elision",
				Usage: "Exit non-zero when any import would be elided",
			},
		),
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg := loaded.Config
	logger := newLogger(os.Stderr, c.Bool("verbose") || cfg.Output.Verbose)
	if loaded.Source != "" {
		logger.Debug("loaded config", "path", loaded.Source)
	}

	svcOpts := []elision.Option{elision.WithConfig(cfg), elision.WithLogger(logger)}
	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		ch, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, elision.WithCache(ch))
	}
	svc := elision.New(svcOpts...)

	opts := svc.DefaultOptions()
	if c.IsSet("emit-decorator-metadata") {
		opts.EmitDecoratorMetadata = c.Bool("emit-decorator-metadata")
	}
	if c.IsSet("remove-decorator") {
		opts.RemoveDecorators = c.StringSlice("remove-decorator")
	}
	if c.IsSet("metadata-policy") {
		opts.MetadataPolicy = c.String("metadata-policy")
	}
	if c.IsSet("workers") {
		opts.Workers = c.Int("workers")
	}

	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	formatter, err := output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color,
		output.WithStdout(c.App.Writer), output.WithNotices(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer formatter.Close()

	scan := scanner.NewScanner(cfg)
	files, err := scan.ScanPaths(getPaths(c))
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	if len(files) == 0 {
		formatter.Warning("No source files found")
		return nil
	}
	for lang, group := range scan.GroupByLanguage(files) {
		logger.Debug("scanned", "language", lang, "files", len(group))
	}
	if len(opts.RemoveDecorators) == 0 {
		formatter.Warning("No decorators are removed; nothing can become unused (see --remove-decorator)")
	}

	tracker := progress.NewTracker("Analyzing imports...", len(files))
	opts.OnProgress = tracker.Tick
	result, err := svc.AnalyzeFiles(c.Context, files, opts)
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	if err := formatter.Output(buildReport(result, formatter.Colored())); err != nil {
		return err
	}

	if c.Bool("fail-on-elision") && result.HasElisions() {
		return errElisions
	}
	return nil
}

// buildReport lays out an elision result for the text and markdown
// renderers. JSON and TOON output serialize the result itself.
func buildReport(result *models.ElisionResult, colored bool) *output.Report {
	rows := make([][]string, 0, result.Summary.ElidedDeclarations+result.Summary.PartialRemovals)
	for _, f := range result.Files {
		for _, e := range f.Elided {
			op := e.Operation.String()
			if colored {
				op = output.KindColor(e.IsDeclaration(), op)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%s:%d:%d", f.Path, e.Line, e.Column),
				e.Module,
				op,
				truncate(strings.Join(strings.Fields(e.Text), " "), 60),
			})
		}
	}

	s := result.Summary
	sections := []output.Renderable{
		output.NewTable(
			"Elided Imports",
			[]string{"Location", "Module", "Operation", "Removed"},
			rows,
		),
		&output.Section{
			Title: "Summary",
			Content: fmt.Sprintf(
				"Files analyzed: %d\nFiles with elisions: %d\nImport declarations: %d\nNodes removed upstream: %d\nDeclarations elided: %d\nPartial removals: %d",
				s.TotalFiles, s.FilesWithElisions, s.TotalImports, s.RemovedNodes, s.ElidedDeclarations, s.PartialRemovals,
			),
		},
	}
	if s.FilesWithParseError > 0 {
		sections = append(sections, &output.Section{
			Title:   "Warnings",
			Content: fmt.Sprintf("%d files had syntax errors; their results may be incomplete", s.FilesWithParseError),
		})
	}
	if len(result.Errors) > 0 {
		errRows := make([][]string, len(result.Errors))
		for i, e := range result.Errors {
			errRows[i] = []string{e.Path, e.Error}
		}
		sections = append(sections, output.NewTable("Errors", []string{"Path", "Error"}, errRows))
	}

	return &output.Report{
		Title:    "Import Elision",
		Sections: sections,
		Data:     result,
	}
}

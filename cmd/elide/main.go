package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/panbanda/elide/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "elide",
		Usage:    "Find imports that become unused after decorator removal",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Elide reports the import declarations and specifiers of TypeScript and
JavaScript files that are left without a value use once upstream passes
(such as decorator removal) have stripped nodes from the tree.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"ELIDE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: startProfile,
		After:  stopProfile,
		Commands: []*cli.Command{
			analyzeCmd(),
			configCmd(),
			initCmd(),
		},
	}
}

func startProfile(c *cli.Context) error {
	prefix := c.String("pprof")
	if prefix == "" {
		return nil
	}
	cpuFile, err := os.Create(prefix + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		cpuFile.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	c.App.Metadata["pprofCPU"] = cpuFile
	return nil
}

func stopProfile(c *cli.Context) error {
	prefix := c.String("pprof")
	if prefix == "" {
		return nil
	}
	pprof.StopCPUProfile()
	if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
		cpuFile.Close()
		color.Green("CPU profile written to %s.cpu.pprof", prefix)
	}

	memFile, err := os.Create(prefix + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	color.Green("Memory profile written to %s.mem.pprof", prefix)
	return nil
}

// loadConfig loads the file named by --config, or searches the default
// locations when the flag is unset.
func loadConfig(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

// newLogger returns the diagnostics logger: debug level on stderr with
// --verbose (or output.verbose), warnings only otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

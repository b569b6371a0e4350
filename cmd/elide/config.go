package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/elide/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Checks a configuration file against the schema and for invalid values.

Examples:
  elide config validate                   # Validates default config locations
  elide -c elide.toml config validate     # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yaml",
						Usage: "Print YAML instead of TOML",
					},
				},
				Action: runConfigShow,
			},
		},
	}
}

func runConfigValidate(c *cli.Context) error {
	result, err := loadConfig(c)
	if err == nil && result.Source != "" {
		err = config.ValidateFile(result.Source)
	}
	if err != nil {
		color.Red("Configuration validation failed:")
		fmt.Fprintf(c.App.Writer, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.Green("Configuration valid: %s", result.Source)
	} else {
		color.Yellow("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := loadConfig(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	var content []byte
	if c.Bool("yaml") {
		content, err = yaml.Marshal(result.Config)
	} else {
		content, err = toml.Marshal(result.Config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(content)
	return err
}

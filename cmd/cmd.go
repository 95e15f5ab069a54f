// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/scdig/internal/formatter"
	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
			Value: "info",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Append logs to this file instead of stderr",
		},
	}
}

// digCommand processes a saved playlist page
func digCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "dig",
		Usage:     "Collect store links for every track of a saved playlist page",
		ArgsUsage: "<html_file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "html_file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"e"},
				Usage:   "Summary format (json, yaml, none)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Summary file path (default: " + formatter.DefaultBaseName + ".<ext>)",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Usage: "Minimum spacing between track fetches",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout",
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Retries after the first attempt for transient failures",
			},
			&cli.DurationFlag{
				Name:  "backoff",
				Usage: "Base back-off between retries",
			},
			&cli.IntFlag{
				Name:  "max-tracks",
				Usage: "Process at most N tracks (0 processes all)",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Reuse and store results in the local cache database",
			},
		},
		Action: r.Dig,
	}
}

// openCommand opens links of a summary file
func openCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open links from a summary file in the browser",
		ArgsUsage: "<summary_file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "summary_file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "category",
				Usage: "Category to open, or all (prompts when omitted)",
			},
			&cli.StringFlag{
				Name:  "browser",
				Usage: "Browser to use (default, chrome, firefox, edge, safari, opera)",
			},
			&cli.BoolFlag{
				Name:  "no-open",
				Usage: "Only print category counts",
			},
			&cli.IntFlag{
				Name:  "skip",
				Usage: "Skip the first N links",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Open at most N links (all when omitted)",
			},
		},
		Action: r.Open,
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a configuration file from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (default: the --config path)",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the cache database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// cacheCommand inspects and clears the result cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local result cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache statistics",
				Action: r.CacheStats,
			},
			{
				Name:  "list",
				Usage: "List cached tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only tracks with a link in this category",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached track",
				Action: r.CacheClear,
			},
			{
				Name:  "runs",
				Usage: "List recorded runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs",
						Value: 20,
					},
				},
				Action: r.CacheRuns,
			},
		},
	}
}

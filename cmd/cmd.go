// submodule cmd contains command definitions
package main

import (
	"strconv"

	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "likesync",
		Usage:   "Copy liked songs from one Spotify account to another, oldest first",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Run batching and delays without sending any writes",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

// setupCommand handles setup operations for configuration and the run database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the default template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file with defaults",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the run history database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the newest applied migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// likesCommand handles read-only operations on the source account.
func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "likes",
		Usage: "Read the source account's liked songs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print liked songs oldest first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LikesList,
			},
			{
				Name:  "export",
				Usage: "Write liked songs to a timestamped export file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (tsv, csv, json)",
						Value:   "tsv",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"o"},
						Usage:   "Output directory (defaults to export.dir)",
					},
				},
				Action: r.LikesExport,
			},
		},
	}
}

func replayFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Read tracks from an export file instead of fetching the source account",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Skip the confirmation prompt",
		},
		&cli.BoolFlag{
			Name:  "export",
			Usage: "Save the fetched list to an export file before replaying",
			Value: true,
		},
	}
}

// transferCommand handles replays onto the destination account.
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Replay liked songs onto the destination account",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Like every song on the destination account, oldest first, one at a time",
				Flags: append(replayFlags(),
					&cli.FloatFlag{
						Name:  "delay",
						Usage: "Seconds to wait between adds (prompted when not set)",
					},
				),
				Action: r.TransferAdd,
			},
			{
				Name:  "delete",
				Usage: "Remove the source account's liked songs from the destination account",
				Flags: append(replayFlags(),
					&cli.IntFlag{
						Name:    "batch-size",
						Aliases: []string{"b"},
						Usage:   "Tracks per request (1-" + strconv.Itoa(shared.MaxBatchSize) + ", defaults to transfer.delete_batch_size)",
					},
				),
				Action: r.TransferDelete,
			},
			{
				Name:   "run",
				Usage:  "Ask which replay to run, then run it",
				Flags:  replayFlags(),
				Action: r.TransferRun,
			},
		},
	}
}

// historyCommand lists recorded replay runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded replay runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only show runs with this status (pending, in_progress, completed, aborted)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// tuiCommand returns the top-level TUI command for interactive replays.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for liked song replays",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "op",
				Usage: "Replay to run from the TUI (add or delete)",
				Value: "add",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File receiving logs while the TUI is open",
				Value: "./tmp/likesync-tui.log",
			},
		},
		Action: r.TUI,
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/commands"
	"github.com/hyeonlog/jangteo/internal/core/config"
	"github.com/hyeonlog/jangteo/internal/printer"
	"github.com/hyeonlog/jangteo/internal/store/jsonfile"
	"github.com/hyeonlog/jangteo/pkg/deferred"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func main() {
	if err := setupLogger("info", "", nil); err != nil {
		panic(err)
	}

	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	var (
		p     = printer.New(os.Stderr)
		ctx   = printer.NewContext(context.Background(), p)
		flags = &commands.Flags{}
	)

	var deferredLogs *deferred.Writer

	app := &cli.Command{
		Name:      "jangteo",
		Usage:     "Terminal client for the jangteo marketplace",
		UsageText: "jangteo [global options] command [command options]",
		Description: `Jangteo is a consumer-to-consumer marketplace: fixed-price posts,
timed auctions, and buyer/seller chat.

Listing and auction views update live over the push channel when logged
in; without credentials everything still works fetch-only.

Run 'jangteo' with no arguments to open the interactive chat view.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("JANGTEO_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (optional)",
				Sources:     cli.EnvVars("JANGTEO_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("JANGTEO_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("JANGTEO_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Detect TUI mode: no subcommand means the chat view, and the
			// chat and watch commands also run full-screen
			isTUI := tuiInvocation(c.Args().Slice())

			// In TUI mode, buffer logs to display after exit
			var deferredOut io.Writer
			if isTUI {
				deferredLogs = &deferred.Writer{}
				deferredOut = deferredLogs
			}

			if err := setupLogger(flags.LogLevel, flags.LogFile, deferredOut); err != nil {
				return ctx, err
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			creds := jsonfile.NewCredStore(cfg.CredentialsFile())
			flags.Creds = creds

			client, err := api.New(cfg.APIBaseURL, api.WithCredentials(creds))
			if err != nil {
				return ctx, fmt.Errorf("build api client: %w", err)
			}
			flags.API = client

			return ctx, nil
		},
	}

	chatCmd := commands.NewChatCmd(flags)

	app = commands.NewLoginCmd(flags).Register(app)
	app = commands.NewPostsCmd(flags).Register(app)
	app = commands.NewAuctionsCmd(flags).Register(app)
	app = chatCmd.Register(app)

	// Set the chat view as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'jangteo --help' for usage", c.Args().First())
		}
		return chatCmd.RunTUI(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		printer.Ctx(ctx).FatalError(err)
		exitCode = 1
	}

	// Flush deferred logs to console after TUI exits
	if deferredLogs != nil {
		if err := deferredLogs.Flush(zerolog.ConsoleWriter{Out: os.Stderr}); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush logs: %v\n", err)
		}
	}

	os.Exit(exitCode)
}

// tuiInvocation reports whether the invocation opens a full-screen view,
// which requires log output to be buffered until exit.
func tuiInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "chat":
		return len(args) == 1 || strings.HasPrefix(args[1], "-")
	case "auctions":
		return len(args) > 1 && args[1] == "watch"
	default:
		return false
	}
}

func setupLogger(level string, logFile string, deferredOut io.Writer) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	var output io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if logFile != "" {
		// Create log directory if it doesn't exist
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		// Open log file
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		if deferredOut != nil {
			// TUI mode with explicit log file - write to both file and deferred buffer
			output = io.MultiWriter(file, deferredOut)
		} else {
			// Write to both console and file
			output = io.MultiWriter(
				zerolog.ConsoleWriter{Out: os.Stderr},
				file,
			)
		}
	} else if deferredOut != nil {
		// TUI mode without log file - buffer for display after exit
		output = deferredOut
	}

	log.Logger = log.Output(output).Level(parsedLevel)

	return nil
}

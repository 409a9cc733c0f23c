package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	logger      *log.Logger
	output      io.Writer
	prompt      *Prompter
	httpClient  *http.Client
	source      tasks.Library
	destination tasks.Library
	sleeper     tasks.Sleeper
	now         func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Source and Destination replace the clients built from the configured tokens.
// Ask replaces the terminal prompts.
type RunnerOpts struct {
	Config      *shared.Config
	Logger      *log.Logger
	Output      io.Writer
	Ask         AskFunc
	HTTPClient  *http.Client
	Source      tasks.Library
	Destination tasks.Library
	Sleeper     tasks.Sleeper
	Now         func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:      opts.Config,
		logger:      opts.Logger,
		output:      opts.Output,
		prompt:      NewPrompter(opts.Ask),
		httpClient:  opts.HTTPClient,
		source:      opts.Source,
		destination: opts.Destination,
		sleeper:     opts.Sleeper,
		now:         opts.Now,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, likesCommand, transferCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file named by --config and applies the global flags.
//
// A missing file leaves the current config (defaults unless one was injected) in place.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else if cmd.IsSet("config") {
		r.logger.Warn("config file not found, using defaults", "path", path)
	}

	r.config.ApplyEnv()

	if cmd.Bool("dry-run") {
		r.config.Transfer.Testing = true
	}

	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// sourceLibrary returns the client for the account likes are read from.
func (r *Runner) sourceLibrary() (tasks.Library, error) {
	if r.source != nil {
		return r.source, nil
	}
	client, err := r.newClient("source", r.config.Credentials.SourceToken)
	if err != nil {
		return nil, err
	}
	r.source = client
	return client, nil
}

// destinationLibrary returns the client for the account likes are written to.
func (r *Runner) destinationLibrary() (tasks.Library, error) {
	if r.destination != nil {
		return r.destination, nil
	}
	client, err := r.newClient("destination", r.config.Credentials.DestinationToken)
	if err != nil {
		return nil, err
	}
	r.destination = client
	return client, nil
}

func (r *Runner) newClient(account, token string) (*services.LibraryClient, error) {
	client, err := services.NewLibraryClient(
		r.config.API.BaseURL,
		r.config.API.Market,
		token,
		services.WithHTTPClient(r.httpClient),
		services.WithLogger(shared.WithLogger(r.logger, "account", account)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s account: %w (set credentials.%s_token or LIKESYNC_%s_TOKEN)", account, err, account, strings.ToUpper(account))
	}
	return client, nil
}

// newEngine builds an engine; a recorder is attached when the run database can be opened.
//
// The returned func releases the database.
func (r *Runner) newEngine(record bool) (*tasks.Engine, func()) {
	opts := []tasks.Option{tasks.WithLogger(r.logger)}
	if r.sleeper != nil {
		opts = append(opts, tasks.WithSleeper(r.sleeper))
	}

	closer := func() {}
	if record {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			r.logger.Warn("run history disabled", "error", err)
		} else {
			opts = append(opts, tasks.WithRecorder(repositories.NewRunRecorder(repositories.NewRunRepository(db))))
			closer = func() { db.Close() }
		}
	}

	return tasks.NewEngine(opts...), closer
}

func (r *Runner) fetchOpts() tasks.FetchOpts {
	return tasks.FetchOpts{PageSize: r.config.Transfer.PageSize, RateLimit: r.config.Transfer.RateLimit}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/services"
	"github.com/desertthunder/scdig/internal/shared"
	"github.com/desertthunder/scdig/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	openURL    func(browser, url string) error
	pick       func(s *models.Summary, skip, limit int) (string, bool, error)
	newFetcher func(opts services.FetchOpts) services.Fetcher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader

	// OpenURL opens a link in a browser, [shared.OpenBrowser] when nil.
	OpenURL func(browser, url string) error
	// Pick asks for a category interactively, [ui.PickCategory] when nil.
	Pick func(s *models.Summary, skip, limit int) (string, bool, error)
	// NewFetcher builds the track page fetcher, a [services.PageFetcher] when nil.
	NewFetcher func(opts services.FetchOpts) services.Fetcher
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		openURL:    opts.OpenURL,
		pick:       opts.Pick,
		newFetcher: opts.NewFetcher,
	}

	if r.pick == nil {
		r.pick = func(s *models.Summary, skip, limit int) (string, bool, error) {
			return ui.PickCategory(s, skip, limit, r.input, r.output)
		}
	}
	if r.newFetcher == nil {
		r.newFetcher = func(fo services.FetchOpts) services.Fetcher {
			return services.NewPageFetcher(fo, r.httpClient, r.logger)
		}
	}
	return r
}

// Before applies the global flags: log destination and level, then the configuration file.
//
// A missing config file at the default path is not an error; defaults apply.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := shared.ParseLogLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	if path := cmd.String("log-file"); path != "" {
		logger, err := shared.NewFileLogger(path)
		if err != nil {
			return ctx, err
		}
		r.SetLogger(logger)
	}
	shared.SetLogLevel(r.logger, level)

	path := cmd.String("config")
	r.configPath = path
	if path == "" {
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	switch {
	case err == nil:
		r.config = config
		r.logger.Debug("loaded config", "path", path)
	case errors.Is(err, shared.ErrMissingConfig) && !cmd.IsSet("config"):
		r.logger.Debug("no config file, using defaults", "path", path)
	default:
		return ctx, err
	}
	return ctx, nil
}

// SetLogger replaces the runner's logger
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		digCommand, openCommand, setupCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

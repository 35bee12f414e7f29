package cmd

import (
	"net/http"
	"os"
	"time"

	"github.com/kleeedolinux/goa-cli/internal/config"
	"github.com/kleeedolinux/goa-cli/internal/logging"
	"github.com/kleeedolinux/goa-cli/internal/update"
	"github.com/mattn/go-isatty"
)

// Dependencies holds the services shared by every command. It is the only
// place where concrete engine types are wired together; tests replace it
// wholesale through SetDeps.
type Dependencies struct {
	Config *config.Config
	Logger logging.Logger

	// Schedule gates the implicit version check. It lives as long as the
	// process.
	Schedule   *update.Schedule
	Checker    *update.Checker
	Reconciler *update.Reconciler

	// NewUpdater builds the self-updater for the running binary.
	NewUpdater func() (*update.Updater, error)

	// Interactive reports whether prompts and colors may be used.
	Interactive bool
	Prompter    Prompter
}

var deps *Dependencies

// InitDependencies wires the default dependencies from cfg.
func InitDependencies(cfg *config.Config) *Dependencies {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	client := &http.Client{Timeout: cfg.Update.Timeout}
	checker := update.NewChecker(update.NewHTTPFetcher(cfg.Update.URL, client), cfg.Update.Timeout)
	schedule := update.NewSchedule(cfg.Update.Interval, time.Now)

	d := &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Schedule:   schedule,
		Checker:    checker,
		Reconciler: update.NewReconciler(checker, schedule, logger),
		NewUpdater: func() (*update.Updater, error) {
			exe, err := os.Executable()
			if err != nil {
				return nil, err
			}
			return update.NewUpdater(exe, &http.Client{Timeout: 2 * time.Minute}), nil
		},
		Interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
		Prompter:    huhPrompter{},
	}

	deps = d
	return d
}

// GetDeps returns the current dependencies, or nil before initialization.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Package cmd provides the goa command-line interface.
//
// Configuration System:
//
//	CLI settings come from several sources with clear precedence:
//	1. Command-line flags (--log-level, ...) - highest priority
//	2. GOA_* environment variables (GOA_LOG_LEVEL, GOA_UPDATE_CHECK, ...)
//	3. The file named by --config or GOA_CONFIG_FILE
//	4. .goa.yml in the working directory or in $XDG_CONFIG_HOME/goa
//	5. Built-in defaults - lowest priority
//
// The project's own config.json is separate: it is found by walking up
// from the working directory (or --project) and only describes where the
// app, API and component directories live.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kleeedolinux/goa-cli/internal/config"
	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/project"
	"github.com/kleeedolinux/goa-cli/internal/update"
	"github.com/kleeedolinux/goa-cli/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// annotationSkipNotice marks commands after which no update notice is
// printed.
const annotationSkipNotice = "goa.skip-update-notice"

var (
	cfgFile    string
	projectDir string
	// configErr holds a failure to read an explicitly requested config file.
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goa",
	Short: "Scaffold routes and components for Go on Airplanes projects",
	Long: `goa creates, deletes and lists the routes and components of a
Go on Airplanes project. It works directly on the project tree: there is no
index to keep in sync.

Quick Start:
  goa route api new users/[id]    Create an API handler
  goa route page new about        Create a page
  goa component new card          Create a component
  goa project list                List everything in the project

Documentation: https://github.com/kleeedolinux/goa-cli`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: notifyUpdate,
}

// Execute adds all child commands to the root command and runs it. The
// error, if any, has already been printed.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		printError(rootCmd, err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("goa {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .goa.yml, can also use GOA_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", "", "project directory (default: search upward from the working directory)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points the global viper at the CLI settings file and enables
// GOA_* environment overrides.
//
// Config file priority (highest to lowest):
//  1. --config flag
//  2. GOA_CONFIG_FILE environment variable
//  3. .goa.yml in the working directory, then in $XDG_CONFIG_HOME/goa
//
// A missing default file is not an error; a missing or malformed file that
// was asked for explicitly is reported when the command runs.
func initConfig() {
	configErr = nil
	config.SetDefaults(viper.GetViper())

	explicit := cfgFile
	if explicit == "" {
		explicit = os.Getenv("GOA_CONFIG_FILE")
	}

	if explicit != "" {
		viper.SetConfigFile(explicit)
	} else {
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "goa"))
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".goa")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			configErr = goaerrors.WrapConfig(err, goaerrors.CodeConfigInvalid, "failed to read config file")
		}
	}
}

// setup loads the settings and wires dependencies on first use. Tests
// install their own dependencies through SetDeps beforehand.
func setup(cmd *cobra.Command, args []string) error {
	if GetDeps() != nil {
		return nil
	}

	if configErr != nil {
		return configErr
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	d := InitDependencies(cfg)
	if used := viper.ConfigFileUsed(); used != "" {
		d.Logger.Debug(cmd.Context(), "using config file", "path", used)
	}

	applyStagedUpdate(cmd.Context(), d)
	return nil
}

// applyStagedUpdate finishes a binary swap staged by a previous
// "self update" on Windows.
func applyStagedUpdate(ctx context.Context, d *Dependencies) {
	if d.NewUpdater == nil {
		return
	}

	u, err := d.NewUpdater()
	if err != nil {
		d.Logger.Debug(ctx, "self-updater unavailable", "error", err.Error())
		return
	}

	applied, err := u.ApplyStaged()
	if err != nil {
		d.Logger.Warn(ctx, err, "failed to apply staged update")
		return
	}
	if applied {
		d.Logger.Info(ctx, "applied staged update", "binary", u.BinaryPath())
	}
}

// notifyUpdate prints a notice to stderr when the time-gated version check
// finds a newer release. It never fails the command.
func notifyUpdate(cmd *cobra.Command, args []string) {
	d := GetDeps()
	if d == nil || d.Reconciler == nil || !d.Config.Update.Check || skipsNotice(cmd) {
		return
	}

	local, err := update.ParseVersionTag(version.Version)
	if err != nil {
		d.Logger.Debug(cmd.Context(), "skipping update check for unversioned build", "version", version.Version)
		return
	}

	decision := d.Reconciler.Notify(cmd.Context(), local)
	if !decision.Available {
		return
	}

	p := newPrinter(cmd.ErrOrStderr())
	p.warn("goa %s is available (current %s), run `goa self update`", decision.Remote, local)
}

func skipsNotice(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationSkipNotice] == "true" {
			return true
		}
	}
	return false
}

// openProject locates the project for the current invocation.
func openProject(cmd *cobra.Command) (*project.Layout, error) {
	start := projectDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, goaerrors.WrapIO(err, goaerrors.CodeScanFailed, "cannot determine working directory")
		}
		start = wd
	}

	layout, err := project.Open(start)
	if err != nil {
		return nil, err
	}

	if d := GetDeps(); d != nil {
		d.Logger.Debug(cmd.Context(), "project opened", "root", layout.Root, "module", layout.ModulePath)
	}
	return layout, nil
}

func printError(cmd *cobra.Command, err error) {
	p := newPrinter(cmd.ErrOrStderr())
	fmt.Fprintf(p.w, "%s %s\n", p.render(styleError, "Error:"), err)

	for _, s := range goaerrors.Suggestions(err) {
		p.note("  hint: %s", s.Title)
		if s.Command != "" {
			p.note("        %s", s.Command)
		}
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/project"
	"github.com/kleeedolinux/goa-cli/internal/scanner"
	"github.com/kleeedolinux/goa-cli/internal/watcher"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Inspect the current project",
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List API routes, page routes and components",
	Long: `List every API route, page route and component found in the project tree.

The inventory is rebuilt from the filesystem on every run. Use --watch to
re-print it whenever files under the app directory change.

Examples:
  goa project list
  goa project list --format json
  goa project list --watch`,
	Args: cobra.NoArgs,
	RunE: runProjectList,
}

var (
	listOutput *OutputFlags
	listWatch  bool
	listDelay  time.Duration
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)

	listOutput = AddOutputFlags(projectListCmd, "table", "table", "json", "yaml")
	projectListCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "Re-list after every change until interrupted")
	projectListCmd.Flags().DurationVar(&listDelay, "debounce", 300*time.Millisecond, "Quiet period before a change triggers a re-list")
}

func runProjectList(cmd *cobra.Command, args []string) error {
	if err := listOutput.Validate(); err != nil {
		return err
	}

	layout, err := openProject(cmd)
	if err != nil {
		return err
	}

	s := newScanner(layout)
	if err := printInventory(cmd, s); err != nil {
		return err
	}

	if !listWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchInventory(ctx, cmd, layout, s)
}

func newScanner(layout *project.Layout) *scanner.Scanner {
	d := GetDeps()
	return scanner.New(layout,
		scanner.WithExclude(d.Config.Scan.Exclude...),
		scanner.WithGitignore(d.Config.Scan.Gitignore),
		scanner.WithLogger(d.Logger),
	)
}

func printInventory(cmd *cobra.Command, s *scanner.Scanner) error {
	inv, err := s.Scan(cmd.Context())
	if err != nil {
		return err
	}
	if listOutput.Quiet {
		return nil
	}

	p := newPrinter(cmd.OutOrStdout())
	return writeInventory(cmd.OutOrStdout(), inv, listOutput.Format.String(), p.styled)
}

// watchInventory re-scans after each debounced batch of changes under the
// three kind roots until ctx is cancelled.
func watchInventory(ctx context.Context, cmd *cobra.Command, layout *project.Layout, s *scanner.Scanner) error {
	d := GetDeps()

	fw, err := watcher.NewFileWatcher(listDelay, d.Logger)
	if err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeScanFailed, "failed to start file watcher")
	}
	defer fw.Stop()

	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NameFilter(nil, []string{".go", ".html"}))

	seen := map[string]bool{}
	for _, kind := range pathspec.Kinds {
		root := layout.RootFor(pathspec.RuleFor(kind).Root)
		if seen[root] {
			continue
		}
		seen[root] = true
		if err := fw.AddRecursive(root); err != nil {
			return goaerrors.WrapIO(err, goaerrors.CodeScanFailed, "failed to watch "+layout.Rel(root))
		}
	}

	fw.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		d.Logger.Debug(ctx, "change detected", "events", len(events))
		if listOutput.Format.String() == "table" {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return printInventory(cmd, s)
	})

	if err := fw.Start(ctx); err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeScanFailed, "failed to start file watcher")
	}

	newPrinter(cmd.ErrOrStderr()).note("watching for changes, press Ctrl+C to stop")
	<-ctx.Done()

	return nil
}

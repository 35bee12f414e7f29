package cmd

import (
	"github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/kleeedolinux/goa-cli/internal/resolver"
	"github.com/kleeedolinux/goa-cli/internal/scaffolding"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:     "route",
	Aliases: []string{"r"},
	Short:   "Create and delete API and page routes",
	Long: `Create and delete routes of a Go on Airplanes project.

Paths are slash separated. A segment in brackets is dynamic and is bound
to a request parameter:

  goa route api new users/auth/login   app/api/users/auth/login/route.go
  goa route api new users/[id]         app/api/users/[id]/route.go
  goa route page new blog/[slug]       app/blog/[slug]/index.html
  goa route page delete dashboard      removes app/dashboard/index.html`,
}

var routeAPICmd = &cobra.Command{
	Use:   "api",
	Short: "Manage API routes",
}

var routePageCmd = &cobra.Command{
	Use:   "page",
	Short: "Manage page routes",
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.AddCommand(routeAPICmd, routePageCmd)

	routeAPICmd.AddCommand(newCreateCmd(pathspec.KindAPIRoute), newDeleteCmd(pathspec.KindAPIRoute))
	routePageCmd.AddCommand(newCreateCmd(pathspec.KindPageRoute), newDeleteCmd(pathspec.KindPageRoute))
}

// newCreateCmd builds the "new" subcommand for kind.
func newCreateCmd(kind pathspec.Kind) *cobra.Command {
	var opts scaffolding.Options

	c := &cobra.Command{
		Use:     "new [" + argName(kind) + "]",
		Aliases: []string{"create", "add"},
		Short:   "Create a new " + kind.String(),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, kind, args, opts)
		},
	}

	switch kind {
	case pathspec.KindPageRoute:
		c.Flags().StringVar(&opts.Title, "title", "", "Page heading (default derived from the last segment)")
	case pathspec.KindAPIRoute:
		c.Flags().BoolVar(&opts.SkipRegister, "no-register", false, "Do not add the route import to main.go")
	}

	return c
}

// newDeleteCmd builds the "delete" subcommand for kind.
func newDeleteCmd(kind pathspec.Kind) *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:     "delete [" + argName(kind) + "]",
		Aliases: []string{"rm", "remove"},
		Short:   "Delete an existing " + kind.String(),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, kind, args, yes)
		},
	}

	c.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return c
}

func runCreate(cmd *cobra.Command, kind pathspec.Kind, args []string, opts scaffolding.Options) error {
	raw, err := pathArgument(cmd, args, kind)
	if err != nil {
		return err
	}

	spec, err := pathspec.Parse(kind, raw)
	if err != nil {
		return err
	}

	layout, err := openProject(cmd)
	if err != nil {
		return err
	}

	if err := resolver.New(layout).CheckCreate(spec); err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())
	created, err := scaffolding.NewGenerator(layout, GetDeps().Logger).Create(cmd.Context(), spec, opts)
	if err != nil {
		for _, path := range errors.CreatedFiles(err) {
			p.warn("created %s before the failure", layout.Rel(path))
		}
		return err
	}

	for _, path := range created {
		p.success("created %s", layout.Rel(path))
	}
	if route := scaffolding.RoutePath(spec); route != "" {
		p.note("  serves %s", route)
	}

	return nil
}

func runDelete(cmd *cobra.Command, kind pathspec.Kind, args []string, yes bool) error {
	raw, err := pathArgument(cmd, args, kind)
	if err != nil {
		return err
	}

	spec, err := pathspec.Parse(kind, raw)
	if err != nil {
		return err
	}

	layout, err := openProject(cmd)
	if err != nil {
		return err
	}

	target, err := resolver.New(layout).CheckDelete(spec)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout())

	ok, err := confirmDelete(yes, layout.Rel(target))
	if err != nil {
		return err
	}
	if !ok {
		p.note("nothing deleted")
		return nil
	}

	pruned, err := scaffolding.NewGenerator(layout, GetDeps().Logger).Delete(cmd.Context(), spec)
	if err != nil {
		return err
	}

	p.success("deleted %s", layout.Rel(target))
	for _, dir := range pruned {
		p.note("  removed empty directory %s", layout.Rel(dir))
	}

	return nil
}

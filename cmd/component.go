package cmd

import (
	"github.com/kleeedolinux/goa-cli/internal/pathspec"
	"github.com/spf13/cobra"
)

var componentCmd = &cobra.Command{
	Use:     "component",
	Aliases: []string{"c", "comp"},
	Short:   "Create and delete shared template components",
	Long: `Create and delete components. A component is a single named template
file in the component directory; names cannot be nested.

  goa component new card        app/components/card.html
  goa component delete card`,
}

func init() {
	rootCmd.AddCommand(componentCmd)
	componentCmd.AddCommand(newCreateCmd(pathspec.KindComponent), newDeleteCmd(pathspec.KindComponent))
}

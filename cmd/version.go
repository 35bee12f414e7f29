package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/kleeedolinux/goa-cli/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for goa including:

- Release number
- Git commit hash
- Build timestamp
- Go version and target platform

Examples:
  goa version
  goa version --short
  goa version --format json`,
	Args: cobra.NoArgs,
	Annotations: map[string]string{
		annotationSkipNotice: "true",
	},
	RunE: runVersionCommand,
}

var (
	versionOutput *OutputFlags
	versionShort  bool
)

func init() {
	rootCmd.AddCommand(versionCmd)

	versionOutput = AddOutputFlags(versionCmd, "text", "text", "json")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	switch versionOutput.Format.String() {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetBuildInfo())
	default:
		if versionShort {
			fmt.Fprintln(out, version.GetShortVersion())
			return nil
		}
		fmt.Fprintln(out, version.GetDetailedVersion())
		return nil
	}
}

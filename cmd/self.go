package cmd

import (
	"runtime"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/update"
	"github.com/kleeedolinux/goa-cli/internal/version"
	"github.com/spf13/cobra"
)

var selfCmd = &cobra.Command{
	Use:   "self",
	Short: "Check for and install new goa releases",
	Annotations: map[string]string{
		annotationSkipNotice: "true",
	},
}

var selfCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a newer release is available",
	Args:  cobra.NoArgs,
	RunE:  runSelfCheck,
}

var selfUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Download the latest release and replace this binary",
	Long: `Download the latest release for this platform and replace the running
binary with it. On Windows the new binary is staged next to the old one and
swapped in the next time goa starts.`,
	Args: cobra.NoArgs,
	RunE: runSelfUpdate,
}

var selfUpdateForce bool

func init() {
	rootCmd.AddCommand(selfCmd)
	selfCmd.AddCommand(selfCheckCmd, selfUpdateCmd)

	selfUpdateCmd.Flags().BoolVar(&selfUpdateForce, "force", false, "Reinstall even when already up to date")
}

func localVersion() (update.VersionTag, error) {
	v, err := update.ParseVersionTag(version.Version)
	if err != nil {
		return update.VersionTag{}, goaerrors.NewInternalError("BAD_VERSION",
			"this build has no release version ("+version.Version+")", err)
	}
	return v, nil
}

func runSelfCheck(cmd *cobra.Command, args []string) error {
	local, err := localVersion()
	if err != nil {
		return err
	}

	d := GetDeps()
	decision, err := d.Checker.Check(cmd.Context(), local)
	if err != nil {
		return err
	}
	d.Schedule.Mark()

	p := newPrinter(cmd.OutOrStdout())
	if decision.Available {
		p.warn("%s (current %s)", decision, local)
		p.note("  run `goa self update` to install it")
		return nil
	}
	p.success("goa %s is %s", local, decision)
	return nil
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	local, err := localVersion()
	if err != nil {
		return err
	}

	d := GetDeps()
	p := newPrinter(cmd.OutOrStdout())

	decision, err := d.Checker.Check(cmd.Context(), local)
	if err != nil {
		return err
	}
	d.Schedule.Mark()

	if !decision.Available && !selfUpdateForce {
		p.success("goa %s is up to date", local)
		return nil
	}

	target := decision.Remote
	if target.IsZero() {
		target = local
	}

	url, err := update.DownloadURL(d.Config.Update.DownloadURL, target, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}

	updater, err := d.NewUpdater()
	if err != nil {
		return goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot locate the running binary")
	}

	d.Logger.Info(cmd.Context(), "downloading release", "version", target.String(), "url", url)
	staged, err := updater.PerformUpdate(cmd.Context(), url)
	if err != nil {
		return err
	}

	if staged {
		p.success("goa %s downloaded, it will be installed the next time goa starts", target)
		return nil
	}
	p.success("updated goa %s -> %s", local, target)
	return nil
}

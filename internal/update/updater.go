package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"

	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
)

// ErrInvalidBinary is returned when a download is not an executable.
var ErrInvalidBinary = errors.New("update: downloaded file is not a valid executable")

// Suffixes of the files used for a staged swap.
const (
	stagedSuffix = ".new"
	oldSuffix    = ".old"
)

// Updater downloads a release and swaps it in for the binary at binaryPath.
type Updater struct {
	binaryPath string
	client     *http.Client
	goos       string
}

// NewUpdater creates an updater for the binary at binaryPath.
func NewUpdater(binaryPath string, client *http.Client) *Updater {
	if client == nil {
		client = &http.Client{Timeout: 5 * DefaultTimeout}
	}
	return &Updater{binaryPath: binaryPath, client: client, goos: runtime.GOOS}
}

// WithGOOS overrides the target platform. Used by tests.
func (u *Updater) WithGOOS(goos string) *Updater {
	u.goos = goos
	return u
}

// BinaryPath returns the path of the binary being updated.
func (u *Updater) BinaryPath() string {
	return u.binaryPath
}

// DownloadURL expands the release URL template for the given platform. The
// template sees .Version, .OS, .Arch and .Ext (".exe" on windows).
func DownloadURL(tmpl string, remote VersionTag, goos, goarch string) (string, error) {
	t, err := template.New("download").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", goaerrors.NewConfigError(goaerrors.CodeConfigInvalid, "invalid update.download_url: "+err.Error())
	}

	ext := ""
	if goos == "windows" {
		ext = ".exe"
	}

	var b strings.Builder
	err = t.Execute(&b, map[string]string{
		"Version": remote.String(),
		"OS":      goos,
		"Arch":    goarch,
		"Ext":     ext,
	})
	if err != nil {
		return "", goaerrors.NewConfigError(goaerrors.CodeConfigInvalid, "invalid update.download_url: "+err.Error())
	}

	return b.String(), nil
}

// Download fetches url into a temporary file beside the binary and returns
// its path. Empty payloads and non-executables are rejected and removed.
func (u *Updater) Download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeDownloadFailed, "invalid download URL")
	}
	req.Header.Set("User-Agent", "goa-cli")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeDownloadFailed, "download failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", goaerrors.NewNetworkError(goaerrors.CodeBadStatus,
			fmt.Sprintf("download returned status %d", resp.StatusCode), nil)
	}

	tmp, err := os.CreateTemp(filepath.Dir(u.binaryPath), "."+filepath.Base(u.binaryPath)+"-update-*.tmp")
	if err != nil {
		return "", goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot create temporary file")
	}
	tmpPath := tmp.Name()

	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()

	switch {
	case copyErr != nil:
		_ = os.Remove(tmpPath)
		return "", goaerrors.WrapNetwork(copyErr, goaerrors.CodeDownloadFailed, "download interrupted")
	case closeErr != nil:
		_ = os.Remove(tmpPath)
		return "", goaerrors.WrapIO(closeErr, goaerrors.CodeReplaceFailed, "cannot write temporary file")
	case n == 0:
		_ = os.Remove(tmpPath)
		return "", goaerrors.NewNetworkError(goaerrors.CodeBadPayload, "downloaded file is empty", nil)
	}

	if err := u.validateBinaryFormat(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeBadPayload, "downloaded file rejected")
	}

	return tmpPath, nil
}

// Replace swaps newBinary in for the current binary. On windows the running
// executable cannot be overwritten, so the file is staged next to it and
// swapped by ApplyStaged on the next start.
func (u *Updater) Replace(newBinary string) (staged bool, err error) {
	if err := os.Chmod(newBinary, 0755); err != nil {
		return false, goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot mark new binary executable")
	}

	if u.goos == "windows" {
		if err := os.Rename(newBinary, u.binaryPath+stagedSuffix); err != nil {
			return false, goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot stage new binary")
		}
		return true, nil
	}

	if err := os.Rename(newBinary, u.binaryPath); err != nil {
		return false, goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot replace binary")
	}
	return false, nil
}

// ApplyStaged finishes a swap left by Replace. It reports whether a staged
// binary was applied. Leftovers of an earlier swap are removed.
func (u *Updater) ApplyStaged() (bool, error) {
	_ = os.Remove(u.binaryPath + oldSuffix)

	staged := u.binaryPath + stagedSuffix
	if _, err := os.Stat(staged); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot inspect staged binary")
	}

	// A running executable can be renamed but not overwritten.
	if err := os.Rename(u.binaryPath, u.binaryPath+oldSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot move current binary aside")
	}
	if err := os.Rename(staged, u.binaryPath); err != nil {
		_ = os.Rename(u.binaryPath+oldSuffix, u.binaryPath)
		return false, goaerrors.WrapIO(err, goaerrors.CodeReplaceFailed, "cannot apply staged binary")
	}

	return true, nil
}

// PerformUpdate downloads url and replaces the binary with it.
func (u *Updater) PerformUpdate(ctx context.Context, url string) (staged bool, err error) {
	tmp, err := u.Download(ctx, url)
	if err != nil {
		return false, err
	}

	staged, err = u.Replace(tmp)
	if err != nil {
		_ = os.Remove(tmp)
		return false, err
	}
	return staged, nil
}

var (
	magicELF   = []byte{0x7f, 'E', 'L', 'F'}
	magicPE    = []byte{'M', 'Z'}
	magicMachO = [][]byte{
		{0xfe, 0xed, 0xfa, 0xce},
		{0xfe, 0xed, 0xfa, 0xcf},
		{0xce, 0xfa, 0xed, 0xfe},
		{0xcf, 0xfa, 0xed, 0xfe},
		{0xca, 0xfe, 0xba, 0xbe},
	}
)

// validateBinaryFormat checks the file header against the executable format
// of the target platform.
func (u *Updater) validateBinaryFormat(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := make([]byte, 4)
	n, _ := io.ReadFull(f, header)
	header = header[:n]

	var ok bool
	switch u.goos {
	case "windows":
		ok = bytes.HasPrefix(header, magicPE)
	case "darwin":
		for _, m := range magicMachO {
			if bytes.HasPrefix(header, m) {
				ok = true
				break
			}
		}
	default:
		ok = bytes.HasPrefix(header, magicELF)
	}

	if !ok {
		return ErrInvalidBinary
	}
	return nil
}

package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"
	goaerrors "github.com/kleeedolinux/goa-cli/internal/errors"
	"github.com/kleeedolinux/goa-cli/internal/logging"
	latest "github.com/tcnksm/go-latest"
)

// DefaultTimeout bounds a version fetch when the caller sets none.
const DefaultTimeout = 5 * time.Second

// maxPayload caps the version response body.
const maxPayload = 4 << 10

// Fetcher retrieves the published version string.
type Fetcher interface {
	Fetch(ctx context.Context) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context) (string, error) {
	return f(ctx)
}

// HTTPFetcher reads the version from a metadata endpoint. The body is either
// a bare version string or a JSON object with a "version" field.
type HTTPFetcher struct {
	URL       string
	Client    *http.Client
	UserAgent string
}

// NewHTTPFetcher creates a fetcher for url. A nil client gets DefaultTimeout.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPFetcher{URL: url, Client: client, UserAgent: "goa-cli"}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeFetchFailed, "invalid version URL")
	}
	req.Header.Set("Accept", "application/json, text/plain")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeFetchFailed, "version request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", goaerrors.NewNetworkError(goaerrors.CodeBadStatus,
			fmt.Sprintf("version endpoint returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeFetchFailed, "failed to read version response")
	}
	if len(body) > maxPayload {
		return "", goaerrors.NewNetworkError(goaerrors.CodeBadPayload, "version response too large", nil)
	}

	return parsePayload(body)
}

func parsePayload(body []byte) (string, error) {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "{") {
		if text == "" {
			return "", goaerrors.NewNetworkError(goaerrors.CodeBadPayload, "empty version response", nil)
		}
		return text, nil
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return "", goaerrors.WrapNetwork(err, goaerrors.CodeBadPayload, "malformed version response")
	}
	if strings.TrimSpace(payload.Version) == "" {
		return "", goaerrors.NewNetworkError(goaerrors.CodeBadPayload, "version response has no version field", nil)
	}

	return strings.TrimSpace(payload.Version), nil
}

// Decision is the outcome of a check. The zero value means up to date.
type Decision struct {
	Available bool
	Remote    VersionTag
}

// String describes the decision for humans.
func (d Decision) String() string {
	if d.Available {
		return "update available: " + d.Remote.String()
	}
	return "up to date"
}

// Checker compares the local version with the published one.
type Checker struct {
	fetcher Fetcher
	timeout time.Duration
}

// NewChecker creates a checker. A non-positive timeout uses DefaultTimeout.
func NewChecker(fetcher Fetcher, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{fetcher: fetcher, timeout: timeout}
}

// Check fetches the published version and compares it with local. On any
// failure the returned Decision is up to date and the error is a network
// error describing why.
func (c *Checker) Check(ctx context.Context, local VersionTag) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		if goaerrors.IsNetwork(err) {
			return Decision{}, err
		}
		return Decision{}, goaerrors.WrapNetwork(err, goaerrors.CodeFetchFailed, "version fetch failed")
	}

	remote, err := ParseVersionTag(raw)
	if err != nil {
		return Decision{}, goaerrors.WrapNetwork(err, goaerrors.CodeBadPayload, "unparseable remote version")
	}

	res, err := latest.Check(&tagSource{tag: remote}, local.String())
	if err != nil {
		return Decision{}, goaerrors.WrapNetwork(err, goaerrors.CodeBadPayload, "version comparison failed")
	}

	if !res.Outdated {
		return Decision{Remote: remote}, nil
	}
	return Decision{Available: true, Remote: remote}, nil
}

// tagSource feeds an already fetched tag into go-latest.
type tagSource struct {
	tag VersionTag
}

func (s *tagSource) Validate() error {
	if s.tag.IsZero() {
		return errors.New("no remote version")
	}
	return nil
}

func (s *tagSource) Fetch() (*latest.FetchResponse, error) {
	return &latest.FetchResponse{
		Versions: []*goversion.Version{s.tag.goVersion()},
	}, nil
}

// Reconciler runs the implicit, time-gated check. It never returns an error.
type Reconciler struct {
	checker  *Checker
	schedule *Schedule
	logger   logging.Logger
}

// NewReconciler wires a checker to a schedule.
func NewReconciler(checker *Checker, schedule *Schedule, logger logging.Logger) *Reconciler {
	return &Reconciler{
		checker:  checker,
		schedule: schedule,
		logger:   logging.OrNop(logger).WithComponent("update"),
	}
}

// Notify checks for a newer release when the schedule is due. Failures are
// logged at debug level and yield an up to date decision.
func (r *Reconciler) Notify(ctx context.Context, local VersionTag) Decision {
	if !r.schedule.Due() {
		r.logger.Debug(ctx, "update check not due", "last", r.schedule.LastChecked())
		return Decision{}
	}
	r.schedule.Mark()

	d, err := r.checker.Check(ctx, local)
	if err != nil {
		r.logger.Debug(ctx, "update check failed", "error", err.Error())
		return Decision{}
	}

	r.logger.Debug(ctx, "update check finished", "local", local.String(), "remote", d.Remote.String(),
		"available", d.Available)
	return d
}

package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
)

const (
	DefaultFetchAttempts = 3
	DefaultFetchBackoff  = time.Second

	// maxManifestBytes bounds the manifest download (16 MB).
	maxManifestBytes = 16 << 20
)

// RawManifest is the fetched manifest text and where the diagnostics copy was written.
type RawManifest struct {
	Text    string
	SavedTo string
}

// DiagnosticsSink stores the raw manifest text and returns its location, or a sentinel
// describing why it could not. It must not fail.
type DiagnosticsSink func(text string) string

type ManifestFetcher struct {
	url         string
	httpClient  *http.Client
	attempts    int
	backoff     time.Duration
	diagnostics DiagnosticsSink
	logger      *log.Logger
}

type FetcherOption func(*ManifestFetcher)

func WithFetchClient(c *http.Client) FetcherOption {
	return func(f *ManifestFetcher) {
		f.httpClient = c
	}
}

func WithAttempts(n int) FetcherOption {
	return func(f *ManifestFetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

func WithBackoff(d time.Duration) FetcherOption {
	return func(f *ManifestFetcher) {
		f.backoff = d
	}
}

func WithDiagnostics(sink DiagnosticsSink) FetcherOption {
	return func(f *ManifestFetcher) {
		f.diagnostics = sink
	}
}

func WithFetchLogger(logger *log.Logger) FetcherOption {
	return func(f *ManifestFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewManifestFetcher(manifestURL string, opts ...FetcherOption) *ManifestFetcher {
	f := &ManifestFetcher{
		url:        manifestURL,
		httpClient: http.DefaultClient,
		attempts:   DefaultFetchAttempts,
		backoff:    DefaultFetchBackoff,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the manifest text, retrying transport failures with a fixed backoff.
func (f *ManifestFetcher) Fetch(ctx context.Context) (RawManifest, error) {
	var text string
	var err error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		text, err = f.get(ctx)
		if err == nil {
			break
		}
		if attempt == f.attempts {
			return RawManifest{}, fmt.Errorf("%w: %s: %w", core.ErrManifestUnavailable, f.url, err)
		}
		f.logger.Warn("manifest download failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return RawManifest{}, fmt.Errorf("%w: %s: %w", core.ErrManifestUnavailable, f.url, ctx.Err())
		case <-time.After(f.backoff):
		}
	}

	// A complete document ends in ']' or '}'. This misreads minified or padded payloads in
	// both directions, so it only ever buys one extra download.
	if looksTruncated(text) {
		f.logger.Warn("manifest looks truncated, downloading again", "url", f.url)
		if again, err := f.get(ctx); err == nil {
			text = again
		} else {
			f.logger.Warn("second manifest download failed, keeping the first", "error", err)
		}
	}

	raw := RawManifest{Text: text}
	if f.diagnostics != nil {
		raw.SavedTo = f.diagnostics(text)
		f.logger.Debug("raw manifest saved", "path", raw.SavedTo)
	}

	if strings.TrimSpace(text) == "" {
		return raw, fmt.Errorf("%w: %s returned an empty manifest", core.ErrManifestUnavailable, f.url)
	}
	return raw, nil
}

func looksTruncated(text string) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	return !strings.HasSuffix(trimmed, "]") && !strings.HasSuffix(trimmed, "}")
}

func (f *ManifestFetcher) get(ctx context.Context) (string, error) {
	resp, err := core.GetWithUA(ctx, f.httpClient, f.url, "application/json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("invalid response status: %v", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

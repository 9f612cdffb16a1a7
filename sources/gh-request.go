package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com"

	// maxJSONResponseBytes bounds a release API response (10 MB).
	maxJSONResponseBytes = 10 << 20
)

// ErrReleaseNotFound is returned when the repository or the requested release does not exist.
var ErrReleaseNotFound = errors.New("release not found")

// RateLimitError is returned when the GitHub API rate limit is exhausted.
type RateLimitError struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded (%d remaining, resets at %s)",
		e.Remaining, e.ResetAt.UTC().Format("15:04 UTC"))
}

type Release struct {
	ID      int64   `json:"id"`
	TagName string  `json:"tag_name"`
	Name    string  `json:"name"`
	Assets  []Asset `json:"assets"`
}

type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// FileName is the asset's file name, taken from the download URL when the API omits it.
func (a Asset) FileName() string {
	if a.Name != "" {
		return a.Name
	}
	return core.FileNameFromURL(a.BrowserDownloadURL)
}

// GitHubClient talks to the GitHub releases API.
type GitHubClient struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

type ClientOption func(*GitHubClient)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *GitHubClient) {
		g.httpClient = c
	}
}

// WithAPIURL overrides the API base, mostly for test servers.
func WithAPIURL(base string) ClientOption {
	return func(g *GitHubClient) {
		if base != "" {
			g.apiURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken sets a personal access token, which raises the rate limit from 60 to 5000 requests an hour.
func WithToken(token string) ClientOption {
	return func(g *GitHubClient) {
		g.token = token
	}
}

func NewGitHubClient(opts ...ClientOption) *GitHubClient {
	c := &GitHubClient{
		httpClient: http.DefaultClient,
		apiURL:     DefaultGitHubAPIURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetLatestRelease fetches the most recent non-draft, non-prerelease release of owner/repo.
func (c *GitHubClient) GetLatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	return c.getRelease(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiURL, url.PathEscape(owner), url.PathEscape(repo)))
}

// GetRelease fetches one release by its numeric id.
func (c *GitHubClient) GetRelease(ctx context.Context, owner, repo string, id int64) (*Release, error) {
	return c.getRelease(ctx, fmt.Sprintf("%s/repos/%s/%s/releases/%d", c.apiURL, url.PathEscape(owner), url.PathEscape(repo), id))
}

func (c *GitHubClient) getRelease(ctx context.Context, reqURL string) (*Release, error) {
	resp, err := c.makeGet(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkRateLimit(resp); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrReleaseNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invalid response status: %v", resp.Status)
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	return &release, nil
}

func (c *GitHubClient) makeGet(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", core.UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	// the token only ever goes to the configured API host
	if c.token != "" && c.isAPIHost(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

func (c *GitHubClient) isAPIHost(reqURL *url.URL) bool {
	base, err := url.Parse(c.apiURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(reqURL.Host, base.Host)
}

// checkRateLimit reports a RateLimitError when a 403 or 429 response has X-RateLimit-Remaining
// at zero. Missing or malformed headers are not an error.
func checkRateLimit(resp *http.Response) error {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return nil
	}
	rem, err := strconv.Atoi(remaining)
	if err != nil || rem > 0 {
		return nil
	}

	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	resetUnix, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)
	return &RateLimitError{
		Limit:     limit,
		Remaining: 0,
		ResetAt:   time.Unix(resetUnix, 0),
	}
}

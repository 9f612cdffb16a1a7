package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dlclark/regexp2"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
)

// DefaultAssetPattern prefers archives over loose files when a release carries several assets.
const DefaultAssetPattern = `(?i)\.zip$`

// resolveWorkers bounds concurrent release API calls during a load.
const resolveWorkers = 4

// GitHubResolver swaps a repository link for the download of its latest (or pinned) release.
type GitHubResolver struct {
	client       *GitHubClient
	webHost      string
	assetPattern *regexp2.Regexp
}

// NewGitHubResolver builds a resolver for links on webURL (default https://github.com). Release
// assets whose file name matches assetPattern are preferred.
func NewGitHubResolver(client *GitHubClient, webURL, assetPattern string) (*GitHubResolver, error) {
	if client == nil {
		client = NewGitHubClient()
	}
	if webURL == "" {
		webURL = core.GitHubWebBase
	}
	web, err := url.Parse(webURL)
	if err != nil || web.Host == "" {
		return nil, fmt.Errorf("invalid GitHub web URL %q", webURL)
	}
	if assetPattern == "" {
		assetPattern = DefaultAssetPattern
	}
	expr, err := regexp2.Compile(assetPattern, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid asset pattern %q: %w", assetPattern, err)
	}

	return &GitHubResolver{
		client:       client,
		webHost:      strings.ToLower(web.Host),
		assetPattern: expr,
	}, nil
}

func (r *GitHubResolver) GetName() string {
	return "github"
}

func (r *GitHubResolver) Matches(mod *core.ModEntry) bool {
	u, err := url.Parse(strings.TrimSpace(mod.DownloadURL))
	if err != nil || !u.IsAbs() {
		return false
	}
	host := strings.ToLower(u.Host)
	return host == r.webHost || host == "www."+r.webHost
}

// repoOf extracts owner and repo from the first two path segments of the link.
func repoOf(rawURL string) (owner, repo string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", false
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return "", "", false
	}
	return segments[0], strings.TrimSuffix(segments[1], ".git"), true
}

// Resolve leaves mod untouched unless the whole lookup succeeds.
func (r *GitHubResolver) Resolve(ctx context.Context, mod *core.ModEntry) error {
	owner, repo, ok := repoOf(mod.DownloadURL)
	if !ok {
		return nil
	}

	var release *Release
	var err error
	if mod.ReleaseID > 0 {
		release, err = r.client.GetRelease(ctx, owner, repo, mod.ReleaseID)
	} else {
		release, err = r.client.GetLatestRelease(ctx, owner, repo)
	}
	if err != nil {
		return fmt.Errorf("failed to get release for %s/%s: %w", owner, repo, err)
	}

	downloadURL := mod.DownloadURL
	if asset, found := r.pickAsset(release.Assets); found {
		downloadURL = asset.BrowserDownloadURL
	}

	if release.TagName != "" {
		mod.Version = strings.TrimLeft(release.TagName, "v")
	}
	mod.DownloadURL = downloadURL
	return nil
}

// pickAsset returns the first asset matching the preference pattern, else the first asset.
func (r *GitHubResolver) pickAsset(assets []Asset) (Asset, bool) {
	var fallback *Asset
	for i, a := range assets {
		if a.BrowserDownloadURL == "" {
			continue
		}
		if matched, _ := r.assetPattern.MatchString(a.FileName()); matched {
			return a, true
		}
		if fallback == nil {
			fallback = &assets[i]
		}
	}
	if fallback == nil {
		return Asset{}, false
	}
	return *fallback, true
}

// ResolveAll runs the first matching resolver on every entry. Failures are logged and the
// entry keeps its manifest values; nothing is returned because resolution is never fatal.
func ResolveAll(ctx context.Context, mods []*core.ModEntry, resolvers []core.Resolver, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}

	tasks := make(chan *core.ModEntry)
	var wg sync.WaitGroup
	for i := 0; i < resolveWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for mod := range tasks {
				resolveOne(ctx, mod, resolvers, logger)
			}
		}()
	}

	for _, mod := range mods {
		if mod == nil || mod.DownloadURL == "" {
			continue
		}
		// pinned by the dependency enforcer afterwards
		if mod.IsForced() {
			continue
		}
		tasks <- mod
	}
	close(tasks)
	wg.Wait()
}

func resolveOne(ctx context.Context, mod *core.ModEntry, resolvers []core.Resolver, logger *log.Logger) {
	for _, r := range resolvers {
		if !r.Matches(mod) {
			continue
		}
		version, downloadURL := mod.Version, mod.DownloadURL
		if err := r.Resolve(ctx, mod); err != nil {
			mod.Version, mod.DownloadURL = version, downloadURL
			logger.Warn("release resolution skipped", "mod", mod.Name, "resolver", r.GetName(),
				"error", fmt.Errorf("%w: %w", core.ErrReleaseResolution, err))
			return
		}
		logger.Debug("release resolved", "mod", mod.Name, "version", mod.Version, "url", mod.DownloadURL)
		return
	}
}

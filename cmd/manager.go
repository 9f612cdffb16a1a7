package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/config"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/fileio"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/installer"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/internal/shared"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/manager"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/sources"
)

var httpClient = &http.Client{Timeout: 10 * time.Minute}

// newManager wires a Manager from the configuration. progress may be nil.
func newManager(progress installer.ProgressFunc) *manager.Manager {
	logDir, err := shared.GetLogDir()
	if err != nil {
		shared.Exitf("Failed to find the log directory: %v\n", err)
	}

	fetcher := sources.NewManifestFetcher(viper.GetString(config.KeyManifestURL),
		sources.WithFetchClient(httpClient),
		sources.WithDiagnostics(func(text string) string {
			return fileio.SaveRawManifest(logDir, text)
		}),
		sources.WithFetchLogger(logger),
	)

	client := sources.NewGitHubClient(
		sources.WithHTTPClient(httpClient),
		sources.WithAPIURL(viper.GetString(config.KeyGitHubAPIURL)),
		sources.WithToken(config.GetGhApiKey()),
	)
	resolver, err := sources.NewGitHubResolver(client,
		viper.GetString(config.KeyGitHubWebURL),
		viper.GetString(config.KeyGitHubAssetRegex),
	)
	if err != nil {
		shared.Exitf("Invalid %s: %v\n", config.KeyGitHubAssetRegex, err)
	}

	installOpts := []installer.Option{
		installer.WithHTTPClient(httpClient),
		installer.WithRuntimeRoot(viper.GetString(config.KeyRuntimeRoot)),
		installer.WithProgress(progress),
		installer.WithLogger(logger),
	}
	if ignoreFile, err := fileio.GetExtractIgnoreFile(); err == nil {
		ignore, found := fileio.ReadExtractIgnore(ignoreFile)
		if found {
			logger.Debug("using extract ignore file", "path", ignoreFile)
		}
		installOpts = append(installOpts, installer.WithIgnore(ignore))
	}

	opts := []manager.Option{
		manager.WithFetcher(fetcher),
		manager.WithResolvers(resolver),
		manager.WithInstaller(installer.New(installOpts...)),
		manager.WithRecorder(fileio.NewErrorLog(logDir)),
		manager.WithLogger(logger),
	}
	if gameDir, err := shared.GetGameDir(); err == nil {
		opts = append(opts, manager.WithGameDir(gameDir))
	} else {
		logger.Debug("no game directory", "error", err)
	}
	return manager.New(opts...)
}

// loadMods loads the manifest into m, exiting on failure.
func loadMods(ctx context.Context, m *manager.Manager) {
	fmt.Println("Loading mods manifest...")
	if err := m.Load(ctx); err != nil {
		shared.Exitln(err)
	}
}

// requireGameDir exits with a hint when no game directory could be found.
func requireGameDir(m *manager.Manager) string {
	dir := m.GameDir()
	if dir == "" {
		shared.Exitln("Game directory not found; pass --game-dir or run stairs locate <dir>")
	}
	return dir
}

package config

import (
	"github.com/spf13/viper"
)

var (
	Version  string
	ghApiKey string
)

// Configuration keys, shared by the cobra flag bindings and the viper lookups.
const (
	KeyManifestURL       = "manifest-url"
	KeyGameDir           = "game-dir"
	KeyRuntimeRoot       = "runtime-root"
	KeyGitHubToken       = "github.token"
	KeyGitHubAPIURL      = "github.api-url"
	KeyGitHubWebURL      = "github.web-url"
	KeyGitHubAssetRegex  = "github.asset-pattern"
	KeyLogDir            = "log-dir"
	KeyLogLevel          = "log-level"
	KeyJobs              = "jobs"
	KeyNonInteractive    = "non-interactive"
	KeyListVersion       = "list.version"
	KeyListInstalledOnly = "list.installed"
	KeyListJSON          = "list.json"
	KeySkipRuntime       = "enable.skip-runtime"
)

const (
	DefaultManifestURL = "https://raw.githubusercontent.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/main/mods.json"
	DefaultRuntimeRoot = "BepInEx"
	DefaultAPIURL      = "https://api.github.com"
	DefaultWebURL      = "https://github.com"
	DefaultAssetRegex  = `(?i)\.zip$`
	DefaultLogLevel    = "warn"
	DefaultJobs        = 2
)

func SetVersion(version string) {
	Version = version
}

func SetGitHubApiKey(key string) {
	ghApiKey = key
}

// GetGhApiKey prefers a token from the config file or environment over the one baked in at build time.
func GetGhApiKey() string {
	if token := viper.GetString(KeyGitHubToken); token != "" {
		return token
	}
	return ghApiKey
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyManifestURL, DefaultManifestURL)
	v.SetDefault(KeyRuntimeRoot, DefaultRuntimeRoot)
	v.SetDefault(KeyGitHubAPIURL, DefaultAPIURL)
	v.SetDefault(KeyGitHubWebURL, DefaultWebURL)
	v.SetDefault(KeyGitHubAssetRegex, DefaultAssetRegex)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyJobs, DefaultJobs)
}

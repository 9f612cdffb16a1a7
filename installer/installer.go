package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/fileio"
)

const DefaultRuntimeRoot = "BepInEx"

// ProgressFunc may wrap a download body, e.g. to drive a progress bar. total is -1 when unknown.
type ProgressFunc func(mod *core.ModEntry, total int64, body io.ReadCloser) io.ReadCloser

// Installer places mod artifacts under <game dir>/<runtime root>/plugins and removes them again.
type Installer struct {
	httpClient  *http.Client
	runtimeRoot string
	ignore      *gitignore.GitIgnore
	progress    ProgressFunc
	logger      *log.Logger
	tempDir     string
}

type Option func(*Installer)

func WithHTTPClient(c *http.Client) Option {
	return func(i *Installer) {
		i.httpClient = c
	}
}

// WithRuntimeRoot names the directory below the game dir that holds the plugins folder.
func WithRuntimeRoot(root string) Option {
	return func(i *Installer) {
		if root != "" {
			i.runtimeRoot = root
		}
	}
}

// WithIgnore replaces the rules for archive entries that are never extracted.
func WithIgnore(ignore *gitignore.GitIgnore) Option {
	return func(i *Installer) {
		i.ignore = ignore
	}
}

func WithProgress(p ProgressFunc) Option {
	return func(i *Installer) {
		i.progress = p
	}
}

// WithTempDir sets where downloaded archives wait for extraction; the default is os.TempDir().
func WithTempDir(dir string) Option {
	return func(i *Installer) {
		i.tempDir = dir
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(i *Installer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func New(opts ...Option) *Installer {
	i := &Installer{
		httpClient:  http.DefaultClient,
		runtimeRoot: DefaultRuntimeRoot,
		ignore:      fileio.DefaultExtractIgnore(),
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Installer) RuntimeDir(gameDir string) string {
	return filepath.Join(gameDir, i.runtimeRoot)
}

func (i *Installer) PluginsDir(gameDir string) string {
	return filepath.Join(i.RuntimeDir(gameDir), "plugins")
}

// ExtractDir is where an archive mod is unpacked.
func (i *Installer) ExtractDir(mod *core.ModEntry, gameDir string) string {
	return filepath.Join(i.PluginsDir(gameDir), extractDirName(mod))
}

func extractDirName(mod *core.ModEntry) string {
	name := core.SafeName(mod.Name)
	if strings.Trim(name, ".") == "" {
		return "unnamed-mod"
	}
	return name
}

// Install downloads the mod and places it under gameDir. Every failure is an *core.InstallError.
// The forced runtime's archive is unpacked over the game directory itself.
func (i *Installer) Install(ctx context.Context, mod *core.ModEntry, gameDir string) error {
	if strings.TrimSpace(mod.DownloadURL) == "" {
		return core.NewInstallError(mod, core.ErrNoDownloadURL)
	}

	fileName := mod.ArtifactFileName()
	kind := core.KindOf(fileName)

	var err error
	switch {
	case mod.IsForced() && kind == core.ArtifactArchive:
		err = i.installRuntime(ctx, mod, gameDir)
	case kind == core.ArtifactArchive:
		err = i.installArchive(ctx, mod, gameDir)
	default:
		err = i.installFile(ctx, mod, gameDir, fileName)
	}
	if err != nil {
		return core.NewInstallError(mod, err)
	}
	i.logger.Info("installed", "mod", mod.Name, "kind", kind, "version", mod.Version)
	return nil
}

// installFile covers both modules and opaque files. The download lands in a temp file first so an
// interrupted transfer never replaces the installed copy.
func (i *Installer) installFile(ctx context.Context, mod *core.ModEntry, gameDir, fileName string) error {
	plugins := i.PluginsDir(gameDir)
	if err := os.MkdirAll(plugins, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(plugins, "."+fileName+".*.part")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	err = i.download(ctx, mod, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpPath, filepath.Join(plugins, fileName))
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// installArchive extracts into a staging directory and only swaps it in once extraction finished.
func (i *Installer) installArchive(ctx context.Context, mod *core.ModEntry, gameDir string) error {
	plugins := i.PluginsDir(gameDir)
	if err := os.MkdirAll(plugins, os.ModePerm); err != nil {
		return err
	}

	archive, err := i.downloadToTemp(ctx, mod)
	if err != nil {
		return err
	}
	defer i.removeTemp(archive)

	name := extractDirName(mod)
	staging, err := os.MkdirTemp(plugins, "."+name+".staging-*")
	if err != nil {
		return err
	}
	if err := fileio.ExtractZip(archive, staging, i.ignore); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}

	target := filepath.Join(plugins, name)
	if err := os.RemoveAll(target); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("failed to remove previous install: %w", err)
	}
	if err := os.Rename(staging, target); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	return nil
}

func (i *Installer) installRuntime(ctx context.Context, mod *core.ModEntry, gameDir string) error {
	if err := os.MkdirAll(gameDir, os.ModePerm); err != nil {
		return err
	}

	archive, err := i.downloadToTemp(ctx, mod)
	if err != nil {
		return err
	}
	defer i.removeTemp(archive)

	if err := fileio.ExtractZip(archive, gameDir, i.ignore); err != nil {
		return err
	}
	// the runtime ships without a plugins folder until its first launch
	return os.MkdirAll(i.PluginsDir(gameDir), os.ModePerm)
}

func (i *Installer) downloadToTemp(ctx context.Context, mod *core.ModEntry) (string, error) {
	dir := i.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "mod_"+uuid.NewString()+core.ArchiveExtension)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	err = i.download(ctx, mod, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		i.removeTemp(path)
		return "", err
	}
	return path, nil
}

func (i *Installer) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		i.logger.Debug("failed to remove temporary archive", "path", path, "error", err)
	}
}

func (i *Installer) download(ctx context.Context, mod *core.ModEntry, w io.Writer) error {
	resp, err := core.GetWithUA(ctx, i.httpClient, mod.DownloadURL, "application/octet-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("invalid response status: %v", resp.Status)
	}

	var body io.ReadCloser = resp.Body
	if i.progress != nil {
		body = i.progress(mod, resp.ContentLength, body)
		defer body.Close()
	}

	hasher, err := core.GetHashImpl(core.DigestFormat)
	if err != nil {
		return err
	}
	n, err := io.Copy(io.MultiWriter(w, hasher), body)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", mod.DownloadURL, err)
	}
	i.logger.Debug("downloaded", "mod", mod.Name, "bytes", n, core.DigestFormat, hasher.String())
	return nil
}

// Uninstall removes the mod's extraction directory, or failing that its single file. It is best
// effort: nothing it does can fail the caller, problems are only logged.
func (i *Installer) Uninstall(mod *core.ModEntry, gameDir string) {
	dir := i.ExtractDir(mod, gameDir)
	if isDir(dir) {
		if err := os.RemoveAll(dir); err != nil {
			i.logger.Debug("failed to remove mod directory", "mod", mod.Name, "path", dir, "error", err)
		}
		return
	}

	if strings.TrimSpace(mod.DownloadURL) == "" {
		return
	}
	file := filepath.Join(i.PluginsDir(gameDir), mod.ArtifactFileName())
	if _, err := os.Stat(file); err != nil {
		return
	}
	if err := os.Remove(file); err != nil {
		i.logger.Debug("failed to remove mod file", "mod", mod.Name, "path", file, "error", err)
	}
}

// IsInstalled reports whether the mod's artifact is present on disk.
func (i *Installer) IsInstalled(mod *core.ModEntry, gameDir string) bool {
	if gameDir == "" {
		return false
	}
	if mod.IsForced() {
		return isDir(i.RuntimeDir(gameDir))
	}
	if isDir(i.ExtractDir(mod, gameDir)) {
		return true
	}
	if strings.TrimSpace(mod.DownloadURL) == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(i.PluginsDir(gameDir), mod.ArtifactFileName()))
	return err == nil && !info.IsDir()
}

// RemoveRuntime deletes the whole runtime directory, taking every installed mod with it.
// It reports whether there was anything to remove.
func (i *Installer) RemoveRuntime(gameDir string) (bool, error) {
	dir := i.RuntimeDir(gameDir)
	if !isDir(dir) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return true, fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	return true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/installer"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/sources"
)

// Fetcher returns the raw manifest text.
type Fetcher interface {
	Fetch(ctx context.Context) (sources.RawManifest, error)
}

// Installer places and removes mod artifacts. Uninstall is best effort and has no error to report.
type Installer interface {
	Install(ctx context.Context, mod *core.ModEntry, gameDir string) error
	Uninstall(mod *core.ModEntry, gameDir string)
	IsInstalled(mod *core.ModEntry, gameDir string) bool
	RemoveRuntime(gameDir string) (bool, error)
	PluginsDir(gameDir string) string
}

// Manager owns the loaded mod list and keeps every entry's enabled flag in line with the disk.
type Manager struct {
	fetcher   Fetcher
	resolvers []core.Resolver
	installer Installer
	recorder  core.ErrorRecorder
	logger    *log.Logger

	mu      sync.RWMutex
	gameDir string
	mods    core.ModList
	states  map[string]ModState

	// one mutex per mod key; requests for the same mod run one at a time
	locks sync.Map
}

type Option func(*Manager)

func WithFetcher(f Fetcher) Option {
	return func(m *Manager) {
		m.fetcher = f
	}
}

func WithResolvers(r ...core.Resolver) Option {
	return func(m *Manager) {
		m.resolvers = r
	}
}

func WithInstaller(i Installer) Option {
	return func(m *Manager) {
		m.installer = i
	}
}

// WithRecorder sets where failures are written for later inspection.
func WithRecorder(r core.ErrorRecorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithGameDir(dir string) Option {
	return func(m *Manager) {
		m.gameDir = dir
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		recorder: core.DiscardRecorder{},
		logger:   log.Default(),
		states:   make(map[string]ModState),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.installer == nil {
		m.installer = installer.New(installer.WithLogger(m.logger))
	}
	return m
}

func (m *Manager) GameDir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gameDir
}

func (m *Manager) SetGameDir(dir string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameDir = dir
}

// Mods returns the current list. The entries are shared; only the Manager changes Enabled.
func (m *Manager) Mods() core.ModList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append(core.ModList(nil), m.mods...)
}

func (m *Manager) Find(name string) (*core.ModEntry, bool) {
	return m.Mods().Find(name)
}

func (m *Manager) State(mod *core.ModEntry) ModState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.states[mod.Key()]; ok {
		return s
	}
	return stateOf(mod.Enabled)
}

func (m *Manager) setState(mod *core.ModEntry, s ModState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[mod.Key()] = s
}

// IsInstalled reports whether the mod's artifact is on disk in the current game directory.
func (m *Manager) IsInstalled(mod *core.ModEntry) bool {
	return m.installer.IsInstalled(mod, m.GameDir())
}

func (m *Manager) PluginsDir() (string, error) {
	gameDir := m.GameDir()
	if gameDir == "" {
		return "", fmt.Errorf("%w: game directory is not set", core.ErrConfiguration)
	}
	return m.installer.PluginsDir(gameDir), nil
}

// fail records err and returns it with the log location attached.
func (m *Manager) fail(msg string, err error) error {
	location := m.recorder.Record(msg, err)
	return fmt.Errorf("%w (see log: %s)", err, location)
}

// Load fetches, parses and resolves the manifest, then replaces the current list. On failure the
// previous list stays in place.
func (m *Manager) Load(ctx context.Context) error {
	if m.fetcher == nil {
		return fmt.Errorf("%w: no manifest source", core.ErrConfiguration)
	}

	raw, err := m.fetcher.Fetch(ctx)
	if err != nil {
		return m.fail("Failed to download the mods manifest", err)
	}

	mods, err := core.ParseManifest(raw.Text)
	if err != nil {
		if raw.SavedTo != "" {
			err = fmt.Errorf("%w (raw manifest: %s)", err, raw.SavedTo)
		}
		return m.fail("Failed to parse the mods manifest", err)
	}

	sources.ResolveAll(ctx, mods, m.resolvers, m.logger)
	mods = core.EnforceForcedDependency(mods)

	// only the runtime starts enabled, whatever the manifest says
	states := make(map[string]ModState, len(mods))
	for _, mod := range mods {
		mod.Enabled = mod.IsForced()
		states[mod.Key()] = stateOf(mod.Enabled)
	}

	m.mu.Lock()
	m.mods = mods
	m.states = states
	m.mu.Unlock()

	m.logger.Debug("manifest loaded", "mods", len(mods))
	return nil
}

func (m *Manager) lockFor(mod *core.ModEntry) *sync.Mutex {
	l, _ := m.locks.LoadOrStore(mod.Key(), &sync.Mutex{})
	return l.(*sync.Mutex)
}

// SetEnabled drives one enable or disable request to completion and returns the mod's new state.
//
// Disabling the runtime is refused with core.ErrOperationNotAllowed. Without a game directory the
// request fails with core.ErrConfiguration and nothing is touched on disk. A failed install restores
// the previous flag. Uninstall cannot fail.
func (m *Manager) SetEnabled(ctx context.Context, mod *core.ModEntry, enabled bool) (ModState, error) {
	lock := m.lockFor(mod)
	lock.Lock()
	defer lock.Unlock()

	if !enabled && mod.IsForced() {
		mod.Enabled = true
		m.setState(mod, Enabled)
		return Enabled, fmt.Errorf("%w: %s is required and cannot be disabled", core.ErrOperationNotAllowed, mod.Name)
	}

	gameDir := m.GameDir()
	if gameDir == "" {
		mod.Enabled = mod.IsForced()
		state := stateOf(mod.Enabled)
		m.setState(mod, state)
		return state, fmt.Errorf("%w: game directory is not set", core.ErrConfiguration)
	}

	if !enabled {
		m.setState(mod, Uninstalling)
		m.installer.Uninstall(mod, gameDir)
		mod.Enabled = false
		m.setState(mod, Disabled)
		m.logger.Info("disabled", "mod", mod.Name)
		return Disabled, nil
	}

	// the runtime is reinstalled on every request; the disk is the only record of what is installed
	prior := mod.Enabled
	m.setState(mod, Installing)
	if err := m.installer.Install(ctx, mod, gameDir); err != nil {
		mod.Enabled = prior
		state := stateOf(prior)
		m.setState(mod, state)
		return state, m.fail(fmt.Sprintf("Error installing %s", mod.Name), err)
	}
	mod.Enabled = true
	m.setState(mod, Enabled)
	m.logger.Info("enabled", "mod", mod.Name, "version", mod.Version)
	return Enabled, nil
}

// Result is the outcome of one request in a batch.
type Result struct {
	Mod   *core.ModEntry
	State ModState
	Err   error
}

// SetEnabledAll runs SetEnabled for every mod with at most workers requests in flight.
// Results come back in the order of mods.
func (m *Manager) SetEnabledAll(ctx context.Context, mods []*core.ModEntry, enabled bool, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(mods))

	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				state, err := m.SetEnabled(ctx, mods[idx], enabled)
				results[idx] = Result{Mod: mods[idx], State: state, Err: err}
			}
		}()
	}
	for idx := range mods {
		tasks <- idx
	}
	close(tasks)
	wg.Wait()
	return results
}

// Runtime returns the forced runtime entry of the loaded list.
func (m *Manager) Runtime() (*core.ModEntry, bool) {
	for _, mod := range m.Mods() {
		if mod.IsForced() {
			return mod, true
		}
	}
	return nil, false
}

// AdoptInstalled marks mods found on disk as enabled, so an update pass covers them.
// It returns the adopted entries.
func (m *Manager) AdoptInstalled() []*core.ModEntry {
	gameDir := m.GameDir()
	if gameDir == "" {
		return nil
	}
	var adopted []*core.ModEntry
	for _, mod := range m.Mods() {
		if mod.IsForced() || !m.installer.IsInstalled(mod, gameDir) {
			continue
		}
		lock := m.lockFor(mod)
		lock.Lock()
		if !mod.Enabled {
			mod.Enabled = true
			m.setState(mod, Enabled)
			adopted = append(adopted, mod)
		}
		lock.Unlock()
	}
	return adopted
}

// InstallEnabled installs or refreshes the runtime, then every enabled mod. A runtime failure
// stops the pass; other failures are collected and the remaining mods still install.
func (m *Manager) InstallEnabled(ctx context.Context, workers int) (int, error) {
	if m.GameDir() == "" {
		return 0, fmt.Errorf("%w: game directory is not set", core.ErrConfiguration)
	}

	runtime, ok := m.Runtime()
	if !ok {
		return 0, errors.New("no runtime entry loaded")
	}
	if _, err := m.SetEnabled(ctx, runtime, true); err != nil {
		return 0, err
	}

	var enabled []*core.ModEntry
	for _, mod := range m.Mods() {
		if mod.Enabled && !mod.IsForced() {
			enabled = append(enabled, mod)
		}
	}

	var errs []error
	installed := 0
	for _, r := range m.SetEnabledAll(ctx, enabled, true, workers) {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		installed++
	}
	return installed, errors.Join(errs...)
}

// RemoveRuntime deletes the runtime directory with every mod in it and disables all mods.
// It reports whether anything was there.
func (m *Manager) RemoveRuntime() (bool, error) {
	gameDir := m.GameDir()
	if gameDir == "" {
		return false, fmt.Errorf("%w: game directory is not set", core.ErrConfiguration)
	}

	removed, err := m.installer.RemoveRuntime(gameDir)
	if err != nil {
		return removed, m.fail("Failed to remove mods", err)
	}

	for _, mod := range m.Mods() {
		if mod.IsForced() {
			continue
		}
		lock := m.lockFor(mod)
		lock.Lock()
		mod.Enabled = false
		m.setState(mod, Disabled)
		lock.Unlock()
	}
	return removed, nil
}

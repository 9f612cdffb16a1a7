package manager

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/core"
	"github.com/SpeedRunnerVilska/Stalking-Stairs-Mod-Manager/sources"
)

type fakeFetcher struct {
	raw sources.RawManifest
	err error
}

func (f fakeFetcher) Fetch(context.Context) (sources.RawManifest, error) {
	return f.raw, f.err
}

func manifest(text string) fakeFetcher {
	return fakeFetcher{raw: sources.RawManifest{Text: text, SavedTo: "/logs/manifest.json"}}
}

type fakeInstaller struct {
	mu          sync.Mutex
	installed   map[string]bool
	failing     map[string]error
	installs    []string
	uninstalls  []string
	delay       time.Duration
	inFlight    map[string]int
	maxInFlight map[string]int
	removed     bool
}

func newFakeInstaller() *fakeInstaller {
	return &fakeInstaller{
		installed:   map[string]bool{},
		failing:     map[string]error{},
		inFlight:    map[string]int{},
		maxInFlight: map[string]int{},
	}
}

func (f *fakeInstaller) enter(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight[name]++
	if f.inFlight[name] > f.maxInFlight[name] {
		f.maxInFlight[name] = f.inFlight[name]
	}
}

func (f *fakeInstaller) leave(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight[name]--
}

func (f *fakeInstaller) Install(_ context.Context, mod *core.ModEntry, _ string) error {
	f.enter(mod.Name)
	defer f.leave(mod.Name)
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, mod.Name)
	if err := f.failing[mod.Name]; err != nil {
		return core.NewInstallError(mod, err)
	}
	f.installed[mod.Name] = true
	return nil
}

func (f *fakeInstaller) Uninstall(mod *core.ModEntry, _ string) {
	f.enter(mod.Name)
	defer f.leave(mod.Name)
	time.Sleep(f.delay)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uninstalls = append(f.uninstalls, mod.Name)
	delete(f.installed, mod.Name)
}

func (f *fakeInstaller) IsInstalled(mod *core.ModEntry, _ string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.installed[mod.Name]
}

func (f *fakeInstaller) RemoveRuntime(string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	had := len(f.installed) > 0
	f.installed = map[string]bool{}
	f.removed = true
	return had, nil
}

func (f *fakeInstaller) PluginsDir(gameDir string) string {
	return gameDir + "/BepInEx/plugins"
}

type recorder struct {
	mu       sync.Mutex
	contexts []string
}

func (r *recorder) Record(context string, _ error) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts = append(r.contexts, context)
	return "/logs/errors.log"
}

func newTestManager(fetcher Fetcher, inst Installer, opts ...Option) *Manager {
	return New(append([]Option{
		WithFetcher(fetcher),
		WithInstaller(inst),
		WithGameDir("/game"),
		WithLogger(log.New(io.Discard)),
	}, opts...)...)
}

const fooManifest = `{"mods":[{"name":"Foo","downloadUrl":"https://github.com/ex/foo/releases/download/v1.0/foo.zip"}]}`

func TestLoadSynthesizesRuntime(t *testing.T) {
	m := newTestManager(manifest(fooManifest), newFakeInstaller())

	require.NoError(t, m.Load(context.Background()))

	mods := m.Mods()
	require.Len(t, mods, 2)
	assert.Equal(t, core.ForcedName, mods[0].Name)
	assert.True(t, mods[0].Enabled)
	assert.Equal(t, Enabled, m.State(mods[0]))
	assert.Equal(t, "Foo", mods[1].Name)
	assert.Equal(t, "", mods[1].Version)
	assert.False(t, mods[1].Enabled)
	assert.Equal(t, Disabled, m.State(mods[1]))
}

func TestLoadShapeInvariance(t *testing.T) {
	wrapped := newTestManager(manifest(`{"mods":[{"name":"A","version":"1"},{"NAME":"B","enabled":true}]}`), newFakeInstaller())
	bare := newTestManager(manifest(`[{"name":"A","version":"1"},{"name":"B","enabled":true}]`), newFakeInstaller())

	require.NoError(t, wrapped.Load(context.Background()))
	require.NoError(t, bare.Load(context.Background()))

	assert.Equal(t, wrapped.Mods(), bare.Mods())
}

func TestLoadIgnoresManifestEnabled(t *testing.T) {
	m := newTestManager(manifest(`[{"name":"A","enabled":true},{"name":"BepInEx","enabled":false,"version":"0.1"}]`), newFakeInstaller())

	require.NoError(t, m.Load(context.Background()))

	a, ok := m.Find("a")
	require.True(t, ok)
	assert.False(t, a.Enabled)

	runtime, ok := m.Runtime()
	require.True(t, ok)
	assert.True(t, runtime.Enabled)
	assert.Equal(t, core.ForcedVersion, runtime.Version)
	assert.Equal(t, core.ForcedDownloadURL, runtime.DownloadURL)
}

func TestLoadFailureKeepsPreviousList(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fakeFetcher
		target  error
	}{
		{"Fetch failure", fakeFetcher{err: core.ErrManifestUnavailable}, core.ErrManifestUnavailable},
		{"Malformed manifest", manifest(`{"plugins":[]}`), core.ErrManifestMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			m := newTestManager(manifest(fooManifest), newFakeInstaller(), WithRecorder(rec))
			require.NoError(t, m.Load(context.Background()))
			before := m.Mods()

			m.fetcher = tt.fetcher
			err := m.Load(context.Background())

			assert.True(t, errors.Is(err, tt.target))
			assert.Contains(t, err.Error(), "/logs/errors.log")
			assert.Len(t, rec.contexts, 1)
			assert.Equal(t, before, m.Mods())
		})
	}
}

func TestLoadRunsResolvers(t *testing.T) {
	res := &stubResolver{version: "9.9"}
	m := newTestManager(manifest(`[{"name":"A","gitPath":"ex/a"}]`), newFakeInstaller(), WithResolvers(res))

	require.NoError(t, m.Load(context.Background()))

	a, ok := m.Find("A")
	require.True(t, ok)
	assert.Equal(t, "9.9", a.Version)
	assert.Equal(t, "https://github.com/ex/a", res.seenURL.Load())
}

type stubResolver struct {
	version string
	seenURL atomic.Value
}

func (r *stubResolver) GetName() string { return "stub" }

func (r *stubResolver) Matches(mod *core.ModEntry) bool { return mod.GitPath != "" }

func (r *stubResolver) Resolve(_ context.Context, mod *core.ModEntry) error {
	r.seenURL.Store(mod.DownloadURL)
	mod.Version = r.version
	return nil
}

func loaded(t *testing.T, inst Installer, opts ...Option) *Manager {
	t.Helper()
	m := newTestManager(manifest(`[{"name":"Foo","downloadUrl":"https://h/foo.dll"},{"name":"Bar","downloadUrl":"https://h/bar.zip"}]`), inst, opts...)
	require.NoError(t, m.Load(context.Background()))
	return m
}

func TestEnable(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")

	state, err := m.SetEnabled(context.Background(), foo, true)

	require.NoError(t, err)
	assert.Equal(t, Enabled, state)
	assert.True(t, foo.Enabled)
	assert.Equal(t, []string{"Foo"}, inst.installs)
}

func TestEnableFailureRollsBack(t *testing.T) {
	inst := newFakeInstaller()
	inst.failing["Foo"] = errors.New("connection refused")
	rec := &recorder{}
	m := loaded(t, inst, WithRecorder(rec))
	foo, _ := m.Find("Foo")

	state, err := m.SetEnabled(context.Background(), foo, true)

	assert.Equal(t, Disabled, state)
	assert.False(t, foo.Enabled)
	assert.True(t, errors.Is(err, core.ErrInstallFailed))
	assert.Contains(t, err.Error(), "see log: /logs/errors.log")
	assert.Equal(t, []string{"Error installing Foo"}, rec.contexts)
	assert.False(t, m.IsInstalled(foo))
}

func TestReinstallFailureKeepsEnabled(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")
	_, err := m.SetEnabled(context.Background(), foo, true)
	require.NoError(t, err)

	inst.failing["Foo"] = errors.New("disk full")
	state, err := m.SetEnabled(context.Background(), foo, true)

	assert.Error(t, err)
	assert.Equal(t, Enabled, state)
	assert.True(t, foo.Enabled)
}

func TestDisable(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")
	_, err := m.SetEnabled(context.Background(), foo, true)
	require.NoError(t, err)

	state, err := m.SetEnabled(context.Background(), foo, false)

	require.NoError(t, err)
	assert.Equal(t, Disabled, state)
	assert.False(t, foo.Enabled)
	assert.Equal(t, []string{"Foo"}, inst.uninstalls)
}

func TestDisableNotInstalled(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	bar, _ := m.Find("Bar")

	state, err := m.SetEnabled(context.Background(), bar, false)

	require.NoError(t, err)
	assert.Equal(t, Disabled, state)
}

func TestDisableRuntimeNotAllowed(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	runtime, _ := m.Runtime()

	state, err := m.SetEnabled(context.Background(), runtime, false)

	assert.True(t, errors.Is(err, core.ErrOperationNotAllowed))
	assert.Equal(t, Enabled, state)
	assert.True(t, runtime.Enabled)
	assert.Empty(t, inst.uninstalls)
}

func TestDisableRuntimeNotAllowedWithoutGameDir(t *testing.T) {
	m := loaded(t, newFakeInstaller())
	m.SetGameDir("")
	runtime, _ := m.Runtime()

	_, err := m.SetEnabled(context.Background(), runtime, false)

	assert.True(t, errors.Is(err, core.ErrOperationNotAllowed))
	assert.True(t, runtime.Enabled)
}

func TestEnableRuntimeAlwaysInstalls(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	runtime, _ := m.Runtime()

	for i := 0; i < 3; i++ {
		state, err := m.SetEnabled(context.Background(), runtime, true)
		require.NoError(t, err)
		assert.Equal(t, Enabled, state)
	}
	assert.Equal(t, []string{core.ForcedName, core.ForcedName, core.ForcedName}, inst.installs)
}

func TestNoGameDir(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	m.SetGameDir("")
	foo, _ := m.Find("Foo")
	runtime, _ := m.Runtime()

	state, err := m.SetEnabled(context.Background(), foo, true)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
	assert.Equal(t, Disabled, state)
	assert.False(t, foo.Enabled)

	state, err = m.SetEnabled(context.Background(), runtime, true)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
	assert.Equal(t, Enabled, state)
	assert.True(t, runtime.Enabled)

	assert.Empty(t, inst.installs)
	assert.Empty(t, inst.uninstalls)

	_, err = m.PluginsDir()
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestSameModRequestsAreSerialized(t *testing.T) {
	inst := newFakeInstaller()
	inst.delay = 10 * time.Millisecond
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")
	bar, _ := m.Find("Bar")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		enabled := i%2 == 0
		go func() {
			defer wg.Done()
			_, _ = m.SetEnabled(context.Background(), foo, enabled)
		}()
		go func() {
			defer wg.Done()
			_, _ = m.SetEnabled(context.Background(), bar, true)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inst.maxInFlight["Foo"])
	assert.Equal(t, 1, inst.maxInFlight["Bar"])
	assert.Equal(t, foo.Enabled, inst.IsInstalled(foo, ""))
}

func TestSetEnabledAll(t *testing.T) {
	inst := newFakeInstaller()
	inst.failing["Bar"] = errors.New("boom")
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")
	bar, _ := m.Find("Bar")
	runtime, _ := m.Runtime()

	results := m.SetEnabledAll(context.Background(), []*core.ModEntry{foo, bar, runtime}, true, 3)

	require.Len(t, results, 3)
	assert.Same(t, foo, results[0].Mod)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, Enabled, results[0].State)
	assert.True(t, errors.Is(results[1].Err, core.ErrInstallFailed))
	assert.Equal(t, Disabled, results[1].State)
	assert.NoError(t, results[2].Err)
}

func TestInstallEnabled(t *testing.T) {
	inst := newFakeInstaller()
	inst.failing["Bar"] = errors.New("boom")
	m := newTestManager(manifest(`[{"name":"Foo","downloadUrl":"https://h/foo.dll"},{"name":"Bar","downloadUrl":"https://h/bar.zip"},{"name":"Baz","downloadUrl":"https://h/baz.dll"}]`), inst)
	require.NoError(t, m.Load(context.Background()))
	for _, name := range []string{"Foo", "Bar"} {
		mod, _ := m.Find(name)
		mod.Enabled = true
	}

	n, err := m.InstallEnabled(context.Background(), 2)

	assert.Equal(t, 1, n)
	assert.True(t, errors.Is(err, core.ErrInstallFailed))
	assert.Equal(t, core.ForcedName, inst.installs[0])
	assert.ElementsMatch(t, []string{core.ForcedName, "Foo", "Bar"}, inst.installs)
	bar, _ := m.Find("Bar")
	assert.True(t, bar.Enabled, "a failed refresh keeps the previous flag")
}

func TestInstallEnabledRuntimeFailureStops(t *testing.T) {
	inst := newFakeInstaller()
	inst.failing[core.ForcedName] = errors.New("offline")
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")
	foo.Enabled = true

	_, err := m.InstallEnabled(context.Background(), 2)

	assert.True(t, errors.Is(err, core.ErrInstallFailed))
	assert.Equal(t, []string{core.ForcedName}, inst.installs)
}

func TestAdoptInstalled(t *testing.T) {
	inst := newFakeInstaller()
	inst.installed["Bar"] = true
	inst.installed[core.ForcedName] = true
	m := loaded(t, inst)

	adopted := m.AdoptInstalled()

	require.Len(t, adopted, 1)
	assert.Equal(t, "Bar", adopted[0].Name)
	assert.True(t, adopted[0].Enabled)
	assert.Equal(t, Enabled, m.State(adopted[0]))
}

func TestRemoveRuntime(t *testing.T) {
	inst := newFakeInstaller()
	m := loaded(t, inst)
	foo, _ := m.Find("Foo")
	_, err := m.SetEnabled(context.Background(), foo, true)
	require.NoError(t, err)

	removed, err := m.RemoveRuntime()

	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, foo.Enabled)
	runtime, _ := m.Runtime()
	assert.True(t, runtime.Enabled)

	m.SetGameDir("")
	_, err = m.RemoveRuntime()
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestModStateString(t *testing.T) {
	assert.Equal(t, "disabled", Disabled.String())
	assert.Equal(t, "installing", Installing.String())
	assert.Equal(t, "enabled", Enabled.String())
	assert.Equal(t, "uninstalling", Uninstalling.String())
}

package registry

import (
	"context"
	"testing"

	"github.com/leeforge/console/errors"
	"github.com/leeforge/console/plugin"
	"go.uber.org/zap"
)

// --- Test Helpers ---

func newTestRegistry() *Registry {
	return New(Config{Logger: zap.NewNop()})
}

func desc(name string, deps ...string) plugin.Descriptor {
	return plugin.Descriptor{
		Name:         name,
		Kind:         plugin.KindModule,
		Version:      "1.0.0",
		Dependencies: deps,
	}
}

func descWithServer(name string, factory plugin.Factory, deps ...string) plugin.Descriptor {
	d := desc(name, deps...)
	d.Capabilities.Server = factory
	return d
}

func mustRegister(t *testing.T, r *Registry, d plugin.Descriptor) {
	t.Helper()
	if err := r.Register(d); err != nil {
		t.Fatalf("Register(%q) failed: %v", d.Name, err)
	}
}

func mustActivate(t *testing.T, r *Registry, name string) {
	t.Helper()
	if err := r.Activate(context.Background(), name); err != nil {
		t.Fatalf("Activate(%q) failed: %v", name, err)
	}
}

func wantCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := errors.CodeOf(err); got != code {
		t.Fatalf("error code = %s, want %s (err: %v)", got, code, err)
	}
}

// --- Tests ---

func TestRegister_DuplicateFailsWithoutMutation(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("dup"))

	err := r.Register(desc("dup"))
	wantCode(t, err, errors.CodePluginAlreadyExists)

	snap := r.State()
	if len(snap.Plugins) != 1 {
		t.Errorf("catalog holds %d entries, want exactly 1", len(snap.Plugins))
	}
}

func TestRegister_InvalidDescriptorRejected(t *testing.T) {
	r := newTestRegistry()

	cases := []plugin.Descriptor{
		{Name: "", Kind: plugin.KindModule},
		{Name: "bad-kind", Kind: plugin.Kind("widget")},
		{Name: "empty-dep", Kind: plugin.KindCore, Dependencies: []string{""}},
	}
	for _, d := range cases {
		err := r.Register(d)
		wantCode(t, err, errors.CodeRegistrationFailed)
	}

	if snap := r.State(); len(snap.Plugins) != 0 {
		t.Errorf("invalid descriptors must not enter the catalog, got %d", len(snap.Plugins))
	}
}

func TestRegister_StartsIdle(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("fresh"))

	info, ok := r.GetPlugin("fresh")
	if !ok {
		t.Fatal("GetPlugin should find the registered plugin")
	}
	if info.Status != plugin.StatusIdle {
		t.Errorf("status = %v, want idle", info.Status)
	}
	if info.Loaded || info.LoadedAt != nil {
		t.Error("fresh plugin should not be loaded")
	}
}

func TestUnregister_NotFound(t *testing.T) {
	r := newTestRegistry()
	wantCode(t, r.Unregister("ghost"), errors.CodePluginNotFound)
}

func TestUnregister_BlockedByRegisteredDependent(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("base"))
	mustRegister(t, r, desc("addon", "base"))

	// The dependent is merely registered, not active, and still blocks.
	err := r.Unregister("base")
	wantCode(t, err, errors.CodeHasDependents)

	if _, ok := r.GetPlugin("base"); !ok {
		t.Error("failed unregister must not remove the plugin")
	}
}

func TestUnregister_DeactivatesFirst(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("solo"))
	mustActivate(t, r, "solo")

	if err := r.Unregister("solo"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}
	if r.IsPluginActive("solo") {
		t.Error("unregistered plugin must leave the active set")
	}
	if _, ok := r.GetPlugin("solo"); ok {
		t.Error("plugin should be gone from the catalog")
	}
}

func TestUnregister_ClearsSelection(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("page"))
	r.SelectPlugin("page", "settings")

	if err := r.Unregister("page"); err != nil {
		t.Fatalf("Unregister failed: %v", err)
	}

	nav := r.State().Navigation
	if nav.SelectedPlugin != "" || nav.SelectedPage != "" {
		t.Errorf("selection = (%q, %q), want cleared", nav.SelectedPlugin, nav.SelectedPage)
	}
}

func TestQueries_ActiveAndLoadedViews(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, descWithServer("srv", func(ctx context.Context) (any, error) {
		return "payload", nil
	}))
	mustRegister(t, r, desc("plain"))

	mustActivate(t, r, "srv")
	mustActivate(t, r, "plain")

	if got := r.ActivePlugins(); len(got) != 2 || got[0] != "plain" || got[1] != "srv" {
		t.Errorf("ActivePlugins = %v, want [plain srv]", got)
	}
	if !r.IsPluginLoaded("srv") {
		t.Error("srv should be loaded after activation")
	}
	if r.IsPluginLoaded("plain") {
		t.Error("plain has no server capability and should not report loaded")
	}
	if v, ok := r.Capability("srv"); !ok || v != "payload" {
		t.Errorf("Capability(srv) = (%v, %v), want (payload, true)", v, ok)
	}
	if r.HasErrors() {
		t.Error("no failures should be recorded")
	}
}

func TestState_SnapshotIsDetached(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("a"))
	r.SelectPlugin("a")

	snap := r.State()
	snap.Navigation.History[0] = "tampered"
	snap.Active = append(snap.Active, "tampered")

	if got := r.State().Navigation.History[0]; got != "a" {
		t.Errorf("snapshot mutation leaked into registry: history[0] = %q", got)
	}
}

package registry

import "testing"

func TestSelectPlugin_HistoryAndCursor(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"x", "y", "z"} {
		mustRegister(t, r, desc(name))
		r.SelectPlugin(name)
	}

	nav := r.State().Navigation
	if len(nav.History) != 3 || nav.History[0] != "x" || nav.History[1] != "y" || nav.History[2] != "z" {
		t.Fatalf("history = %v, want [x y z]", nav.History)
	}
	if nav.Cursor != 2 {
		t.Fatalf("cursor = %d, want 2", nav.Cursor)
	}

	if !r.NavigateBack() {
		t.Fatal("first NavigateBack should move")
	}
	nav = r.State().Navigation
	if nav.SelectedPlugin != "y" || nav.Cursor != 1 {
		t.Errorf("after back: selected = %q cursor = %d, want y/1", nav.SelectedPlugin, nav.Cursor)
	}

	if !r.NavigateBack() {
		t.Fatal("second NavigateBack should move")
	}
	if r.NavigateBack() {
		t.Error("third NavigateBack at the boundary should report false")
	}

	nav = r.State().Navigation
	if nav.SelectedPlugin != "x" || nav.Cursor != 0 {
		t.Errorf("boundary no-op changed state: selected = %q cursor = %d", nav.SelectedPlugin, nav.Cursor)
	}
}

func TestNavigateForward(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("a"))
	mustRegister(t, r, desc("b"))
	r.SelectPlugin("a")
	r.SelectPlugin("b")

	if r.NavigateForward() {
		t.Error("forward at the newest entry should report false")
	}
	if !r.NavigateBack() {
		t.Fatal("back should move")
	}
	if !r.NavigateForward() {
		t.Fatal("forward should move after back")
	}

	nav := r.State().Navigation
	if nav.SelectedPlugin != "b" || nav.Cursor != 1 {
		t.Errorf("after forward: selected = %q cursor = %d, want b/1", nav.SelectedPlugin, nav.Cursor)
	}
}

func TestNavigation_EmptyHistoryBounds(t *testing.T) {
	r := newTestRegistry()
	if r.NavigateBack() || r.NavigateForward() {
		t.Error("navigation on empty history should report false")
	}
	if nav := r.State().Navigation; nav.Cursor != -1 {
		t.Errorf("cursor = %d, want -1", nav.Cursor)
	}
}

func TestSelectPlugin_UnregisteredIsSilentNoOp(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("real"))
	r.SelectPlugin("real")

	r.SelectPlugin("ghost")

	nav := r.State().Navigation
	if nav.SelectedPlugin != "real" {
		t.Errorf("selected = %q, want real", nav.SelectedPlugin)
	}
	if len(nav.History) != 1 {
		t.Errorf("history = %v, unregistered select must not append", nav.History)
	}
}

func TestSelectPlugin_ConsecutiveDuplicatesAppend(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("same"))
	r.SelectPlugin("same")
	r.SelectPlugin("same")

	nav := r.State().Navigation
	if len(nav.History) != 2 {
		t.Errorf("history = %v, re-selecting should still append", nav.History)
	}
	if nav.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", nav.Cursor)
	}
}

func TestSelectPlugin_AppendsAfterBack(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"x", "y"} {
		mustRegister(t, r, desc(name))
		r.SelectPlugin(name)
	}
	r.NavigateBack()

	// Selecting appends to the end; no forward-history truncation.
	r.SelectPlugin("x")

	nav := r.State().Navigation
	if len(nav.History) != 3 || nav.History[2] != "x" {
		t.Errorf("history = %v, want [x y x]", nav.History)
	}
	if nav.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", nav.Cursor)
	}
}

func TestSelectPage_DoesNotTouchHistory(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("app"))
	r.SelectPlugin("app", "home")
	r.SelectPage("app", "settings")

	nav := r.State().Navigation
	if nav.SelectedPage != "settings" {
		t.Errorf("selectedPage = %q, want settings", nav.SelectedPage)
	}
	if len(nav.History) != 1 || nav.Cursor != 0 {
		t.Errorf("history/cursor = %v/%d, SelectPage must not touch them", nav.History, nav.Cursor)
	}

	r.SelectPage("ghost", "anywhere")
	if got := r.State().Navigation.SelectedPlugin; got != "app" {
		t.Errorf("SelectPage on unregistered name mutated selection to %q", got)
	}
}

func TestClearNavigation(t *testing.T) {
	r := newTestRegistry()
	mustRegister(t, r, desc("a"))
	r.SelectPlugin("a", "p")

	r.ClearNavigation()

	nav := r.State().Navigation
	if nav.SelectedPlugin != "" || nav.SelectedPage != "" || len(nav.History) != 0 || nav.Cursor != -1 {
		t.Errorf("navigation not reset: %+v", nav)
	}
}

func TestCursorInvariantAfterMutations(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"a", "b", "c"} {
		mustRegister(t, r, desc(name))
	}

	steps := []func(){
		func() { r.SelectPlugin("a") },
		func() { r.SelectPlugin("b") },
		func() { r.NavigateBack() },
		func() { r.SelectPlugin("c") },
		func() { r.NavigateBack() },
		func() { r.NavigateForward() },
		func() { r.ClearNavigation() },
		func() { r.NavigateForward() },
	}
	for i, step := range steps {
		step()
		nav := r.State().Navigation
		// Invariant: -1 <= cursor < len(history), with -1 for "no position".
		if nav.Cursor < -1 || (nav.Cursor >= len(nav.History) && nav.Cursor != -1) {
			t.Fatalf("step %d broke the cursor invariant: cursor=%d history=%v", i, nav.Cursor, nav.History)
		}
	}
}

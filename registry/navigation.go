package registry

// navigationState is a cursor-addressed history of selected plugins.
// The cursor invariant -1 <= cursor < len(history) holds after every
// mutation; -1 means "nothing visited yet".
type navigationState struct {
	selectedPlugin string
	selectedPage   string
	history        []string
	cursor         int
}

func newNavigationState() navigationState {
	return navigationState{cursor: -1}
}

// SelectPlugin makes the named plugin the current selection and appends
// it to the history, moving the cursor to the new last entry. Selecting
// an unregistered name is a silent no-op. Re-selecting the current
// plugin still appends, so the history may hold consecutive duplicates,
// like plain browser history.
func (r *Registry) SelectPlugin(name string, page ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; !ok {
		return
	}

	r.nav.selectedPlugin = name
	r.nav.selectedPage = ""
	if len(page) > 0 {
		r.nav.selectedPage = page[0]
	}
	r.nav.history = append(r.nav.history, name)
	r.nav.cursor = len(r.nav.history) - 1
}

// SelectPage updates the current selection to a sub-page of the named
// plugin without touching the history or cursor. Unregistered names are
// ignored, matching SelectPlugin.
func (r *Registry) SelectPage(name, page string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; !ok {
		return
	}
	r.nav.selectedPlugin = name
	r.nav.selectedPage = page
}

// NavigateBack moves the cursor one step back in the history and selects
// that plugin. It reports whether a move occurred; at the start of the
// history it is a no-op.
func (r *Registry) NavigateBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nav.cursor <= 0 {
		return false
	}
	r.nav.cursor--
	r.nav.selectedPlugin = r.nav.history[r.nav.cursor]
	return true
}

// NavigateForward moves the cursor one step forward in the history and
// selects that plugin. It reports whether a move occurred; at the end of
// the history it is a no-op.
func (r *Registry) NavigateForward() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nav.cursor < 0 || r.nav.cursor >= len(r.nav.history)-1 {
		return false
	}
	r.nav.cursor++
	r.nav.selectedPlugin = r.nav.history[r.nav.cursor]
	return true
}

// ClearNavigation resets the selection, history and cursor to their
// initial empty values.
func (r *Registry) ClearNavigation() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nav = newNavigationState()
}

// clearSelectionLocked drops the current selection if it points at the
// named plugin. The history is left intact.
func (r *Registry) clearSelectionLocked(name string) {
	if r.nav.selectedPlugin == name {
		r.nav.selectedPlugin = ""
		r.nav.selectedPage = ""
	}
}

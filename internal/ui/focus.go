package ui

// focusCoordinator decides when the rename field takes keyboard focus. It is
// called after every edit transition and reports true once per transition to
// a new id, and only when that row's field is on screen.
type focusCoordinator struct {
	focusedID string
}

func (f *focusCoordinator) observe(editingID string, mounted bool) bool {
	if editingID == "" {
		f.focusedID = ""
		return false
	}
	if editingID == f.focusedID || !mounted {
		return false
	}
	f.focusedID = editingID
	return true
}

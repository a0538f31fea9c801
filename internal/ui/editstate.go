package ui

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// EditSession is the rename in progress: which conversation, and the text
// typed so far.
type EditSession struct {
	ID    string
	Draft string
}

// editController owns the only mutable edit state of the panel. A nil
// session means nothing is being renamed, so two rows can never both be in
// rename mode. Sessions are replaced, never mutated, because the Sidebar is
// copied by value on every Update.
type editController struct {
	session  *EditSession
	onRename func(id, title string) tea.Cmd
}

func (e *editController) startEdit(id, title string) {
	e.session = &EditSession{ID: id, Draft: title}
	slog.Debug("edit started", "id", id)
}

func (e *editController) updateDraft(text string) {
	if e.session == nil {
		return
	}
	e.session = &EditSession{ID: e.session.ID, Draft: text}
}

// commit ends the session for id. The rename callback only fires for a
// non-blank title.
func (e *editController) commit(id string) tea.Cmd {
	if e.session == nil || e.session.ID != id {
		return nil
	}
	title := strings.TrimSpace(e.session.Draft)
	e.session = nil

	if title == "" {
		slog.Debug("edit abandoned, blank title", "id", id)
		return nil
	}
	slog.Debug("edit committed", "id", id, "title", title)
	if e.onRename == nil {
		return nil
	}
	return e.onRename(id, title)
}

func (e *editController) cancel() {
	if e.session == nil {
		return
	}
	slog.Debug("edit cancelled", "id", e.session.ID)
	e.session = nil
}

func (e editController) editing() bool { return e.session != nil }

func (e editController) editingID() string {
	if e.session == nil {
		return ""
	}
	return e.session.ID
}

func (e editController) draft() string {
	if e.session == nil {
		return ""
	}
	return e.session.Draft
}

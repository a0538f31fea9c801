package ui

import (
	"strings"
	"unicode"

	"council/internal/models"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
)

// Panel layout, in cells
const (
	newButtonLine = 1
	headerLines   = 3 // title, new button, blank
	rowLines      = 2 // title line, meta line
	footerLines   = 1 // hover label
	actionsWidth  = 4 // " ✎ ✗"
	markerWidth   = 1
)

// Clickable zone kinds
const (
	zoneNew       = "new"
	zoneRow       = "row"
	zoneRename    = "rename"
	zoneDelete    = "delete"
	zoneEditField = "edit"
)

const emptyStateText = "No conversations yet"

// Callbacks are the host hooks fired by the panel. Any of them may be nil.
// The returned command is handed back to the bubbletea runtime.
type Callbacks struct {
	OnSelect func(id string) tea.Cmd
	OnNew    func() tea.Cmd
	OnDelete func(id string, ev tea.Msg) tea.Cmd
	OnRename func(id, title string) tea.Cmd
}

// SelectConversationMsg asks the host to open a conversation
type SelectConversationMsg struct{ ID string }

// NewConversationMsg asks the host to create a conversation
type NewConversationMsg struct{}

// DeleteConversationMsg asks the host to delete a conversation. Event is the
// mouse or key message that triggered it.
type DeleteConversationMsg struct {
	ID    string
	Event tea.Msg
}

// RenameConversationMsg carries a trimmed, non-empty title for a conversation
type RenameConversationMsg struct {
	ID    string
	Title string
}

// MessageCallbacks returns callbacks that report each gesture to the host as
// a message.
func MessageCallbacks() Callbacks {
	return Callbacks{
		OnSelect: func(id string) tea.Cmd {
			return func() tea.Msg { return SelectConversationMsg{ID: id} }
		},
		OnNew: func() tea.Cmd {
			return func() tea.Msg { return NewConversationMsg{} }
		},
		OnDelete: func(id string, ev tea.Msg) tea.Cmd {
			return func() tea.Msg { return DeleteConversationMsg{ID: id, Event: ev} }
		},
		OnRename: func(id, title string) tea.Cmd {
			return func() tea.Msg { return RenameConversationMsg{ID: id, Title: title} }
		},
	}
}

func (c Callbacks) selectConversation(id string) tea.Cmd {
	if c.OnSelect == nil {
		return nil
	}
	return c.OnSelect(id)
}

func (c Callbacks) newConversation() tea.Cmd {
	if c.OnNew == nil {
		return nil
	}
	return c.OnNew()
}

func (c Callbacks) deleteConversation(id string, ev tea.Msg) tea.Cmd {
	if c.OnDelete == nil {
		return nil
	}
	return c.OnDelete(id, ev)
}

// Sidebar is the conversation panel: a list of conversations with in-place
// rename. It never modifies the conversations it is given; every change goes
// through Callbacks.
type Sidebar struct {
	conversations []models.Conversation
	selectedID    string

	width   int
	height  int
	offset  int
	cursor  int
	hoverID string
	focused bool

	edit  editController
	focus focusCoordinator
	input textinput.Model

	zones  *zone.Manager
	prefix string

	keys      KeyMap
	callbacks Callbacks
}

// NewSidebar creates an empty panel wired to cb
func NewSidebar(cb Callbacks) Sidebar {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 100

	zones := zone.New()
	s := Sidebar{
		input:     ti,
		zones:     zones,
		prefix:    zones.NewPrefix(),
		keys:      DefaultKeyMap(),
		callbacks: cb,
		edit:      editController{onRename: cb.OnRename},
	}
	s.SetSize(30, 20)
	return s
}

// SetConversations replaces the displayed sequence. A rename in progress for
// a conversation that is no longer listed is dropped.
func (s *Sidebar) SetConversations(convs []models.Conversation) {
	s.conversations = convs
	if id := s.edit.editingID(); id != "" && s.indexOf(id) < 0 {
		s.edit.cancel()
		s.syncFocus()
	}
	s.clampCursor()
}

// SetSelected marks the active conversation
func (s *Sidebar) SetSelected(id string) {
	s.selectedID = id
	if i := s.indexOf(id); i >= 0 && !s.edit.editing() {
		s.cursor = i
		s.ensureVisible()
	}
}

// SetSize sets the panel dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = max(width, actionsWidth+markerWidth+4)
	s.height = max(height, headerLines+rowLines+footerLines)
	s.input.Width = s.titleWidth() - 1
	s.ensureVisible()
}

// Focus gives the panel keyboard input
func (s *Sidebar) Focus() {
	s.focused = true
}

// Blur takes keyboard input away from the panel. A rename in progress is
// committed, as if the text field lost focus.
func (s *Sidebar) Blur() tea.Cmd {
	s.focused = false
	if id := s.edit.editingID(); id != "" {
		return s.commitEdit(id)
	}
	return nil
}

// Focused reports whether the panel has keyboard input
func (s Sidebar) Focused() bool { return s.focused }

// Editing reports whether a rename is in progress
func (s Sidebar) Editing() bool { return s.edit.editing() }

// EditingID returns the conversation being renamed, or ""
func (s Sidebar) EditingID() string { return s.edit.editingID() }

// Draft returns the rename text typed so far
func (s Sidebar) Draft() string { return s.edit.draft() }

// SelectedID returns the active conversation id
func (s Sidebar) SelectedID() string { return s.selectedID }

// InputFocused reports whether the rename field has keyboard focus
func (s Sidebar) InputFocused() bool { return s.input.Focused() }

// HoverLabel returns the full title of the row under the mouse, or ""
func (s Sidebar) HoverLabel() string {
	if i := s.indexOf(s.hoverID); i >= 0 {
		return s.conversations[i].DisplayTitle()
	}
	return ""
}

// Keys returns the panel key bindings
func (s Sidebar) Keys() KeyMap { return s.keys }

// Scan strips the zone markers from the fully composed frame and records
// where each zone landed. The host calls it once on its outermost view.
func (s Sidebar) Scan(view string) string { return s.zones.Scan(view) }

// Update handles mouse and key input for the panel
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.MouseMsg:
		cmd = s.handleMouse(msg)
	case tea.KeyMsg:
		if !s.focused {
			return s, nil
		}
		if s.edit.editing() {
			cmd = s.handleEditKey(msg)
		} else {
			cmd = s.handleKey(msg)
		}
	default:
		if s.edit.editing() {
			s.input, cmd = s.input.Update(msg)
		}
	}

	return s, batch(cmd, s.syncFocus())
}

func (s *Sidebar) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		return s.commitEdit(s.edit.editingID())
	case tea.KeyEsc:
		s.cancelEdit()
		return nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.edit.updateDraft(s.input.Value())
	return cmd
}

func (s *Sidebar) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Up):
		s.moveCursor(-1)
	case key.Matches(msg, s.keys.Down):
		s.moveCursor(1)
	case key.Matches(msg, s.keys.New):
		return s.callbacks.newConversation()
	case len(s.conversations) == 0:
		return nil
	case key.Matches(msg, s.keys.Select):
		return s.callbacks.selectConversation(s.conversations[s.cursor].ID)
	case key.Matches(msg, s.keys.Rename):
		return s.startEdit(s.cursor)
	case key.Matches(msg, s.keys.Delete):
		return s.callbacks.deleteConversation(s.conversations[s.cursor].ID, msg)
	}
	return nil
}

func (s *Sidebar) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch {
	case msg.Action == tea.MouseActionMotion:
		s.hoverID = ""
		if h, ok := s.hit(msg); ok {
			s.hoverID = h.id
		}
	case msg.Button == tea.MouseButtonWheelUp:
		s.scroll(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		s.scroll(1)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		s.focused = true
		return s.handleClick(msg)
	}
	return nil
}

// handleClick dispatches a click to the zone that owns it. A rename in
// progress loses focus first unless the click lands in its own field.
func (s *Sidebar) handleClick(msg tea.MouseMsg) tea.Cmd {
	h, ok := s.hit(msg)

	var cmds []tea.Cmd
	if id := s.edit.editingID(); id != "" && h.kind != zoneEditField {
		if h.kind == zoneDelete && h.id == id {
			// the row is about to go away, keep its old title out of the store
			s.cancelEdit()
		} else {
			cmds = append(cmds, s.commitEdit(id))
		}
	}
	if !ok {
		return sequence(cmds...)
	}

	switch h.kind {
	case zoneEditField:
		// owned by the text field
	case zoneNew:
		cmds = append(cmds, s.callbacks.newConversation())
	case zoneRename:
		if i := s.indexOf(h.id); i >= 0 {
			cmds = append(cmds, s.startEdit(i))
		}
	case zoneDelete:
		cmds = append(cmds, s.callbacks.deleteConversation(h.id, msg))
	case zoneRow:
		if i := s.indexOf(h.id); i >= 0 {
			s.cursor = i
		}
		cmds = append(cmds, s.callbacks.selectConversation(h.id))
	}
	return sequence(cmds...)
}

func (s *Sidebar) startEdit(i int) tea.Cmd {
	if i < 0 || i >= len(s.conversations) {
		return nil
	}
	c := s.conversations[i]
	s.cursor = i
	s.ensureVisible()

	s.edit.startEdit(c.ID, c.DisplayTitle())
	s.input.SetValue(s.edit.draft())
	s.input.CursorEnd()
	return s.syncFocus()
}

func (s *Sidebar) commitEdit(id string) tea.Cmd {
	cmd := s.edit.commit(id)
	s.syncFocus()
	return cmd
}

func (s *Sidebar) cancelEdit() {
	s.edit.cancel()
	s.syncFocus()
}

// syncFocus runs after every edit transition and moves keyboard focus into
// the rename field when a new row enters rename mode.
func (s *Sidebar) syncFocus() tea.Cmd {
	id := s.edit.editingID()
	if id == "" {
		s.focus.observe("", false)
		s.input.Blur()
		return nil
	}
	if !s.focus.observe(id, s.mounted(id)) {
		return nil
	}
	return s.input.Focus()
}

// mounted reports whether the row for id is currently rendered
func (s Sidebar) mounted(id string) bool {
	i := s.indexOf(id)
	return i >= s.offset && i < s.offset+s.visibleRows()
}

func (s Sidebar) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range s.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s Sidebar) visibleRows() int {
	return max(1, (s.height-headerLines-footerLines)/rowLines)
}

func (s Sidebar) titleWidth() int {
	return s.width - actionsWidth - markerWidth
}

func (s *Sidebar) moveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

func (s *Sidebar) clampCursor() {
	s.cursor = min(s.cursor, len(s.conversations)-1)
	s.cursor = max(s.cursor, 0)
	s.ensureVisible()
}

func (s *Sidebar) ensureVisible() {
	vis := s.visibleRows()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+vis {
		s.offset = s.cursor - vis + 1
	}
	s.clampOffset()
}

func (s *Sidebar) scroll(delta int) {
	s.offset += delta
	s.clampOffset()
}

func (s *Sidebar) clampOffset() {
	s.offset = min(s.offset, len(s.conversations)-s.visibleRows())
	s.offset = max(s.offset, 0)
}

// zoneHit is the zone a mouse event landed in
type zoneHit struct {
	kind string
	id   string
}

func (s Sidebar) zoneID(kind, id string) string {
	return s.prefix + kind + ":" + id
}

func (s Sidebar) mark(kind, id, v string) string {
	return s.zones.Mark(s.zoneID(kind, id), v)
}

func (s Sidebar) inZone(kind, id string, msg tea.MouseMsg) bool {
	z := s.zones.Get(s.zoneID(kind, id))
	return z != nil && z.InBounds(msg)
}

// hit resolves msg against the zones of the last scanned frame. Only rows
// still on screen are considered, and the zones nested in a row are tested
// before the row itself so they own their cells.
func (s Sidebar) hit(msg tea.MouseMsg) (zoneHit, bool) {
	if s.inZone(zoneNew, "", msg) {
		return zoneHit{kind: zoneNew}, true
	}

	editing := s.edit.editingID()
	end := min(s.offset+s.visibleRows(), len(s.conversations))
	for i := s.offset; i < end; i++ {
		id := s.conversations[i].ID
		if id == editing && s.inZone(zoneEditField, id, msg) {
			return zoneHit{kind: zoneEditField, id: id}, true
		}
		for _, kind := range []string{zoneRename, zoneDelete, zoneRow} {
			if s.inZone(kind, id, msg) {
				return zoneHit{kind: kind, id: id}, true
			}
		}
	}
	return zoneHit{}, false
}

// View renders the panel
func (s Sidebar) View() string {
	lines := make([]string, 0, s.height)
	lines = append(lines,
		PanelTitleStyle.Render(fit("LLM Council", s.width)),
		s.mark(zoneNew, "", NewButtonStyle.Render(fit("+ New Conversation", s.width))),
		"",
	)

	if len(s.conversations) == 0 {
		lines = append(lines, EmptyStyle.Render(fit(emptyStateText, s.width)))
	} else {
		end := min(s.offset+s.visibleRows(), len(s.conversations))
		for i := s.offset; i < end; i++ {
			lines = append(lines, s.renderRow(i)...)
		}
	}

	for len(lines) < s.height-footerLines {
		lines = append(lines, "")
	}
	lines = append(lines, HelpStyle.Render(fit(s.HoverLabel(), s.width)))
	return strings.Join(lines, "\n")
}

// renderRow renders conversation i as exactly rowLines lines
func (s Sidebar) renderRow(i int) []string {
	c := s.conversations[i]

	marker := " "
	if s.focused && i == s.cursor {
		marker = "▌"
	}

	var title string
	if c.ID == s.edit.editingID() {
		title = s.mark(zoneEditField, c.ID, padCells(s.input.View(), s.titleWidth()))
	} else {
		title = fit(c.DisplayTitle(), s.titleWidth())
	}

	style := RowStyle
	if c.ID == s.selectedID {
		style = ActiveRowStyle
	}

	actions := s.mark(zoneRename, c.ID, " "+RenameIconStyle.Render("✎")) +
		s.mark(zoneDelete, c.ID, " "+DeleteIconStyle.Render("✗"))
	row := style.Render(marker+title) + actions + "\n" +
		MetaStyle.Render(fit("  "+c.MetaLine(), s.width))
	return strings.Split(s.mark(zoneRow, c.ID, row), "\n")
}

// fit truncates or pads plain text to exactly w cells on a single line
func fit(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(singleLine(s), w, "…"), w)
}

// singleLine turns line breaks and other control characters into spaces
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// padCells pads already styled text to w cells
func padCells(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func batch(cmds ...tea.Cmd) tea.Cmd {
	cmds = compact(cmds)
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// sequence runs cmds in order, so a rename committed by a click is
// delivered before whatever the click itself asked for.
func sequence(cmds ...tea.Cmd) tea.Cmd {
	cmds = compact(cmds)
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Sequence(cmds...)
}

func compact(cmds []tea.Cmd) []tea.Cmd {
	var out []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

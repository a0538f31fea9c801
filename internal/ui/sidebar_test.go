package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"council/internal/models"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWidth  = 30
	testHeight = 20
)

// recorder logs every callback in call order
type recorder struct {
	log          []string
	deleteEvents []tea.Msg
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnSelect: func(id string) tea.Cmd {
			r.log = append(r.log, "select:"+id)
			return nil
		},
		OnNew: func() tea.Cmd {
			r.log = append(r.log, "new")
			return nil
		},
		OnDelete: func(id string, ev tea.Msg) tea.Cmd {
			r.log = append(r.log, "delete:"+id)
			r.deleteEvents = append(r.deleteEvents, ev)
			return nil
		},
		OnRename: func(id, title string) tea.Cmd {
			r.log = append(r.log, fmt.Sprintf("rename:%s:%s", id, title))
			return nil
		},
	}
}

func sampleConversations() []models.Conversation {
	return []models.Conversation{
		{ID: "a", Title: "Trip", Messages: make([]models.Message, 3)},
		{ID: "b", Title: ""},
	}
}

func newTestSidebar(convs []models.Conversation) (Sidebar, *recorder) {
	rec := &recorder{}
	s := NewSidebar(rec.callbacks())
	s.SetSize(testWidth, testHeight)
	s.SetConversations(convs)
	return s, rec
}

func rowY(i int) int { return headerLines + i*rowLines }
func renameX() int   { return testWidth - actionsWidth + 1 }
func deleteX() int   { return testWidth - 1 }
func titleX() int    { return 3 }
func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

var frames int

// scan records the zones of view the way the host does once per frame, and
// waits until the zone manager has stored them
func scan(t *testing.T, zones *zone.Manager, view string) {
	t.Helper()
	frames++
	done := fmt.Sprintf("frame-%d", frames)
	zones.Scan(view + "\n" + zones.Mark(done, "."))
	require.Eventually(t, func() bool { return zones.Get(done) != nil }, time.Second, time.Millisecond)
}

// send delivers msgs in order. Mouse events are resolved against a freshly
// scanned frame, as they are at runtime.
func send(t *testing.T, s Sidebar, msgs ...tea.Msg) Sidebar {
	t.Helper()
	for _, msg := range msgs {
		if _, ok := msg.(tea.MouseMsg); ok {
			scan(t, s.zones, s.View())
		}
		s, _ = s.Update(msg)
	}
	return s
}

func runes(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	escape    = tea.KeyMsg{Type: tea.KeyEsc}
	clearLine = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func viewLines(s Sidebar) []string {
	return strings.Split(s.View(), "\n")
}

// countZones counts the conversations that have a zone of kind in the
// current frame
func countZones(s Sidebar, kind string) int {
	view := s.View()
	n := 0
	for _, c := range s.conversations {
		marked := s.mark(kind, c.ID, "x")
		if strings.Contains(view, marked[:strings.IndexByte(marked, 'x')]) {
			n++
		}
	}
	return n
}

func TestSidebar_RowCountMatchesSequence(t *testing.T) {
	for _, n := range []int{0, 1, 3, 8} {
		t.Run(fmt.Sprintf("%d conversations", n), func(t *testing.T) {
			convs := make([]models.Conversation, n)
			for i := range convs {
				convs[i] = models.Conversation{ID: fmt.Sprintf("c%d", i), Title: fmt.Sprintf("Chat %d", i)}
			}
			s, _ := newTestSidebar(convs)
			view := s.View()

			assert.Equal(t, n, countZones(s, zoneRow))
			if n == 0 {
				assert.Equal(t, 1, strings.Count(view, emptyStateText))
				return
			}
			assert.NotContains(t, view, emptyStateText)
			for i, c := range convs {
				assert.Contains(t, viewLines(s)[rowY(i)], c.Title)
			}
		})
	}
}

func TestSidebar_ScrollsLongLists(t *testing.T) {
	convs := make([]models.Conversation, 20)
	for i := range convs {
		convs[i] = models.Conversation{ID: fmt.Sprintf("c%d", i), Title: fmt.Sprintf("Chat %d", i)}
	}
	s, _ := newTestSidebar(convs)
	vis := s.visibleRows()
	require.Less(t, vis, len(convs))
	assert.Equal(t, vis, countZones(s, zoneRow))

	s.SetSelected("c19")
	assert.Contains(t, viewLines(s)[rowY(vis-1)], "Chat 19")

	s = send(t, s, tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	assert.Contains(t, viewLines(s)[rowY(vis-1)], "Chat 18")
}

func TestSidebar_PlaceholderAndMeta(t *testing.T) {
	s, _ := newTestSidebar(sampleConversations())
	lines := viewLines(s)

	assert.Contains(t, lines[rowY(0)], "Trip")
	assert.Contains(t, lines[rowY(0)+1], "3 messages")
	assert.Contains(t, lines[rowY(1)], models.PlaceholderTitle)
	assert.Contains(t, lines[rowY(1)+1], "0 messages")
}

func TestSidebar_EndToEndRename(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())
	s.SetSelected("a")
	assert.Contains(t, viewLines(s)[rowY(1)], "New Conversation")

	s = send(t, s, click(renameX(), rowY(1)))
	require.Equal(t, "b", s.EditingID())
	assert.Equal(t, models.PlaceholderTitle, s.Draft())
	assert.True(t, s.InputFocused())
	assert.Empty(t, rec.log, "rename click must not select")

	s = send(t, s, clearLine, runes("Notes"))
	assert.Equal(t, "Notes", s.Draft())
	assert.Contains(t, viewLines(s)[rowY(1)], "Notes")

	s = send(t, s, enter)
	assert.Equal(t, []string{"rename:b:Notes"}, rec.log)
	assert.False(t, s.Editing())
	assert.False(t, s.InputFocused())
	assert.Zero(t, countZones(s, zoneEditField))

	s = send(t, s, click(titleX(), rowY(0)))
	assert.Equal(t, []string{"rename:b:Notes", "select:a"}, rec.log)
}

func TestSidebar_CommitTrimsAndRejectsBlank(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		want  []string
	}{
		{"whitespace only", "  ", nil},
		{"padded", "  Trip Plan  ", []string{"rename:a:Trip Plan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestSidebar(sampleConversations())
			s = send(t, s, click(renameX(), rowY(0)), clearLine, runes(tt.typed))
			assert.Equal(t, tt.typed, s.Draft(), "no trimming while typing")

			s = send(t, s, enter)
			assert.Equal(t, tt.want, rec.log)
			assert.False(t, s.Editing())
		})
	}
}

func TestSidebar_EscapeCancels(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())
	s = send(t, s, click(renameX(), rowY(0)), clearLine, runes("Something else"), escape)

	assert.Empty(t, rec.log)
	assert.False(t, s.Editing())
	assert.Contains(t, viewLines(s)[rowY(0)], "Trip")
}

func TestSidebar_ClickIsolation(t *testing.T) {
	t.Run("rename affordance", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		s = send(t, s, click(renameX(), rowY(0)))
		assert.Empty(t, rec.log)
		assert.Equal(t, "a", s.EditingID())
	})

	t.Run("delete affordance", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		ev := click(deleteX(), rowY(0))
		s = send(t, s, ev)
		assert.Equal(t, []string{"delete:a"}, rec.log)
		assert.False(t, s.Editing())
		require.Len(t, rec.deleteEvents, 1)
		assert.Equal(t, ev, rec.deleteEvents[0])
	})

	t.Run("meta line selects", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		send(t, s, click(deleteX(), rowY(1)+1))
		assert.Equal(t, []string{"select:b"}, rec.log)
	})

	t.Run("new button", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		send(t, s, click(2, newButtonLine))
		assert.Equal(t, []string{"new"}, rec.log)
	})

	t.Run("edit field claims its clicks", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		s = send(t, s, click(renameX(), rowY(0)), click(titleX(), rowY(0)))
		assert.Empty(t, rec.log)
		assert.Equal(t, "a", s.EditingID())
	})
}

func TestSidebar_SingleEditSession(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())
	s = send(t, s, click(renameX(), rowY(0)), click(renameX(), rowY(1)))

	assert.Equal(t, "b", s.EditingID())
	assert.Equal(t, 1, countZones(s, zoneEditField))
	assert.Equal(t, []string{"rename:a:Trip"}, rec.log, "leaving a's field commits it")
	assert.True(t, s.InputFocused())
}

func TestSidebar_RestartOnSameRowRefocuses(t *testing.T) {
	s, _ := newTestSidebar(sampleConversations())
	s = send(t, s, click(renameX(), rowY(0)), clearLine, runes("Tr"))
	s = send(t, s, click(renameX(), rowY(0)))

	assert.Equal(t, "a", s.EditingID())
	assert.Equal(t, "Trip", s.Draft())
	assert.True(t, s.InputFocused())
}

func TestSidebar_BlurCommits(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())
	s = send(t, s, click(renameX(), rowY(1)), clearLine, runes("Notes"))

	s.Blur()
	assert.Equal(t, []string{"rename:b:Notes"}, rec.log)
	assert.False(t, s.Editing())
	assert.False(t, s.Focused())
}

func TestSidebar_ClickElsewhereCommitsFirst(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())
	s = send(t, s, click(renameX(), rowY(0)), clearLine, runes("Lisbon"), click(titleX(), rowY(1)))

	assert.Equal(t, []string{"rename:a:Lisbon", "select:b"}, rec.log)
	assert.False(t, s.Editing())
}

func TestSidebar_DeleteWhileEditing(t *testing.T) {
	t.Run("same row discards the draft", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		s = send(t, s, click(renameX(), rowY(0)), clearLine, runes("Lisbon"), click(deleteX(), rowY(0)))
		assert.Equal(t, []string{"delete:a"}, rec.log)
		assert.False(t, s.Editing())
	})

	t.Run("other row commits first", func(t *testing.T) {
		s, rec := newTestSidebar(sampleConversations())
		s = send(t, s, click(renameX(), rowY(0)), clearLine, runes("Lisbon"), click(deleteX(), rowY(1)))
		assert.Equal(t, []string{"rename:a:Lisbon", "delete:b"}, rec.log)
	})
}

func TestSidebar_Keyboard(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())

	s = send(t, s, runes("j"), enter)
	assert.Empty(t, rec.log, "keys ignored while the panel is blurred")

	s.Focus()
	s = send(t, s, runes("j"), enter)
	assert.Equal(t, []string{"select:b"}, rec.log)

	s = send(t, s, runes("r"))
	assert.Equal(t, "b", s.EditingID())
	assert.True(t, s.InputFocused())
	s = send(t, s, runes("d"))
	assert.Equal(t, "New Conversationd", s.Draft(), "keys go to the field while renaming")
	s = send(t, s, escape)

	del := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}
	s = send(t, s, tea.KeyMsg{Type: tea.KeyUp}, del, runes("n"))
	assert.Equal(t, []string{"select:b", "delete:a", "new"}, rec.log)
	require.Len(t, rec.deleteEvents, 1)
	assert.Equal(t, del, rec.deleteEvents[0])
}

func TestSidebar_KeyboardOnEmptyList(t *testing.T) {
	s, rec := newTestSidebar(nil)
	s.Focus()
	s = send(t, s, enter, runes("r"), runes("d"), runes("n"))

	assert.Equal(t, []string{"new"}, rec.log)
	assert.False(t, s.Editing())
}

func TestSidebar_HoverLabel(t *testing.T) {
	long := "A very long conversation title that cannot fit"
	s, _ := newTestSidebar([]models.Conversation{{ID: "a", Title: long}, {ID: "b"}})

	assert.NotContains(t, s.View(), long)

	s = send(t, s, tea.MouseMsg{X: titleX(), Y: rowY(0), Action: tea.MouseActionMotion})
	assert.Equal(t, long, s.HoverLabel())

	s = send(t, s, tea.MouseMsg{X: titleX(), Y: rowY(1) + 1, Action: tea.MouseActionMotion})
	assert.Equal(t, models.PlaceholderTitle, s.HoverLabel())

	s = send(t, s, tea.MouseMsg{X: titleX(), Y: testHeight - 2, Action: tea.MouseActionMotion})
	assert.Equal(t, "", s.HoverLabel())
}

func TestSidebar_EditedRowRemoved(t *testing.T) {
	s, rec := newTestSidebar(sampleConversations())
	s = send(t, s, click(renameX(), rowY(1)))
	require.True(t, s.Editing())

	s.SetConversations(sampleConversations()[:1])
	assert.False(t, s.Editing())
	assert.False(t, s.InputFocused())
	assert.Empty(t, rec.log)
}

func TestSidebar_DoesNotMutateSequence(t *testing.T) {
	convs := sampleConversations()
	s, _ := newTestSidebar(convs)
	send(t, s, click(renameX(), rowY(1)), clearLine, runes("Notes"), enter)

	assert.Equal(t, sampleConversations(), convs)
}

func TestMessageCallbacks(t *testing.T) {
	s := NewSidebar(MessageCallbacks())
	s.SetSize(testWidth, testHeight)
	s.SetConversations(sampleConversations())

	scan(t, s.zones, s.View())
	s, cmd := s.Update(click(titleX(), rowY(1)))
	require.NotNil(t, cmd)
	assert.Equal(t, SelectConversationMsg{ID: "b"}, cmd())

	s = send(t, s, click(renameX(), rowY(0)), clearLine, runes("Notes"))
	s, cmd = s.Update(enter)
	require.NotNil(t, cmd)
	assert.Equal(t, RenameConversationMsg{ID: "a", Title: "Notes"}, cmd())

	ev := click(deleteX(), rowY(1))
	scan(t, s.zones, s.View())
	_, cmd = s.Update(ev)
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteConversationMsg{ID: "b", Event: ev}, cmd())

	scan(t, s.zones, s.View())
	_, cmd = s.Update(click(0, newButtonLine))
	require.NotNil(t, cmd)
	assert.Equal(t, NewConversationMsg{}, cmd())
}

func TestSidebar_MultiLineTitleKeepsRowHeight(t *testing.T) {
	convs := []models.Conversation{
		{ID: "a", Title: "first line\nsecond line", Messages: make([]models.Message, 1)},
		{ID: "b", Title: "Bee"},
	}
	s, rec := newTestSidebar(convs)

	lines := viewLines(s)
	require.Len(t, lines, testHeight)
	assert.Contains(t, lines[rowY(0)], "first line second line")
	assert.Contains(t, lines[rowY(0)+1], "1 message")
	assert.Contains(t, lines[rowY(1)], "Bee")

	s = send(t, s, click(titleX(), rowY(0)+1), click(titleX(), rowY(1)))
	assert.Equal(t, []string{"select:a", "select:b"}, rec.log)

	s = send(t, s, tea.MouseMsg{X: titleX(), Y: rowY(0), Action: tea.MouseActionMotion})
	lines = viewLines(s)
	require.Len(t, lines, testHeight)
	assert.Contains(t, lines[testHeight-1], "first line second line")
}

func TestSidebar_WhitespaceTitleIsKept(t *testing.T) {
	s, _ := newTestSidebar([]models.Conversation{{ID: "a", Title: "   "}})
	assert.NotContains(t, viewLines(s)[rowY(0)], models.PlaceholderTitle)

	s = send(t, s, click(renameX(), rowY(0)))
	assert.Equal(t, "   ", s.Draft())
}

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"council/internal/assistant"
	"council/internal/models"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

type FocusState int

const (
	FocusSidebar FocusState = iota
	FocusChat
)

const autoTitleWidth = 30

// Store persists conversations for the host
type Store interface {
	LoadConversations() ([]models.Conversation, error)
	CreateConversation(conv models.Conversation) error
	SaveConversation(conv models.Conversation) error
	RenameConversation(conversationID, title string) error
	DeleteConversation(conversationID string) error
}

// Model represents the main application state
type Model struct {
	viewport      viewport.Model
	textarea      textarea.Model
	sidebar       Sidebar
	conversations []models.Conversation
	currentConvID string
	completer     assistant.Completer
	store         Store
	loading       bool
	err           error
	ready         bool
	focus         FocusState
	width         int
	height        int
	sidebarWidth  int
}

// ResponseMsg represents a message from the model API
type ResponseMsg struct {
	ConversationID string
	Content        string
	Err            error
}

// NewModel creates a new UI model
func NewModel(completer assistant.Completer, store Store) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.Focus()

	vp := viewport.New(50, 20)

	var loadErr error
	conversations, err := store.LoadConversations()
	if err != nil {
		slog.Error("failed to load conversations", "error", err)
		loadErr = fmt.Errorf("failed to load conversations: %v", err)
		conversations = nil
	}

	var currentConvID string
	if len(conversations) > 0 {
		currentConvID = conversations[0].ID
	}

	sidebar := NewSidebar(MessageCallbacks())
	sidebar.SetConversations(conversations)
	sidebar.SetSelected(currentConvID)

	m := &Model{
		textarea:      ta,
		viewport:      vp,
		sidebar:       sidebar,
		conversations: conversations,
		currentConvID: currentConvID,
		completer:     completer,
		store:         store,
		err:           loadErr,
		focus:         FocusChat,
		sidebarWidth:  30,
	}
	m.updateViewport()
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// NewConversation creates a new, untitled conversation
func NewConversation() models.Conversation {
	now := time.Now()
	return models.Conversation{
		ID:       uuid.NewString(),
		Messages: []models.Message{},
		Created:  now,
		Updated:  now,
	}
}

// Update handles UI events and state changes
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		sbCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatWidth := msg.Width - m.sidebarWidth - 2
		chatHeight := msg.Height - 6

		if !m.ready {
			m.viewport = viewport.New(chatWidth, chatHeight)
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = chatHeight
		}
		m.textarea.SetWidth(chatWidth - 2)
		m.sidebar.SetSize(m.sidebarWidth, msg.Height-1)
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if !m.sidebar.Editing() {
				return m, tea.Quit
			}
		case tea.KeyTab:
			if m.focus == FocusSidebar {
				return m, m.focusChat()
			}
			m.focusSidebar()
			return m, nil
		case tea.KeyCtrlN:
			return m, sequence(m.sidebar.Blur(), m.sidebar.callbacks.newConversation())
		}

		if m.focus == FocusSidebar {
			m.sidebar, sbCmd = m.sidebar.Update(msg)
			return m, sbCmd
		}
		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}
		m.textarea, tiCmd = m.textarea.Update(msg)
		return m, tiCmd

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case SelectConversationMsg:
		m.selectConversation(msg.ID)
		return m, m.focusChat()

	case NewConversationMsg:
		return m, m.newConversation()

	case DeleteConversationMsg:
		m.deleteConversation(msg.ID, msg.Event)
		return m, nil

	case RenameConversationMsg:
		m.renameConversation(msg.ID, msg.Title)
		return m, nil

	case ResponseMsg:
		m.handleResponse(msg)
		return m, nil
	}

	// cursor blinks and other ticks
	m.sidebar, sbCmd = m.sidebar.Update(msg)
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, batch(sbCmd, tiCmd, vpCmd)
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	inSidebar := msg.X < m.sidebarWidth
	switch {
	case msg.Action == tea.MouseActionMotion:
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return cmd
	case inSidebar:
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress {
			m.focusSidebar()
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return cmd
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		return m.focusChat()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func (m *Model) focusSidebar() {
	m.focus = FocusSidebar
	m.textarea.Blur()
	m.sidebar.Focus()
}

// focusChat moves input to the chat box. Leaving the panel commits any
// rename in progress.
func (m *Model) focusChat() tea.Cmd {
	m.focus = FocusChat
	cmd := m.sidebar.Blur()
	return batch(cmd, m.textarea.Focus())
}

func (m *Model) refreshSidebar() {
	m.sidebar.SetConversations(m.conversations)
	m.sidebar.SetSelected(m.currentConvID)
}

func (m *Model) selectConversation(id string) {
	if m.indexOf(id) < 0 {
		return
	}
	m.currentConvID = id
	m.sidebar.SetSelected(id)
	m.updateViewport()
}

func (m *Model) newConversation() tea.Cmd {
	conv := NewConversation()
	if err := m.store.CreateConversation(conv); err != nil {
		slog.Error("failed to create conversation", "error", err)
		m.err = fmt.Errorf("failed to create conversation: %v", err)
		m.updateViewport()
		return nil
	}
	slog.Info("conversation created", "id", conv.ID)

	m.conversations = append(m.conversations, conv)
	m.currentConvID = conv.ID
	m.refreshSidebar()
	m.updateViewport()
	return m.focusChat()
}

func (m *Model) deleteConversation(id string, ev tea.Msg) {
	idx := m.indexOf(id)
	if idx < 0 {
		return
	}
	if err := m.store.DeleteConversation(id); err != nil {
		slog.Error("failed to delete conversation", "id", id, "error", err)
		m.err = fmt.Errorf("failed to delete conversation: %v", err)
		m.updateViewport()
		return
	}
	slog.Info("conversation deleted", "id", id, "via", fmt.Sprintf("%T", ev))

	remaining := make([]models.Conversation, 0, len(m.conversations)-1)
	remaining = append(remaining, m.conversations[:idx]...)
	remaining = append(remaining, m.conversations[idx+1:]...)
	m.conversations = remaining

	if id == m.currentConvID {
		m.currentConvID = ""
		switch {
		case idx < len(remaining):
			m.currentConvID = remaining[idx].ID
		case len(remaining) > 0:
			m.currentConvID = remaining[len(remaining)-1].ID
		}
	}
	m.refreshSidebar()
	m.updateViewport()
}

func (m *Model) renameConversation(id, title string) {
	idx := m.indexOf(id)
	if idx < 0 {
		return
	}
	if err := m.store.RenameConversation(id, title); err != nil {
		slog.Error("failed to rename conversation", "id", id, "error", err)
		m.err = fmt.Errorf("failed to rename conversation: %v", err)
		m.updateViewport()
		return
	}
	slog.Info("conversation renamed", "id", id, "title", title)

	// the panel holds the old slice; hand it a fresh one
	convs := make([]models.Conversation, len(m.conversations))
	copy(convs, m.conversations)
	convs[idx].Title = title
	m.conversations = convs
	m.refreshSidebar()
}

// submit sends the chat input as a user message
func (m *Model) submit() tea.Cmd {
	content := strings.TrimSpace(m.textarea.Value())
	if m.loading || content == "" {
		return nil
	}

	if m.currentConvID == "" {
		conv := NewConversation()
		if err := m.store.CreateConversation(conv); err != nil {
			m.err = fmt.Errorf("failed to create conversation: %v", err)
			m.updateViewport()
			return nil
		}
		m.conversations = append(m.conversations, conv)
		m.currentConvID = conv.ID
	}

	idx := m.indexOf(m.currentConvID)
	convs := make([]models.Conversation, len(m.conversations))
	copy(convs, m.conversations)
	conv := &convs[idx]

	conv.Messages = append(append([]models.Message(nil), conv.Messages...), models.Message{
		Role:    "user",
		Content: content,
		Time:    time.Now(),
	})
	// Title an untitled conversation after its first message
	if conv.Title == "" && len(conv.Messages) == 1 {
		conv.Title = runewidth.Truncate(strings.Join(strings.Fields(content), " "), autoTitleWidth, "...")
	}
	if err := m.store.SaveConversation(*conv); err != nil {
		slog.Error("failed to save conversation", "id", conv.ID, "error", err)
		m.err = fmt.Errorf("failed to save conversation: %v", err)
	}
	m.conversations = convs

	m.loading = true
	m.textarea.Reset()
	m.refreshSidebar()
	m.updateViewport()
	return m.sendMessage(conv.ID, conv.Messages)
}

func (m *Model) handleResponse(msg ResponseMsg) {
	m.loading = false
	if msg.Err != nil {
		slog.Error("completion failed", "id", msg.ConversationID, "error", msg.Err)
		m.err = msg.Err
		m.updateViewport()
		return
	}

	idx := m.indexOf(msg.ConversationID)
	if idx < 0 {
		// deleted while waiting
		return
	}
	convs := make([]models.Conversation, len(m.conversations))
	copy(convs, m.conversations)
	conv := &convs[idx]
	conv.Messages = append(append([]models.Message(nil), conv.Messages...), models.Message{
		Role:    "assistant",
		Content: msg.Content,
		Time:    time.Now(),
	})
	if err := m.store.SaveConversation(*conv); err != nil {
		slog.Error("failed to save conversation", "id", conv.ID, "error", err)
		m.err = fmt.Errorf("failed to save conversation: %v", err)
	}
	m.conversations = convs
	m.refreshSidebar()
	m.updateViewport()
}

func (m Model) indexOf(id string) int {
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) getCurrentConversation() *models.Conversation {
	if i := m.indexOf(m.currentConvID); i >= 0 {
		return &m.conversations[i]
	}
	return nil
}

func (m *Model) updateViewport() {
	var content strings.Builder

	currentConv := m.getCurrentConversation()
	if currentConv == nil || len(currentConv.Messages) == 0 {
		content.WriteString("Welcome to LLM Council!\n")
		content.WriteString("Start typing to begin a conversation.\n\n")
		content.WriteString(HelpStyle.Render("Controls:\n"))
		content.WriteString(HelpStyle.Render("• Tab - Switch between conversations and chat\n"))
		content.WriteString(HelpStyle.Render("• Ctrl+N - New conversation\n"))
		for _, b := range m.sidebar.Keys().ShortHelp() {
			h := b.Help()
			content.WriteString(HelpStyle.Render(fmt.Sprintf("• %s - %s conversation\n", h.Key, h.Desc)))
		}
		content.WriteString(HelpStyle.Render("• Ctrl+C / Esc - Quit\n\n"))
	} else {
		for _, msg := range currentConv.Messages {
			timeStr := msg.Time.Format("15:04:05")

			author := AssistantStyle.Render("Assistant")
			if msg.Role == "user" {
				author = UserStyle.Render("You")
			}
			content.WriteString(MessageStyle.Render(
				author + " " + TimestampStyle.Render("["+timeStr+"]") + "\n" +
					msg.Content + "\n\n",
			))
		}
	}

	if m.loading {
		content.WriteString(MessageStyle.Render(
			LoadingStyle.Render("Assistant is typing...") + "\n",
		))
	}

	if m.err != nil {
		content.WriteString(MessageStyle.Render(
			ErrorStyle.Render("Error: " + m.err.Error() + "\n"),
		))
		m.err = nil
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

func (m Model) sendMessage(convID string, history []models.Message) tea.Cmd {
	completer := m.completer
	return func() tea.Msg {
		content, err := completer.Complete(context.Background(), history)
		return ResponseMsg{ConversationID: convID, Content: content, Err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	return m.sidebar.Scan(m.render())
}

// render composes the frame with the panel's click zones still marked
func (m Model) render() string {
	var sidebar string
	if m.focus == FocusSidebar {
		sidebar = SidebarFocusedStyle.Height(m.height - 1).Render(m.sidebar.View())
	} else {
		sidebar = SidebarStyle.Height(m.height - 1).Render(m.sidebar.View())
	}

	chatWidth := m.width - m.sidebarWidth - 2
	chatHeader := TitleStyle.Width(chatWidth).Render(m.chatTitle())
	chatArea := ChatStyle.Width(chatWidth).Render(
		fmt.Sprintf("%s\n%s\n%s", chatHeader, m.viewport.View(), m.textarea.View()),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chatArea)
}

func (m Model) chatTitle() string {
	if i := m.indexOf(m.currentConvID); i >= 0 {
		return singleLine(m.conversations[i].DisplayTitle())
	}
	return "LLM Council"
}

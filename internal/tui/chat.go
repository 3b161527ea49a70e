package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/core/market"
	"github.com/hyeonlog/jangteo/internal/live"
)

// chatFocus tracks which pane owns key input on the chat screen.
type chatFocus int

const (
	focusRooms chatFocus = iota
	focusConversation
	focusCompose
)

// ChatOptions configures the chat screen.
type ChatOptions struct {
	Client  *api.Client
	Manager *live.Manager
	// Self is the logged-in member's nickname, used to align own messages.
	Self string
	// Room preselects a conversation, skipping the room list.
	Room string
}

// ChatModel is the Bubble Tea model for the chat screen: the room list
// pane plus the active conversation pane.
type ChatModel struct {
	client  *api.Client
	manager *live.Manager
	state   *live.ChatState
	self    string

	keys     chatKeyMap
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	cursor       int
	focus        chatFocus
	width        int
	height       int
	ready        bool
	loading      bool
	loadingOlder bool
	err          error
	quitting     bool
}

// NewChatModel creates the chat screen model.
func NewChatModel(opts ChatOptions) ChatModel {
	input := textinput.New()
	input.Placeholder = "message"
	input.CharLimit = 1000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := ChatModel{
		client:  opts.Client,
		manager: opts.Manager,
		state:   live.NewChatState(nil),
		self:    opts.Self,
		keys:    defaultChatKeyMap(),
		input:   input,
		spinner: sp,
		loading: true,
	}
	if opts.Room != "" {
		m.openRoom(opts.Room)
	}
	return m
}

// Init implements tea.Model.
func (m ChatModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		loadRooms(m.client),
		waitEvent(m.manager.Events()),
	}
	if m.state.RoomID != "" {
		cmds = append(cmds, loadHistory(m.client, m.state.RoomID))
	}
	return tea.Batch(cmds...)
}

// openRoom switches the active conversation and the push subscription.
func (m *ChatModel) openRoom(roomID string) {
	m.state.SetRoom(roomID)
	m.state.EnsureRoom(roomID)
	m.manager.Subscribe(live.RoomTopic(roomID))
	m.focus = focusCompose
	m.input.Focus()
	m.loading = true
	m.err = nil
}

// Update implements tea.Model.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case roomsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.loading = false
			return m, nil
		}
		m.state.SetRooms(msg.rooms)
		if m.state.RoomID == "" {
			m.loading = false
		}
		m.clampCursor()
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			if msg.roomID == m.state.RoomID {
				m.err = msg.err
				m.loading = false
			}
			return m, nil
		}
		if m.state.SetHistory(msg.roomID, msg.messages) {
			m.loading = false
			m.refreshConversation(true)
		}
		return m, nil

	case olderLoadedMsg:
		m.loadingOlder = false
		if msg.err != nil {
			if msg.roomID == m.state.RoomID {
				m.err = msg.err
			}
			return m, nil
		}
		if m.state.PrependOlder(msg.roomID, msg.messages) {
			m.refreshConversation(false)
		}
		return m, nil

	case sentMsg:
		if msg.err != nil {
			m.state.RemovePending(msg.pendingID)
			if msg.roomID == m.state.RoomID {
				m.err = msg.err
				m.refreshConversation(true)
			}
		}
		return m, nil

	case pushEventMsg:
		if !msg.ok {
			return m, nil
		}
		if msg.event.Kind == live.KindMessage {
			if m.state.ApplyMessage(msg.event.Message) {
				m.refreshConversation(m.viewport.AtBottom())
			}
		}
		return m, waitEvent(m.manager.Events())
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.focus {
	case focusRooms:
		return m.handleRoomsKey(msg)
	case focusCompose:
		return m.handleComposeKey(msg)
	default:
		return m.handleConversationKey(msg)
	}
}

func (m ChatModel) handleRoomsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Rooms)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.cursor >= len(m.state.Rooms) {
			return m, nil
		}
		room := m.state.Rooms[m.cursor]
		m.openRoom(room.RoomID)
		return m, tea.Batch(
			loadHistory(m.client, room.RoomID),
			textinput.Blink,
		)
	}
	return m, nil
}

func (m ChatModel) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.input.Blur()
		m.focus = focusConversation
		return m, nil

	case key.Matches(msg, m.keys.Older):
		return m.fetchOlder()

	case key.Matches(msg, m.keys.Enter):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		pendingID := uuid.NewString()
		m.state.AppendPending(market.Message{
			RoomID:    m.state.RoomID,
			Sender:    m.self,
			Body:      text,
			PendingID: pendingID,
		})
		m.input.Reset()
		m.err = nil
		m.refreshConversation(true)
		return m, sendMessage(m.client, m.state.RoomID, text, pendingID)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) handleConversationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		m.focus = focusRooms
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		m.focus = focusCompose
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Older):
		return m.fetchOlder()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// fetchOlder loads the next older history page behind the cursor.
func (m ChatModel) fetchOlder() (tea.Model, tea.Cmd) {
	if m.loadingOlder || !m.state.Cursor.More || m.state.Cursor.OldestID == 0 {
		return m, nil
	}
	m.loadingOlder = true
	return m, loadOlder(m.client, m.state.RoomID, m.state.Cursor.OldestID)
}

func (m *ChatModel) clampCursor() {
	if m.cursor >= len(m.state.Rooms) {
		m.cursor = len(m.state.Rooms) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// layout recomputes pane sizes after a resize.
func (m *ChatModel) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	convWidth := m.width - roomListWidth - 3
	if convWidth < 20 {
		convWidth = 20
	}
	// Header, divider, compose line, help line.
	convHeight := m.height - 4
	if convHeight < 3 {
		convHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(convWidth, convHeight)
		m.ready = true
	} else {
		m.viewport.Width = convWidth
		m.viewport.Height = convHeight
	}
	m.input.Width = convWidth - 4
	m.refreshConversation(true)
}

// refreshConversation re-renders the message pane. When follow is true
// the viewport snaps to the newest message.
func (m *ChatModel) refreshConversation(follow bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	if follow {
		m.viewport.GotoBottom()
	}
}

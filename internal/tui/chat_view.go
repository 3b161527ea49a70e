package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hyeonlog/jangteo/internal/core/market"
	"github.com/hyeonlog/jangteo/internal/live"
)

const roomListWidth = 34

// View implements tea.Model.
func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.spinner.View() + " loading..."
	}

	left := m.renderRoomList()
	right := m.renderConversationPane()

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, dividerColumn(m.height-1), right)
	return body + "\n" + m.renderStatusLine()
}

func dividerColumn(height int) string {
	if height < 1 {
		height = 1
	}
	col := strings.TrimSuffix(strings.Repeat("│\n", height), "\n")
	return dividerStyle.Render(col)
}

func (m ChatModel) renderRoomList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Chats"))
	b.WriteString("\n")

	if m.loading && len(m.state.Rooms) == 0 {
		b.WriteString(m.spinner.View() + " loading rooms")
		return padToWidth(b.String(), roomListWidth)
	}
	if len(m.state.Rooms) == 0 {
		b.WriteString(subtleStyle.Render(" no conversations yet"))
		return padToWidth(b.String(), roomListWidth)
	}

	now := time.Now()
	for i, room := range m.state.Rooms {
		b.WriteString(m.renderRoomRow(room, i == m.cursor, now))
		b.WriteString("\n")
	}
	return padToWidth(strings.TrimSuffix(b.String(), "\n"), roomListWidth)
}

func (m ChatModel) renderRoomRow(room market.RoomSummary, selected bool, now time.Time) string {
	marker := "  "
	style := normalStyle
	if selected && m.focus == focusRooms {
		marker = "> "
		style = selectedStyle
	}

	name := room.Opponent
	if name == "" {
		name = room.RoomID
	}
	name = truncate(name, 14)

	badge := ""
	if room.UnreadCount > 0 {
		badge = unreadStyle.Render(fmt.Sprintf(" (%d)", room.UnreadCount))
	}

	head := marker + style.Render(name) + badge +
		" " + subtleStyle.Render(relativeTime(room.LastMessageAt, now))
	tail := "   " + subtleStyle.Render(truncate(room.LastMessage, roomListWidth-4))
	return head + "\n" + tail
}

func (m ChatModel) renderConversationPane() string {
	var b strings.Builder

	b.WriteString(m.renderConversationHeader())
	b.WriteString("\n")

	if m.state.RoomID == "" {
		b.WriteString(subtleStyle.Render(" select a conversation"))
		return b.String()
	}
	if m.loading {
		b.WriteString(m.spinner.View() + " loading history")
		return b.String()
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderCompose())
	return b.String()
}

func (m ChatModel) renderConversationHeader() string {
	title := "Conversation"
	for _, room := range m.state.Rooms {
		if room.RoomID == m.state.RoomID && room.Opponent != "" {
			title = room.Opponent
			if room.ItemName != "" {
				title += subtleStyle.Render("  " + truncate(room.ItemName, 30))
			}
			break
		}
	}

	indicator := disconnectedStyle.Render("○ offline")
	switch m.manager.State() {
	case live.StateConnected:
		indicator = connectedStyle.Render("● live")
	case live.StateConnecting:
		indicator = disconnectedStyle.Render("◌ connecting")
	}

	if m.loadingOlder {
		indicator += " " + m.spinner.View()
	}
	return titleStyle.Render(title) + "  " + indicator
}

func (m ChatModel) renderCompose() string {
	if m.focus == focusCompose {
		return m.input.View()
	}
	return subtleStyle.Render("press i to compose")
}

// renderMessages renders the active room's messages, oldest first.
func (m ChatModel) renderMessages() string {
	msgs := m.state.Messages
	if len(msgs) == 0 {
		return subtleStyle.Render("no messages")
	}

	now := time.Now()
	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(m.renderMessage(msg, now))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m ChatModel) renderMessage(msg market.Message, now time.Time) string {
	if msg.Pending() {
		return pendingStyle.Render(fmt.Sprintf("%s: %s (sending…)", m.self, msg.Body))
	}

	style := senderStyle
	if msg.Sender == m.self {
		style = ownSenderStyle
	}

	line := style.Render(msg.Sender) + ": " + msg.Body
	if stamp := relativeTime(msg.CreateDate, now); stamp != "" {
		line += "  " + subtleStyle.Render(stamp)
	}
	if len(msg.ImageURLs) > 0 {
		line += subtleStyle.Render(fmt.Sprintf("  [%d image(s)]", len(msg.ImageURLs)))
	}
	return line
}

func (m ChatModel) renderStatusLine() string {
	if m.err != nil {
		return errorStyle.Render(" " + m.err.Error())
	}
	help := []string{"↑/↓ rooms", "enter open", "i compose", "pgup older", "esc back", "q quit"}
	return helpStyle.Render(" " + strings.Join(help, "  "))
}

// padToWidth pads every line of s to the fixed pane width.
func padToWidth(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

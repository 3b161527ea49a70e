// Package tui implements the Bubble Tea views: the chat screen and the
// live auction watch screen.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	colorGreen  = lipgloss.Color("#9ece6a") // green
	colorYellow = lipgloss.Color("#e0af68") // yellow
	colorBlue   = lipgloss.Color("#7aa2f7") // blue
	colorRed    = lipgloss.Color("#f7768e") // red
	colorGray   = lipgloss.Color("#565f89") // comment
	colorWhite  = lipgloss.Color("#c0caf5") // foreground
)

var (
	// Title style for screen headers.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			PaddingLeft(1)

	// Selected room row.
	selectedStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	// Normal room row (terminal default).
	normalStyle = lipgloss.NewStyle()

	// Subtle metadata text (timestamps, item names).
	subtleStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	// Unread badge on a room row.
	unreadStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	// Sender name on own messages.
	ownSenderStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	// Sender name on opponent messages.
	senderStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	// Optimistic entries awaiting the server echo.
	pendingStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	// Connection state indicator.
	connectedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	disconnectedStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	// Error line at the bottom of a screen.
	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	// Auction summary value fields.
	priceStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	closedStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	// Highest bid row in the bid history.
	topBidStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	// Help line.
	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	// Spinner style.
	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	// Divider between panes.
	dividerStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)

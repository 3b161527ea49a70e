package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// chatKeyMap is the keybinding set for the chat screen.
type chatKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Older     key.Binding
	Focus     key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultChatKeyMap() chatKeyMap {
	return chatKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open/send"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Older: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "older messages"),
		),
		Focus: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "compose"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// auctionKeyMap is the keybinding set for the auction watch screen.
type auctionKeyMap struct {
	PrevPage  key.Binding
	NextPage  key.Binding
	Bid       key.Binding
	Refresh   key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultAuctionKeyMap() auctionKeyMap {
	return auctionKeyMap{
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		Bid: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "place bid"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

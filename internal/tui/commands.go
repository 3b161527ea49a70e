package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/core/market"
	"github.com/hyeonlog/jangteo/internal/live"
)

const fetchTimeout = 10 * time.Second

// roomsLoadedMsg carries the refreshed conversation list.
type roomsLoadedMsg struct {
	rooms []market.RoomSummary
	err   error
}

// historyLoadedMsg carries the latest page of a room's history. RoomID is
// the identifier the fetch was issued for; the model drops the result
// when the active room has moved on.
type historyLoadedMsg struct {
	roomID   string
	messages []market.Message
	err      error
}

// olderLoadedMsg carries an older history page fetched on scroll-back.
type olderLoadedMsg struct {
	roomID   string
	messages []market.Message
	err      error
}

// sentMsg reports the outcome of a message send. The message itself
// arrives on the push channel as the server echo.
type sentMsg struct {
	roomID    string
	pendingID string
	err       error
}

// pushEventMsg wraps one normalized push event.
type pushEventMsg struct {
	event live.Event
	ok    bool
}

// auctionLoadedMsg carries an authoritative auction detail fetch.
type auctionLoadedMsg struct {
	auctionID int64
	auction   market.Auction
	err       error
}

// bidsLoadedMsg carries a bid history page.
type bidsLoadedMsg struct {
	auctionID int64
	page      market.Page[market.Bid]
	err       error
}

// bidPlacedMsg reports the outcome of placing a bid.
type bidPlacedMsg struct {
	auctionID int64
	placed    api.PlacedBid
	err       error
}

func loadRooms(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		rooms, err := client.ChatRooms(ctx)
		return roomsLoadedMsg{rooms: rooms, err: err}
	}
}

func loadHistory(client *api.Client, roomID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		messages, err := client.RoomMessages(ctx, roomID, 0)
		return historyLoadedMsg{roomID: roomID, messages: messages, err: err}
	}
}

func loadOlder(client *api.Client, roomID string, beforeID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		messages, err := client.RoomMessages(ctx, roomID, beforeID)
		return olderLoadedMsg{roomID: roomID, messages: messages, err: err}
	}
}

func sendMessage(client *api.Client, roomID, text, pendingID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := client.SendMessage(ctx, api.SendMessageForm{RoomID: roomID, Text: text})
		return sentMsg{roomID: roomID, pendingID: pendingID, err: err}
	}
}

func loadAuction(client *api.Client, auctionID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		a, err := client.Auction(ctx, auctionID)
		return auctionLoadedMsg{auctionID: auctionID, auction: a, err: err}
	}
}

func loadBids(client *api.Client, auctionID int64, page, size int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		p, err := client.AuctionBids(ctx, auctionID, page, size)
		return bidsLoadedMsg{auctionID: auctionID, page: p, err: err}
	}
}

func placeBid(client *api.Client, auctionID, price int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		placed, err := client.PlaceBid(ctx, auctionID, price)
		return bidPlacedMsg{auctionID: auctionID, placed: placed, err: err}
	}
}

// waitEvent blocks on the push stream and delivers the next event. The
// model re-issues it after every delivery. ok=false means the stream is
// closed and the command must not be re-issued.
func waitEvent(events <-chan live.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return pushEventMsg{event: ev, ok: ok}
	}
}

package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hyeonlog/jangteo/internal/api"
	"github.com/hyeonlog/jangteo/internal/core/market"
	"github.com/hyeonlog/jangteo/internal/live"
)

// countdownInterval drives the time-left display in the summary header.
const countdownInterval = time.Second

// countdownTickMsg advances the countdown display.
type countdownTickMsg struct{}

func scheduleCountdown() tea.Cmd {
	return tea.Tick(countdownInterval, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

// AuctionOptions configures the auction watch screen.
type AuctionOptions struct {
	Client    *api.Client
	Manager   *live.Manager
	AuctionID int64
	// PageSize is the fixed bid history page size.
	PageSize int
	// CanBid is false for anonymous sessions; the bid prompt is disabled.
	CanBid bool
}

// AuctionModel is the Bubble Tea model for watching one auction live:
// the summary header plus a paged bid history.
type AuctionModel struct {
	client  *api.Client
	manager *live.Manager
	state   *live.AuctionState
	canBid  bool

	keys    auctionKeyMap
	input   textinput.Model
	spinner spinner.Model

	width    int
	height   int
	loading  bool
	bidding  bool
	placing  bool
	notice   string
	err      error
	quitting bool
}

// NewAuctionModel creates the auction watch model. The detail and the
// first bid page are fetched on Init.
func NewAuctionModel(opts AuctionOptions) AuctionModel {
	input := textinput.New()
	input.Placeholder = "bid amount"
	input.CharLimit = 12

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	state := live.NewAuctionState(placeholderAuction(opts.AuctionID), opts.PageSize)

	m := AuctionModel{
		client:  opts.Client,
		manager: opts.Manager,
		state:   state,
		canBid:  opts.CanBid,
		keys:    defaultAuctionKeyMap(),
		input:   input,
		spinner: sp,
		loading: true,
	}
	m.manager.Subscribe(live.AuctionTopic(opts.AuctionID))
	return m
}

// placeholderAuction seeds the state with the identifier so stale-fetch
// guards hold before the first detail arrives.
func placeholderAuction(id int64) market.Auction {
	return market.Auction{ID: id}
}

// Init implements tea.Model.
func (m AuctionModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadAuction(m.client, m.state.Auction.ID),
		loadBids(m.client, m.state.Auction.ID, 0, m.state.PageSize),
		waitEvent(m.manager.Events()),
		scheduleCountdown(),
	)
}

// Update implements tea.Model.
func (m AuctionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case countdownTickMsg:
		return m, scheduleCountdown()

	case auctionLoadedMsg:
		if msg.err != nil {
			if msg.auctionID == m.state.Auction.ID {
				m.err = msg.err
				m.loading = false
			}
			return m, nil
		}
		if m.state.SetDetail(msg.auction) {
			m.loading = false
		}
		return m, nil

	case bidsLoadedMsg:
		if msg.err != nil {
			if msg.auctionID == m.state.Auction.ID {
				m.err = msg.err
			}
			return m, nil
		}
		m.state.SetBidPage(msg.auctionID, msg.page)
		return m, nil

	case bidPlacedMsg:
		m.placing = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.notice = "bid placed: " + formatWon(msg.placed.Bid.Price)
		m.err = nil
		// The bid itself arrives on the push channel; no local splice.
		return m, nil

	case pushEventMsg:
		if !msg.ok {
			return m, nil
		}
		cmds := []tea.Cmd{waitEvent(m.manager.Events())}
		if msg.event.Kind == live.KindBid {
			outcome := m.state.ApplyBid(msg.event.Bid)
			if outcome.Refetch {
				m.notice = "sold via buy-now"
				cmds = append(cmds, loadAuction(m.client, m.state.Auction.ID))
			}
		}
		return m, tea.Batch(cmds...)
	}

	// Cursor blink and other component messages.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AuctionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.bidding {
		return m.handleBidKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevPage):
		if m.state.PageIndex > 0 {
			return m, loadBids(m.client, m.state.Auction.ID, m.state.PageIndex-1, m.state.PageSize)
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.state.PageIndex < m.state.TotalPages-1 {
			return m, loadBids(m.client, m.state.Auction.ID, m.state.PageIndex+1, m.state.PageSize)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(
			loadAuction(m.client, m.state.Auction.ID),
			loadBids(m.client, m.state.Auction.ID, m.state.PageIndex, m.state.PageSize),
		)

	case key.Matches(msg, m.keys.Bid):
		if !m.canBid || !m.state.Auction.Open() {
			return m, nil
		}
		m.bidding = true
		m.input.Reset()
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m AuctionModel) handleBidKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.bidding = false
		m.input.Blur()
		return m, nil

	case "enter":
		raw := strings.TrimSpace(m.input.Value())
		price, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
		if err != nil || price <= 0 {
			m.err = api.FieldErrors{{Field: "price", Code: "invalid", Message: "enter a positive amount"}}
			return m, nil
		}
		m.bidding = false
		m.placing = true
		m.input.Blur()
		m.err = nil
		return m, placeBid(m.client, m.state.Auction.ID, price)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

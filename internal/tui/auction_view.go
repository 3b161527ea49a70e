package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyeonlog/jangteo/internal/live"
)

// View implements tea.Model.
func (m AuctionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.loading {
		return m.spinner.View() + " loading auction..."
	}

	var b strings.Builder
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(m.renderBids())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m AuctionModel) renderSummary() string {
	a := m.state.Auction
	now := time.Now()

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.Name))
	b.WriteString("  ")

	switch {
	case !a.Open():
		b.WriteString(closedStyle.Render("CLOSED"))
	default:
		b.WriteString(connectedStyle.Render("OPEN"))
		if left := remaining(a.EndAt, now); left != "" {
			b.WriteString("  " + subtleStyle.Render(left))
		}
	}

	indicator := disconnectedStyle.Render("○ offline")
	switch m.manager.State() {
	case live.StateConnected:
		indicator = connectedStyle.Render("● live")
	case live.StateConnecting:
		indicator = disconnectedStyle.Render("◌ connecting")
	}
	b.WriteString("  " + indicator)
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf(" highest %s", priceStyle.Render(formatWon(a.CurrentHighestBid))))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  start %s", formatWon(a.StartPrice))))
	if a.BuyNowPrice > 0 && a.Open() {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  buy-now %s", formatWon(a.BuyNowPrice))))
	}
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  %d bids", a.BidCount)))
	b.WriteString("\n")

	seller := a.Seller.Nickname
	if seller != "" {
		b.WriteString(subtleStyle.Render(fmt.Sprintf(" seller %s (%.1f)", seller, a.Seller.ReputationScore)))
	}
	if winner := a.WinningBid(m.state.Bids); winner != nil {
		b.WriteString("  " + topBidStyle.Render(fmt.Sprintf("won by %s at %s",
			winner.BidderNickname, formatWon(winner.Price))))
	}
	return b.String()
}

func (m AuctionModel) renderBids() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Bid history"))
	if m.state.TotalPages > 1 {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  page %d/%d", m.state.PageIndex+1, m.state.TotalPages)))
	}
	b.WriteString("\n")

	if len(m.state.Bids) == 0 {
		b.WriteString(subtleStyle.Render(" no bids yet"))
		return b.String()
	}

	now := time.Now()
	for i, bid := range m.state.Bids {
		style := normalStyle
		if i == 0 && m.state.PageIndex == 0 {
			style = topBidStyle
		}
		name := bid.BidderNickname
		if name == "" {
			name = fmt.Sprintf("bidder %d", bid.BidderID)
		}
		line := fmt.Sprintf(" %s  %s  %s",
			style.Render(formatWon(bid.Price)),
			name,
			subtleStyle.Render(relativeTime(bid.CreateDate, now)))
		if bid.BuyNow {
			line += "  " + closedStyle.Render("buy-now")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m AuctionModel) renderFooter() string {
	if m.bidding {
		return " bid: " + m.input.View()
	}

	var parts []string
	if m.placing {
		parts = append(parts, m.spinner.View()+" placing bid")
	}
	if m.notice != "" {
		parts = append(parts, connectedStyle.Render(m.notice))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}

	help := []string{"←/→ pages", "r refresh", "q quit"}
	if m.canBid && m.state.Auction.Open() {
		help = append([]string{"b bid"}, help...)
	}
	parts = append(parts, helpStyle.Render(strings.Join(help, "  ")))
	return " " + strings.Join(parts, "\n ")
}

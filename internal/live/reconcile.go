package live

import (
	"sort"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

// ChatState is the in-memory view state of the chat page: the room list
// plus the active room's message collection. All mutation flows through
// its methods, which are the sole write path; each method runs to
// completion atomically with respect to the caller's event loop, so no
// event is ever partially applied.
//
// Invariant: message identifiers are unique within the collection. A push
// event or history row whose identifier is already present is ignored
// (at-most-once materialization).
type ChatState struct {
	RoomID   string
	Messages []market.Message
	Rooms    []market.RoomSummary
	Cursor   Cursor
}

// NewChatState creates chat state with the given room list.
func NewChatState(rooms []market.RoomSummary) *ChatState {
	return &ChatState{Rooms: rooms, Cursor: NewCursor()}
}

// SetRooms replaces the room list, most recent first. A synthetic entry
// for the active room is retained until the server knows the room.
func (s *ChatState) SetRooms(rooms []market.RoomSummary) {
	s.Rooms = rooms
	if s.RoomID != "" {
		s.EnsureRoom(s.RoomID)
	}
	s.sortRooms()
}

// EnsureRoom guarantees a summary row exists for the room, inserting a
// synthetic entry for a conversation the server has not created yet (it
// comes into existence with the first message).
func (s *ChatState) EnsureRoom(roomID string) {
	for _, r := range s.Rooms {
		if r.RoomID == roomID {
			return
		}
	}
	s.Rooms = append(s.Rooms, market.RoomSummary{RoomID: roomID})
}

// SetRoom switches the active room, clearing the message collection and
// resetting the pagination cursor. Pending fetches for the previous room
// become stale: their results are rejected by the room-id guard below.
func (s *ChatState) SetRoom(roomID string) {
	s.RoomID = roomID
	s.Messages = nil
	s.Cursor = NewCursor()
}

// SetHistory applies the initial history fetch for a room, oldest first.
// Returns false when roomID no longer matches the active room (the fetch
// resolved after the user moved on); state is untouched in that case.
func (s *ChatState) SetHistory(roomID string, msgs []market.Message) bool {
	if roomID != s.RoomID {
		return false
	}
	s.Messages = dedupeByID(msgs, nil)
	s.Cursor = NewCursor()
	s.Cursor.ApplyPage(s.Messages)
	return true
}

// PrependOlder applies a backward-history page, oldest first, to the
// front of the collection. Stale results (room changed) are rejected.
// Backward loads touch only the front of the collection; live appends
// touch only the end, so the two interleave safely.
func (s *ChatState) PrependOlder(roomID string, older []market.Message) bool {
	if roomID != s.RoomID {
		return false
	}
	if len(older) == 0 {
		s.Cursor.More = false
		return true
	}

	have := make(map[int64]bool, len(s.Messages))
	for _, m := range s.Messages {
		if m.ID != 0 {
			have[m.ID] = true
		}
	}
	fresh := dedupeByID(older, have)
	if len(fresh) == 0 {
		// Entire page already materialized; boundary does not move.
		return true
	}

	s.Messages = append(fresh, s.Messages...)
	s.Cursor.ApplyPage(fresh)
	return true
}

// ApplyMessage folds one pushed message event into the state. A message
// whose identifier already exists is a no-op. New messages append to the
// end: chronological order is guaranteed by the transport's per-topic
// FIFO delivery, so no re-sort happens on insert. The matching room
// summary is updated and the room list re-sorted by recency (stable, so
// untouched rooms keep their relative order).
func (s *ChatState) ApplyMessage(msg market.Message) bool {
	if msg.RoomID != s.RoomID {
		return false
	}
	if msg.ID != 0 {
		for _, m := range s.Messages {
			if m.ID == msg.ID {
				return false
			}
		}
	}

	// A pushed echo of a locally-sent message replaces its optimistic
	// pending entry instead of duplicating it.
	replaced := false
	for i, m := range s.Messages {
		if m.Pending() && m.Body == msg.Body {
			s.Messages[i] = msg
			replaced = true
			break
		}
	}
	if !replaced {
		s.Messages = append(s.Messages, msg)
	}

	s.touchRoom(msg)
	return true
}

// AppendPending adds an optimistic local message awaiting its push echo.
func (s *ChatState) AppendPending(msg market.Message) {
	if msg.RoomID != s.RoomID {
		return
	}
	s.Messages = append(s.Messages, msg)
	s.touchRoom(msg)
}

// RemovePending drops the optimistic entry with the given pending key,
// used when the send request fails. No-op when the echo already replaced
// the entry.
func (s *ChatState) RemovePending(pendingID string) {
	for i, m := range s.Messages {
		if m.Pending() && m.PendingID == pendingID {
			s.Messages = append(s.Messages[:i], s.Messages[i+1:]...)
			return
		}
	}
}

// touchRoom updates the summary row for the message's room and re-sorts
// the list by last-message time descending.
func (s *ChatState) touchRoom(msg market.Message) {
	for i := range s.Rooms {
		if s.Rooms[i].RoomID != msg.RoomID {
			continue
		}
		s.Rooms[i].LastMessage = msg.Body
		s.Rooms[i].LastMessageAt = msg.CreateDate
		if msg.RoomID == s.RoomID {
			// The user is looking at this room; nothing is unread.
			s.Rooms[i].UnreadCount = 0
		} else {
			s.Rooms[i].UnreadCount++
		}
		break
	}
	s.sortRooms()
}

func (s *ChatState) sortRooms() {
	sort.SliceStable(s.Rooms, func(i, j int) bool {
		return s.Rooms[i].LastMessageAt.After(s.Rooms[j].LastMessageAt.Time)
	})
}

// dedupeByID filters messages to at most one occurrence per identifier.
// Entries without an id (optimistic pending) pass through. seen may carry
// identifiers already present elsewhere in the collection.
func dedupeByID(msgs []market.Message, seen map[int64]bool) []market.Message {
	if seen == nil {
		seen = make(map[int64]bool, len(msgs))
	}
	out := make([]market.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.ID != 0 {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
		}
		out = append(out, m)
	}
	return out
}

// BidOutcome reports what applying a bid event did.
type BidOutcome struct {
	// Applied is true when the event changed state (not a duplicate).
	Applied bool
	// Refetch is true when the caller must re-fetch the authoritative
	// auction detail: a buy-now closed the auction and changed fields the
	// push payload does not carry.
	Refetch bool
}

// AuctionState is the in-memory view state of one auction page: the live
// summary plus the visible bid history page. All mutation flows through
// its methods.
type AuctionState struct {
	Auction market.Auction
	// Bids is the visible page of bid history, newest first.
	Bids []market.Bid
	// PageIndex is the backward-pagination offset: zero is the newest page.
	PageIndex int
	// PageSize is the fixed bid page size used for splicing and for
	// recomputing the page count.
	PageSize      int
	TotalElements int64
	TotalPages    int

	// seen holds every bid identifier materialized in this view, fetched
	// or pushed. Duplicate detection cannot rely on the visible slice: a
	// replayed event while an older page is shown, or after the bid was
	// truncated off page zero, must still be a no-op.
	seen map[int64]bool
}

// NewAuctionState creates auction view state for the given detail.
func NewAuctionState(a market.Auction, pageSize int) *AuctionState {
	return &AuctionState{Auction: a, PageSize: pageSize, seen: make(map[int64]bool)}
}

// SetDetail applies a re-fetched authoritative auction detail. Stale
// results for another auction are rejected.
func (s *AuctionState) SetDetail(a market.Auction) bool {
	if a.ID != s.Auction.ID {
		return false
	}
	s.Auction = a
	return true
}

// SetBidPage applies a fetched page of bid history. Stale results are
// rejected by the auction-id guard.
func (s *AuctionState) SetBidPage(auctionID int64, page market.Page[market.Bid]) bool {
	if auctionID != s.Auction.ID {
		return false
	}
	s.Bids = page.Content
	s.PageIndex = page.Page
	if page.Size > 0 {
		s.PageSize = page.Size
	}
	s.TotalElements = page.TotalElements
	s.TotalPages = page.TotalPages
	for _, b := range page.Content {
		s.seen[b.ID] = true
	}
	return true
}

// ApplyBid folds one pushed bid event into the state.
//
// A duplicate identifier is a complete no-op. Otherwise the visible list
// is spliced only when the user is on the newest page (offset zero):
// prepend and truncate to the page size. On an older page the list stays
// untouched; the bid appears when the user returns to page zero. The
// auction summary fields always update from the event payload, never
// from a derived computation, and missing payload fields leave the
// current values unchanged.
func (s *AuctionState) ApplyBid(ev BidEvent) BidOutcome {
	if ev.AuctionID != s.Auction.ID {
		return BidOutcome{}
	}
	if s.seen[ev.BidID] {
		return BidOutcome{}
	}
	s.seen[ev.BidID] = true

	if s.PageIndex == 0 {
		s.Bids = append([]market.Bid{ev.Bid()}, s.Bids...)
		if len(s.Bids) > s.PageSize && s.PageSize > 0 {
			s.Bids = s.Bids[:s.PageSize]
		}
	}

	if ev.CurrentHighestBid != nil {
		s.Auction.CurrentHighestBid = *ev.CurrentHighestBid
	}
	if ev.BidCount != nil {
		s.Auction.BidCount = *ev.BidCount
	}
	s.TotalElements++
	s.TotalPages = market.PageCount(s.TotalElements, s.PageSize)

	return BidOutcome{Applied: true, Refetch: ev.BuyNow}
}

package live

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

func mt(sec int) market.Time {
	return market.Time{Time: time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)}
}

func msg(id int64, room, body string, sec int) market.Message {
	return market.Message{ID: id, RoomID: room, Body: body, CreateDate: mt(sec)}
}

func TestChatState_ApplyMessage_AppendsInArrivalOrder(t *testing.T) {
	s := NewChatState([]market.RoomSummary{{RoomID: "r1"}})
	s.SetRoom("r1")
	require.True(t, s.SetHistory("r1", []market.Message{
		msg(1, "r1", "A", 1),
		msg(2, "r1", "B", 2),
	}))

	assert.True(t, s.ApplyMessage(msg(3, "r1", "C", 3)))

	require.Len(t, s.Messages, 3)
	assert.Equal(t, []int64{1, 2, 3}, messageIDs(s.Messages))
}

func TestChatState_ApplyMessage_DuplicateIsNoOp(t *testing.T) {
	s := NewChatState([]market.RoomSummary{{RoomID: "r1"}})
	s.SetRoom("r1")
	require.True(t, s.SetHistory("r1", []market.Message{
		msg(1, "r1", "A", 1),
		msg(2, "r1", "B", 2),
	}))

	assert.False(t, s.ApplyMessage(msg(2, "r1", "B", 2)))
	assert.Equal(t, []int64{1, 2}, messageIDs(s.Messages))
}

func TestChatState_AtMostOnceAcrossInterleavings(t *testing.T) {
	// Push events and backward-history fetches interleaved arbitrarily:
	// every distinct identifier must appear at most once.
	s := NewChatState([]market.RoomSummary{{RoomID: "r1"}})
	s.SetRoom("r1")
	require.True(t, s.SetHistory("r1", []market.Message{
		msg(10, "r1", "j", 10),
		msg(11, "r1", "k", 11),
	}))

	s.ApplyMessage(msg(12, "r1", "l", 12))
	// Older page overlaps the already-held id 10.
	require.True(t, s.PrependOlder("r1", []market.Message{
		msg(8, "r1", "h", 8),
		msg(9, "r1", "i", 9),
		msg(10, "r1", "j", 10),
	}))
	s.ApplyMessage(msg(12, "r1", "l", 12)) // replayed push
	s.ApplyMessage(msg(13, "r1", "m", 13))

	ids := messageIDs(s.Messages)
	seen := map[int64]int{}
	for _, id := range ids {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %d appears %d times", id, n)
	}
	assert.Equal(t, []int64{8, 9, 10, 11, 12, 13}, ids)
}

func TestChatState_RoomSummaryResort(t *testing.T) {
	rooms := []market.RoomSummary{
		{RoomID: "a", LastMessageAt: mt(30)},
		{RoomID: "b", LastMessageAt: mt(20)},
		{RoomID: "c", LastMessageAt: mt(10)},
	}
	s := NewChatState(rooms)
	s.SetRoom("c")

	assert.True(t, s.ApplyMessage(msg(1, "c", "hello", 40)))

	// c moved to the front; a and b keep their relative order.
	assert.Equal(t, []string{"c", "a", "b"}, roomIDs(s.Rooms))
	assert.Equal(t, "hello", s.Rooms[0].LastMessage)
	assert.Equal(t, 0, s.Rooms[0].UnreadCount)
}

func TestChatState_SummaryTiesKeepOriginalOrder(t *testing.T) {
	rooms := []market.RoomSummary{
		{RoomID: "a", LastMessageAt: mt(10)},
		{RoomID: "b", LastMessageAt: mt(10)},
		{RoomID: "c", LastMessageAt: mt(10)},
	}
	s := NewChatState(rooms)
	s.SetRooms(s.Rooms)

	assert.Equal(t, []string{"a", "b", "c"}, roomIDs(s.Rooms))
}

func TestChatState_StaleHistoryRejected(t *testing.T) {
	// A fetch for r1 resolving after the user switched to r2 must not be
	// applied.
	s := NewChatState(nil)
	s.SetRoom("r1")
	s.SetRoom("r2")

	applied := s.SetHistory("r1", []market.Message{msg(1, "r1", "old", 1)})

	assert.False(t, applied)
	assert.Empty(t, s.Messages)
}

func TestChatState_StaleOlderPageRejected(t *testing.T) {
	s := NewChatState(nil)
	s.SetRoom("r1")
	require.True(t, s.SetHistory("r1", []market.Message{msg(5, "r1", "e", 5)}))
	s.SetRoom("r2")

	assert.False(t, s.PrependOlder("r1", []market.Message{msg(1, "r1", "a", 1)}))
	assert.Empty(t, s.Messages)
}

func TestChatState_BackwardPagination(t *testing.T) {
	s := NewChatState(nil)
	s.SetRoom("r1")
	require.True(t, s.SetHistory("r1", []market.Message{
		msg(5, "r1", "e", 5),
		msg(6, "r1", "f", 6),
	}))
	assert.Equal(t, int64(5), s.Cursor.OldestID)
	assert.True(t, s.Cursor.More)

	require.True(t, s.PrependOlder("r1", []market.Message{
		msg(3, "r1", "c", 3),
		msg(4, "r1", "d", 4),
	}))
	assert.Equal(t, []int64{3, 4, 5, 6}, messageIDs(s.Messages))
	assert.Equal(t, int64(3), s.Cursor.OldestID)
	assert.True(t, s.Cursor.More)

	// Exhausted history: collection and cursor boundary unchanged.
	require.True(t, s.PrependOlder("r1", nil))
	assert.False(t, s.Cursor.More)
	assert.Equal(t, int64(3), s.Cursor.OldestID)
	assert.Equal(t, []int64{3, 4, 5, 6}, messageIDs(s.Messages))
}

func TestChatState_OptimisticEchoReplacesPending(t *testing.T) {
	s := NewChatState([]market.RoomSummary{{RoomID: "r1"}})
	s.SetRoom("r1")

	s.AppendPending(market.Message{RoomID: "r1", Body: "hi", PendingID: "p1"})
	require.Len(t, s.Messages, 1)

	assert.True(t, s.ApplyMessage(msg(7, "r1", "hi", 7)))

	require.Len(t, s.Messages, 1)
	assert.Equal(t, int64(7), s.Messages[0].ID)
	assert.False(t, s.Messages[0].Pending())
}

func TestChatState_EnsureRoom(t *testing.T) {
	s := NewChatState([]market.RoomSummary{{RoomID: "a", LastMessageAt: mt(10)}})

	s.EnsureRoom("a")
	assert.Len(t, s.Rooms, 1)

	// Unknown room gets a synthetic entry.
	s.EnsureRoom("new")
	require.Len(t, s.Rooms, 2)

	// A room-list refresh that does not yet know the active room keeps
	// the synthetic entry alive.
	s.SetRoom("new")
	s.SetRooms([]market.RoomSummary{{RoomID: "a", LastMessageAt: mt(10)}})
	require.Len(t, s.Rooms, 2)
	assert.Equal(t, "new", s.Rooms[1].RoomID)
}

func TestChatState_RemovePending(t *testing.T) {
	s := NewChatState([]market.RoomSummary{{RoomID: "r1"}})
	s.SetRoom("r1")

	s.AppendPending(market.Message{RoomID: "r1", Body: "hi", PendingID: "p1"})
	s.AppendPending(market.Message{RoomID: "r1", Body: "yo", PendingID: "p2"})

	s.RemovePending("p1")

	require.Len(t, s.Messages, 1)
	assert.Equal(t, "p2", s.Messages[0].PendingID)

	// Unknown key is a no-op.
	s.RemovePending("p9")
	assert.Len(t, s.Messages, 1)
}

func TestChatState_UnreadIncrementsForInactiveRoom(t *testing.T) {
	rooms := []market.RoomSummary{
		{RoomID: "a", LastMessageAt: mt(20), UnreadCount: 1},
		{RoomID: "b", LastMessageAt: mt(10)},
	}
	s := NewChatState(rooms)
	s.SetRoom("b")

	// touchRoom is exercised via the summary path even though ApplyMessage
	// guards on the active room; simulate the room-list refresh instead.
	s.touchRoom(msg(9, "a", "ping", 30))

	assert.Equal(t, "a", s.Rooms[0].RoomID)
	assert.Equal(t, 2, s.Rooms[0].UnreadCount)
}

func intp(v int) *int       { return &v }
func int64p(v int64) *int64 { return &v }

func bidEvent(id int64, price int64, highest int64, count int) BidEvent {
	return BidEvent{
		BidID:             id,
		AuctionID:         9,
		Price:             price,
		CreateDate:        mt(int(id)),
		CurrentHighestBid: int64p(highest),
		BidCount:          intp(count),
	}
}

func TestAuctionState_ApplyBid_PageZero(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9, CurrentHighestBid: 1000, BidCount: 3}, 10)
	require.True(t, s.SetBidPage(9, market.Page[market.Bid]{
		Content:       []market.Bid{{ID: 70, Price: 1000}},
		Page:          0,
		Size:          10,
		TotalElements: 3,
		TotalPages:    1,
	}))

	out := s.ApplyBid(bidEvent(77, 1500, 1500, 4))

	assert.True(t, out.Applied)
	assert.False(t, out.Refetch)
	require.Len(t, s.Bids, 2)
	assert.Equal(t, int64(77), s.Bids[0].ID)
	assert.Equal(t, int64(1500), s.Auction.CurrentHighestBid)
	assert.Equal(t, 4, s.Auction.BidCount)
	assert.Equal(t, int64(4), s.TotalElements)

	// Replay of the same bid id leaves everything unchanged.
	out = s.ApplyBid(bidEvent(77, 1500, 1500, 4))
	assert.False(t, out.Applied)
	assert.Len(t, s.Bids, 2)
	assert.Equal(t, int64(4), s.TotalElements)
}

func TestAuctionState_ApplyBid_OlderPageLeavesListUntouched(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9, CurrentHighestBid: 1000}, 10)
	require.True(t, s.SetBidPage(9, market.Page[market.Bid]{
		Content: []market.Bid{{ID: 50, Price: 700}},
		Page:    1,
		Size:    10,
	}))

	out := s.ApplyBid(bidEvent(77, 1500, 1500, 4))

	assert.True(t, out.Applied)
	// Visible list untouched, summary still updated.
	require.Len(t, s.Bids, 1)
	assert.Equal(t, int64(50), s.Bids[0].ID)
	assert.Equal(t, int64(1500), s.Auction.CurrentHighestBid)
	assert.Equal(t, 4, s.Auction.BidCount)
}

func TestAuctionState_ApplyBid_OffPageReplayIsNoOp(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9, CurrentHighestBid: 1000}, 10)
	require.True(t, s.SetBidPage(9, market.Page[market.Bid]{
		Content:       []market.Bid{{ID: 50, Price: 700}},
		Page:          1,
		Size:          10,
		TotalElements: 11,
		TotalPages:    2,
	}))

	out := s.ApplyBid(bidEvent(77, 1500, 1500, 4))
	require.True(t, out.Applied)
	assert.Equal(t, int64(12), s.TotalElements)

	// The bid never entered the visible slice (older page shown), but a
	// replay must still be a no-op: counters do not drift.
	out = s.ApplyBid(bidEvent(77, 1500, 1500, 4))
	assert.False(t, out.Applied)
	assert.Equal(t, int64(12), s.TotalElements)
	assert.Equal(t, 2, s.TotalPages)
}

func TestAuctionState_ApplyBid_ReplayAfterTruncationIsNoOp(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9}, 2)
	require.True(t, s.SetBidPage(9, market.Page[market.Bid]{
		Content:       []market.Bid{{ID: 2}, {ID: 1}},
		Page:          0,
		Size:          2,
		TotalElements: 2,
		TotalPages:    1,
	}))

	// Two more bids push id 3 off the visible page.
	require.True(t, s.ApplyBid(bidEvent(3, 900, 900, 3)).Applied)
	require.True(t, s.ApplyBid(bidEvent(4, 950, 950, 4)).Applied)
	require.Equal(t, []int64{4, 3}, []int64{s.Bids[0].ID, s.Bids[1].ID})
	total := s.TotalElements

	out := s.ApplyBid(bidEvent(3, 900, 900, 3))
	assert.False(t, out.Applied)
	assert.Equal(t, total, s.TotalElements)
	assert.Len(t, s.Bids, 2)
}

func TestAuctionState_ApplyBid_TruncatesToPageSize(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9}, 2)
	require.True(t, s.SetBidPage(9, market.Page[market.Bid]{
		Content: []market.Bid{{ID: 2}, {ID: 1}},
		Page:    0,
		Size:    2,
	}))

	s.ApplyBid(bidEvent(3, 900, 900, 3))

	require.Len(t, s.Bids, 2)
	assert.Equal(t, int64(3), s.Bids[0].ID)
	assert.Equal(t, int64(2), s.Bids[1].ID)
}

func TestAuctionState_ApplyBid_MissingSummaryFieldsNoChange(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9, CurrentHighestBid: 1000, BidCount: 3}, 10)

	out := s.ApplyBid(BidEvent{BidID: 80, AuctionID: 9, Price: 1200})

	assert.True(t, out.Applied)
	assert.Equal(t, int64(1000), s.Auction.CurrentHighestBid)
	assert.Equal(t, 3, s.Auction.BidCount)
}

func TestAuctionState_ApplyBid_BuyNowRequestsRefetch(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9}, 10)

	ev := bidEvent(81, 5000, 5000, 5)
	ev.BuyNow = true
	out := s.ApplyBid(ev)

	assert.True(t, out.Applied)
	assert.True(t, out.Refetch)
}

func TestAuctionState_ApplyBid_WrongAuctionIgnored(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9, CurrentHighestBid: 1000}, 10)

	ev := bidEvent(82, 1500, 1500, 4)
	ev.AuctionID = 12
	out := s.ApplyBid(ev)

	assert.False(t, out.Applied)
	assert.Equal(t, int64(1000), s.Auction.CurrentHighestBid)
}

func TestAuctionState_SetDetail_StaleRejected(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9}, 10)
	assert.False(t, s.SetDetail(market.Auction{ID: 12, Status: market.AuctionClosed}))
	assert.True(t, s.SetDetail(market.Auction{ID: 9, Status: market.AuctionClosed}))
	assert.Equal(t, market.AuctionClosed, s.Auction.Status)
}

func TestAuctionState_PageCountRecompute(t *testing.T) {
	s := NewAuctionState(market.Auction{ID: 9}, 10)
	require.True(t, s.SetBidPage(9, market.Page[market.Bid]{
		Page: 0, Size: 10, TotalElements: 10, TotalPages: 1,
	}))

	s.ApplyBid(bidEvent(90, 2000, 2000, 11))

	assert.Equal(t, int64(11), s.TotalElements)
	assert.Equal(t, 2, s.TotalPages)
}

func messageIDs(msgs []market.Message) []int64 {
	ids := make([]int64, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func roomIDs(rooms []market.RoomSummary) []string {
	ids := make([]string, len(rooms))
	for i, r := range rooms {
		ids[i] = r.RoomID
	}
	return ids
}

// Package live implements the push-channel layer: the connection manager,
// the event normalizer, and the reconciliation of pushed events into
// REST-fetched paginated state.
package live

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

// Topic prefixes per the backend's subscription naming.
const (
	roomTopicPrefix    = "/sub/v1/chat/room/"
	auctionTopicPrefix = "/sub/v1/auctions/"
)

// RoomTopic returns the subscription topic for a chat room.
func RoomTopic(roomID string) string {
	return roomTopicPrefix + roomID
}

// AuctionTopic returns the subscription topic for an auction.
func AuctionTopic(auctionID int64) string {
	return auctionTopicPrefix + strconv.FormatInt(auctionID, 10)
}

// Kind discriminates the closed set of push event kinds.
type Kind int

const (
	KindNone Kind = iota
	KindMessage
	KindBid
)

// BidEvent is the push payload of an auction bid broadcast. The summary
// fields are pointers: a field missing from the payload means "no change"
// to that field, never an error.
type BidEvent struct {
	BidID          int64       `json:"bidId"`
	AuctionID      int64       `json:"auctionId"`
	BidderID       int64       `json:"bidderId,omitempty"`
	BidderNickname string      `json:"bidderNickname,omitempty"`
	Price          int64       `json:"price"`
	CreateDate     market.Time `json:"createDate"`
	// BuyNow marks a buy-now purchase, which closes the auction. The push
	// payload does not carry the closed auction's full state, so the
	// reconciler requests an authoritative re-fetch.
	BuyNow            bool   `json:"buyNow,omitempty"`
	CurrentHighestBid *int64 `json:"currentHighestBid,omitempty"`
	BidCount          *int   `json:"bidCount,omitempty"`
}

// Bid converts the event payload into a bid row.
func (e BidEvent) Bid() market.Bid {
	return market.Bid{
		ID:             e.BidID,
		AuctionID:      e.AuctionID,
		BidderID:       e.BidderID,
		BidderNickname: e.BidderNickname,
		Price:          e.Price,
		CreateDate:     e.CreateDate,
		BuyNow:         e.BuyNow,
	}
}

// Event is one normalized push event: exactly one of Message and Bid is
// meaningful, selected by Kind.
type Event struct {
	Kind    Kind
	Topic   string
	Message market.Message
	Bid     BidEvent
}

// Normalize converts an inbound frame body for the given active topic
// into a typed event. Returns ok=false ("no event") when the body does
// not parse, the discriminating identifier is absent, or it does not
// match the active topic. Callers take no action on ok=false.
func Normalize(activeTopic string, body []byte) (Event, bool) {
	switch {
	case strings.HasPrefix(activeTopic, roomTopicPrefix):
		roomID := strings.TrimPrefix(activeTopic, roomTopicPrefix)
		return normalizeMessage(activeTopic, roomID, body)

	case strings.HasPrefix(activeTopic, auctionTopicPrefix):
		raw := strings.TrimPrefix(activeTopic, auctionTopicPrefix)
		auctionID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Event{}, false
		}
		return normalizeBid(activeTopic, auctionID, body)

	default:
		return Event{}, false
	}
}

func normalizeMessage(topic, roomID string, body []byte) (Event, bool) {
	var msg market.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Event{}, false
	}
	if msg.RoomID == "" || msg.RoomID != roomID {
		return Event{}, false
	}
	return Event{Kind: KindMessage, Topic: topic, Message: msg}, true
}

func normalizeBid(topic string, auctionID int64, body []byte) (Event, bool) {
	var bid BidEvent
	if err := json.Unmarshal(body, &bid); err != nil {
		return Event{}, false
	}
	if bid.AuctionID == 0 || bid.AuctionID != auctionID {
		return Event{}, false
	}
	return Event{Kind: KindBid, Topic: topic, Bid: bid}, true
}

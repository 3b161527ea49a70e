package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "/sub/v1/chat/room/r-42", RoomTopic("r-42"))
	assert.Equal(t, "/sub/v1/auctions/9", AuctionTopic(9))
}

func TestNormalize_Message(t *testing.T) {
	body := []byte(`{"id":3,"roomId":"r1","message":"hey","createDate":"2025-06-01T12:00:00"}`)

	ev, ok := Normalize(RoomTopic("r1"), body)

	require.True(t, ok)
	assert.Equal(t, KindMessage, ev.Kind)
	assert.Equal(t, int64(3), ev.Message.ID)
	assert.Equal(t, "hey", ev.Message.Body)
}

func TestNormalize_Bid(t *testing.T) {
	body := []byte(`{"bidId":77,"auctionId":9,"price":1500,"currentHighestBid":1500,"bidCount":4}`)

	ev, ok := Normalize(AuctionTopic(9), body)

	require.True(t, ok)
	assert.Equal(t, KindBid, ev.Kind)
	assert.Equal(t, int64(77), ev.Bid.BidID)
	require.NotNil(t, ev.Bid.CurrentHighestBid)
	assert.Equal(t, int64(1500), *ev.Bid.CurrentHighestBid)
	require.NotNil(t, ev.Bid.BidCount)
	assert.Equal(t, 4, *ev.Bid.BidCount)
}

func TestNormalize_BidMissingSummaryFields(t *testing.T) {
	body := []byte(`{"bidId":77,"auctionId":9,"price":1500}`)

	ev, ok := Normalize(AuctionTopic(9), body)

	require.True(t, ok)
	assert.Nil(t, ev.Bid.CurrentHighestBid)
	assert.Nil(t, ev.Bid.BidCount)
}

func TestNormalize_NoEvent(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		body  string
	}{
		{
			name:  "malformed json",
			topic: RoomTopic("r1"),
			body:  `{not json`,
		},
		{
			name:  "missing room discriminator",
			topic: RoomTopic("r1"),
			body:  `{"id":3,"message":"hey"}`,
		},
		{
			name:  "mismatched room",
			topic: RoomTopic("r1"),
			body:  `{"id":3,"roomId":"r2","message":"hey"}`,
		},
		{
			name:  "missing auction discriminator",
			topic: AuctionTopic(9),
			body:  `{"bidId":77,"price":1500}`,
		},
		{
			name:  "mismatched auction",
			topic: AuctionTopic(9),
			body:  `{"bidId":77,"auctionId":12,"price":1500}`,
		},
		{
			name:  "unknown topic shape",
			topic: "/sub/v1/other/1",
			body:  `{}`,
		},
		{
			name:  "non-numeric auction topic",
			topic: auctionTopicPrefix + "abc",
			body:  `{"bidId":77,"auctionId":9}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Normalize(tt.topic, []byte(tt.body))
			assert.False(t, ok)
		})
	}
}

func TestBidEvent_Bid(t *testing.T) {
	ev := BidEvent{BidID: 5, AuctionID: 9, BidderID: 2, Price: 1200, BuyNow: true}

	bid := ev.Bid()

	assert.Equal(t, int64(5), bid.ID)
	assert.Equal(t, int64(9), bid.AuctionID)
	assert.Equal(t, int64(1200), bid.Price)
	assert.True(t, bid.BuyNow)
}

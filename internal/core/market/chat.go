package market

// TxType discriminates which listing kind a chat room is attached to.
type TxType string

const (
	TxAuction TxType = "AUCTION"
	TxPost    TxType = "POST"
)

// Message is a single chat message. Created by a local optimistic send or
// by an inbound push event, never mutated afterwards except the read flag.
type Message struct {
	ID         int64    `json:"id,omitempty"` // zero until server-assigned
	RoomID     string   `json:"roomId"`
	ItemID     int64    `json:"itemId,omitempty"`
	SenderID   int64    `json:"senderId,omitempty"`
	Sender     string   `json:"sender,omitempty"`
	Body       string   `json:"message"`
	ImageURLs  []string `json:"imageUrls,omitempty"`
	CreateDate Time     `json:"createDate"`
	Read       bool     `json:"isRead"`

	// PendingID keys an optimistic local entry until the server echo
	// arrives on the push channel. Never serialized.
	PendingID string `json:"-"`
}

// Pending reports whether the message is an optimistic local entry that
// has not been confirmed by the server yet.
func (m Message) Pending() bool {
	return m.ID == 0 && m.PendingID != ""
}

// RoomSummary is one row of the conversation list. Mutated whenever a new
// message arrives for its room.
type RoomSummary struct {
	RoomID           string `json:"roomId"`
	ItemID           int64  `json:"itemId"`
	Opponent         string `json:"opponentNickname,omitempty"`
	OpponentImageURL string `json:"opponentProfileImageUrl,omitempty"`
	LastMessage      string `json:"lastMessage,omitempty"`
	LastMessageAt    Time   `json:"lastMessageDate,omitempty"`
	UnreadCount      int    `json:"unreadCount,omitempty"`
	ItemName         string `json:"itemName,omitempty"`
	ItemImageURL     string `json:"itemImageUrl,omitempty"`
	ItemPrice        int64  `json:"itemPrice,omitempty"`
	TxType           TxType `json:"txType,omitempty"`
}

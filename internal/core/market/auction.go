package market

// AuctionStatus represents the lifecycle state of a timed auction.
type AuctionStatus string

const (
	AuctionOpen   AuctionStatus = "OPEN"
	AuctionClosed AuctionStatus = "CLOSED"
)

// Auction is a timed ascending-price listing. CurrentHighestBid and
// BidCount are the live-updated subset; everything else changes only via
// an authoritative re-fetch.
type Auction struct {
	ID                int64         `json:"auctionId"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	StartPrice        int64         `json:"startPrice"`
	CurrentHighestBid int64         `json:"currentHighestBid"`
	BuyNowPrice       int64         `json:"buyNowPrice,omitempty"`
	BidCount          int           `json:"bidCount"`
	Status            AuctionStatus `json:"status"`
	StartAt           Time          `json:"startAt"`
	EndAt             Time          `json:"endAt"`
	ThumbnailURL      string        `json:"thumbnailUrl,omitempty"`
	ImageURLs         []string      `json:"imageUrls,omitempty"`
	Seller            Seller        `json:"seller"`
	CategoryName      string        `json:"categoryName,omitempty"`

	// WinningBidID is set once the auction closes. It is the authoritative
	// winner reference; the winner is never inferred from bidder identities.
	WinningBidID int64 `json:"winningBidId,omitempty"`
}

// Open returns true while the auction accepts bids.
func (a Auction) Open() bool {
	return a.Status == AuctionOpen
}

// WinningBid resolves the winning bid from a bid collection using the
// auction's winning-bid reference. Returns nil when the auction is still
// open or the bid is not in the collection.
func (a Auction) WinningBid(bids []Bid) *Bid {
	if a.WinningBidID == 0 {
		return nil
	}
	for i := range bids {
		if bids[i].ID == a.WinningBidID {
			return &bids[i]
		}
	}
	return nil
}

// Bid is a single offer on an auction. Immutable once created.
type Bid struct {
	ID             int64  `json:"bidId"`
	AuctionID      int64  `json:"auctionId"`
	BidderID       int64  `json:"bidderId"`
	BidderNickname string `json:"bidderNickname,omitempty"`
	Price          int64  `json:"price"`
	CreateDate     Time   `json:"createDate"`
	BuyNow         bool   `json:"buyNow,omitempty"`
}

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

// AuctionQuery filters the auction listing.
type AuctionQuery struct {
	Page     int
	Size     int
	Status   string
	Category string
	Sort     string
}

func (q AuctionQuery) values() url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("size", strconv.Itoa(q.Size))
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.Sort != "" {
		query.Set("sort", q.Sort)
	}
	return query
}

// Auctions returns a page of auctions.
func (c *Client) Auctions(ctx context.Context, q AuctionQuery) (market.Page[market.Auction], error) {
	var page market.Page[market.Auction]
	if err := c.get(ctx, "/api/v1/auctions", q.values(), &page); err != nil {
		return market.Page[market.Auction]{}, err
	}
	return page, nil
}

// MyAuctions returns a page of the authenticated member's own auctions.
func (c *Client) MyAuctions(ctx context.Context, q AuctionQuery) (market.Page[market.Auction], error) {
	var page market.Page[market.Auction]
	if err := c.get(ctx, "/api/v1/members/me/auctions", q.values(), &page); err != nil {
		return market.Page[market.Auction]{}, err
	}
	return page, nil
}

// Auction returns the authoritative auction detail. This is also the
// re-fetch path after a buy-now push event closes the auction.
func (c *Client) Auction(ctx context.Context, id int64) (market.Auction, error) {
	var a market.Auction
	if err := c.get(ctx, fmt.Sprintf("/api/v1/auctions/%d", id), nil, &a); err != nil {
		return market.Auction{}, err
	}
	return a, nil
}

// AuctionBids returns a page of bid history, newest first.
func (c *Client) AuctionBids(ctx context.Context, id int64, page, size int) (market.Page[market.Bid], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var bids market.Page[market.Bid]
	if err := c.get(ctx, fmt.Sprintf("/api/v1/auctions/%d/bids", id), query, &bids); err != nil {
		return market.Page[market.Bid]{}, err
	}
	return bids, nil
}

// PlacedBid is the server's response to a successful bid: the created bid
// plus refreshed auction summary fields.
type PlacedBid struct {
	Bid               market.Bid `json:"bid"`
	CurrentHighestBid int64      `json:"currentHighestBid"`
	BidCount          int        `json:"bidCount"`
}

// PlaceBid submits a bid. Business rules (minimum increment, auction
// open/closed) are enforced entirely server-side; only the trivially
// invalid price is rejected locally.
func (c *Client) PlaceBid(ctx context.Context, auctionID, price int64) (PlacedBid, error) {
	if price <= 0 {
		return PlacedBid{}, FieldErrors{{Field: "price", Code: "min", Message: "price must be positive"}}
	}

	body := map[string]int64{"price": price}
	var placed PlacedBid
	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/auctions/%d/bids", auctionID), body, &placed); err != nil {
		return PlacedBid{}, err
	}
	return placed, nil
}

// BuyNow purchases the auction at its buy-now price, closing it.
func (c *Client) BuyNow(ctx context.Context, auctionID int64) (market.Auction, error) {
	var a market.Auction
	if err := c.postJSON(ctx, fmt.Sprintf("/api/v1/auctions/%d/buy-now", auctionID), struct{}{}, &a); err != nil {
		return market.Auction{}, err
	}
	return a, nil
}

// AuctionForm is the payload for creating or editing an auction listing.
// KeepImageURLs only matters on edit: images already on the listing that
// survive; anything not listed is replaced by the new uploads.
type AuctionForm struct {
	Name          string
	Description   string
	StartPrice    int64
	BuyNowPrice   int64
	Category      string
	EndAt         string // RFC3339, validated server-side
	ImagePaths    []string
	KeepImageURLs []string
}

// Validate checks the form before any network call is made.
func (f AuctionForm) Validate() error {
	var fields FieldErrors
	if strings.TrimSpace(f.Name) == "" {
		fields = append(fields, FieldError{Field: "name", Code: "required", Message: "name is required"})
	}
	if f.StartPrice <= 0 {
		fields = append(fields, FieldError{Field: "startPrice", Code: "min", Message: "start price must be positive"})
	}
	if f.BuyNowPrice != 0 && f.BuyNowPrice <= f.StartPrice {
		fields = append(fields, FieldError{Field: "buyNowPrice", Code: "range", Message: "buy-now price must exceed start price"})
	}
	if len(f.ImagePaths)+len(f.KeepImageURLs) > maxImages {
		fields = append(fields, FieldError{Field: "images", Code: "max", Message: fmt.Sprintf("at most %d images", maxImages)})
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (f AuctionForm) fields() url.Values {
	v := url.Values{}
	v.Set("name", f.Name)
	v.Set("description", f.Description)
	v.Set("startPrice", strconv.FormatInt(f.StartPrice, 10))
	v.Set("category", f.Category)
	v.Set("endAt", f.EndAt)
	if f.BuyNowPrice > 0 {
		v.Set("buyNowPrice", strconv.FormatInt(f.BuyNowPrice, 10))
	}
	for _, u := range f.KeepImageURLs {
		v.Add("keepImageUrls", u)
	}
	return v
}

func (f AuctionForm) files() []filePart {
	files := make([]filePart, 0, len(f.ImagePaths))
	for _, p := range f.ImagePaths {
		files = append(files, filePart{field: "images", path: p})
	}
	return files
}

// CreateAuction creates a new auction listing with optional images.
func (c *Client) CreateAuction(ctx context.Context, f AuctionForm) (market.Auction, error) {
	if err := f.Validate(); err != nil {
		return market.Auction{}, err
	}

	var a market.Auction
	if err := c.submitMultipart(ctx, "POST", "/api/v1/auctions", f.fields(), f.files(), &a); err != nil {
		return market.Auction{}, err
	}
	return a, nil
}

// UpdateAuction edits an existing auction listing.
func (c *Client) UpdateAuction(ctx context.Context, id int64, f AuctionForm) (market.Auction, error) {
	if err := f.Validate(); err != nil {
		return market.Auction{}, err
	}

	var a market.Auction
	path := fmt.Sprintf("/api/v1/auctions/%d", id)
	if err := c.submitMultipart(ctx, "PATCH", path, f.fields(), f.files(), &a); err != nil {
		return market.Auction{}, err
	}
	return a, nil
}

package market

// PostStatus represents the sale state of a fixed-price post.
type PostStatus string

const (
	PostOnSale PostStatus = "ON_SALE"
	PostSold   PostStatus = "SOLD"
)

// Post is a fixed-price classified listing.
type Post struct {
	ID           int64      `json:"postId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Price        int64      `json:"price"`
	Status       PostStatus `json:"status"`
	CategoryName string     `json:"categoryName,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	ImageURLs    []string   `json:"imageUrls,omitempty"`
	Seller       Seller     `json:"seller"`
	CreateDate   Time       `json:"createDate"`
	ModifyDate   Time       `json:"modifyDate"`
}

// Package market defines the marketplace domain types shared by the REST
// client, the live-update layer, and the terminal views.
package market

// Member is the authenticated user's profile.
type Member struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	CreateDate Time   `json:"createDate"`
	ModifyDate Time   `json:"modifyDate"`
}

// Seller is the public identity attached to posts and auctions.
type Seller struct {
	ID              int64   `json:"id"`
	Nickname        string  `json:"nickname"`
	ReputationScore float64 `json:"reputationScore"`
}

package live

import "github.com/hyeonlog/jangteo/internal/core/market"

// Cursor tracks the oldest-loaded message identifier, the boundary for
// backward history loads. It is mutated only by history fetches; push
// events never touch it.
type Cursor struct {
	// OldestID is the oldest identifier currently held, zero when no page
	// has been loaded yet.
	OldestID int64
	// More reports whether older history may still exist.
	More bool
}

// NewCursor returns the initial cursor state: unset, more available.
func NewCursor() Cursor {
	return Cursor{More: true}
}

// ApplyPage folds a fetched history page (oldest first) into the cursor.
// An empty page marks the history exhausted and changes nothing else.
// Returns true when the page advanced the boundary.
func (c *Cursor) ApplyPage(msgs []market.Message) bool {
	if len(msgs) == 0 {
		c.More = false
		return false
	}
	if id := msgs[0].ID; id > 0 {
		c.OldestID = id
	}
	return true
}

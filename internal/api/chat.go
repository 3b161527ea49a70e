package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

// ChatRooms returns the conversation list, most recent first.
func (c *Client) ChatRooms(ctx context.Context) ([]market.RoomSummary, error) {
	var rooms []market.RoomSummary
	if err := c.get(ctx, "/api/v1/chat/list", nil, &rooms); err != nil {
		return nil, err
	}

	sort.SliceStable(rooms, func(i, j int) bool {
		return rooms[i].LastMessageAt.After(rooms[j].LastMessageAt.Time)
	})
	return rooms, nil
}

// RoomMessages returns a page of messages for a room, oldest first. When
// beforeID is non-zero only messages older than it are returned; an empty
// result means the history is exhausted.
func (c *Client) RoomMessages(ctx context.Context, roomID string, beforeID int64) ([]market.Message, error) {
	if roomID == "" {
		return nil, FieldErrors{{Field: "roomId", Code: "required", Message: "room id is required"}}
	}

	var query url.Values
	if beforeID > 0 {
		query = url.Values{}
		query.Set("lastChatId", strconv.FormatInt(beforeID, 10))
	}

	var messages []market.Message
	path := fmt.Sprintf("/api/v1/chat/room/%s", url.PathEscape(roomID))
	if err := c.get(ctx, path, query, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessageForm is the payload for sending a chat message. At least one
// of Text and ImagePaths must be present.
type SendMessageForm struct {
	RoomID     string
	Text       string
	ImagePaths []string
}

// Validate checks the form before any network call is made.
func (f SendMessageForm) Validate() error {
	var fields FieldErrors
	if f.RoomID == "" {
		fields = append(fields, FieldError{Field: "roomId", Code: "required", Message: "room id is required"})
	}
	if strings.TrimSpace(f.Text) == "" && len(f.ImagePaths) == 0 {
		fields = append(fields, FieldError{Field: "message", Code: "required", Message: "message text or an image is required"})
	}
	if len(f.ImagePaths) > maxImages {
		fields = append(fields, FieldError{Field: "images", Code: "max", Message: fmt.Sprintf("at most %d images", maxImages)})
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

// SendMessage submits a chat message with optional image attachments.
// The response carries success only; the message itself arrives on the
// push channel (or via an explicit re-fetch when push is unavailable).
func (c *Client) SendMessage(ctx context.Context, f SendMessageForm) error {
	if err := f.Validate(); err != nil {
		return err
	}

	fields := url.Values{}
	fields.Set("roomId", f.RoomID)
	fields.Set("message", strings.TrimSpace(f.Text))
	files := make([]filePart, 0, len(f.ImagePaths))
	for _, p := range f.ImagePaths {
		files = append(files, filePart{field: "images", path: p})
	}

	return c.submitMultipart(ctx, "POST", "/api/v1/chat/send", fields, files, nil)
}

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

// PostQuery filters the fixed-price post listing.
type PostQuery struct {
	Page    int
	Size    int
	Keyword string
	Status  string
}

func (q PostQuery) values() url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("size", strconv.Itoa(q.Size))
	if q.Keyword != "" {
		query.Set("keyword", q.Keyword)
	}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	return query
}

// Posts returns a page of fixed-price posts.
func (c *Client) Posts(ctx context.Context, q PostQuery) (market.Page[market.Post], error) {
	var page market.Page[market.Post]
	if err := c.get(ctx, "/api/v1/posts", q.values(), &page); err != nil {
		return market.Page[market.Post]{}, err
	}
	return page, nil
}

// MyPosts returns a page of the authenticated member's own posts.
func (c *Client) MyPosts(ctx context.Context, q PostQuery) (market.Page[market.Post], error) {
	var page market.Page[market.Post]
	if err := c.get(ctx, "/api/v1/members/me/posts", q.values(), &page); err != nil {
		return market.Page[market.Post]{}, err
	}
	return page, nil
}

// Post returns a single post's detail.
func (c *Client) Post(ctx context.Context, id int64) (market.Post, error) {
	var p market.Post
	if err := c.get(ctx, fmt.Sprintf("/api/v1/posts/%d", id), nil, &p); err != nil {
		return market.Post{}, err
	}
	return p, nil
}

// PostForm is the payload for creating or editing a post. Image paths are
// local files uploaded as multipart attachments.
type PostForm struct {
	Title      string
	Content    string
	Price      int64
	Category   string
	ImagePaths []string
}

// Validate checks the form before any network call is made.
func (f PostForm) Validate() error {
	var fields FieldErrors
	if strings.TrimSpace(f.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Code: "required", Message: "title is required"})
	}
	if strings.TrimSpace(f.Content) == "" {
		fields = append(fields, FieldError{Field: "content", Code: "required", Message: "content is required"})
	}
	if f.Price < 0 {
		fields = append(fields, FieldError{Field: "price", Code: "min", Message: "price cannot be negative"})
	}
	if len(f.ImagePaths) > maxImages {
		fields = append(fields, FieldError{Field: "images", Code: "max", Message: fmt.Sprintf("at most %d images", maxImages)})
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

func (f PostForm) fields() url.Values {
	v := url.Values{}
	v.Set("title", f.Title)
	v.Set("content", f.Content)
	v.Set("price", strconv.FormatInt(f.Price, 10))
	v.Set("category", f.Category)
	return v
}

func (f PostForm) files() []filePart {
	files := make([]filePart, 0, len(f.ImagePaths))
	for _, p := range f.ImagePaths {
		files = append(files, filePart{field: "images", path: p})
	}
	return files
}

// CreatePost creates a new fixed-price post with optional images.
func (c *Client) CreatePost(ctx context.Context, f PostForm) (market.Post, error) {
	if err := f.Validate(); err != nil {
		return market.Post{}, err
	}

	var p market.Post
	if err := c.submitMultipart(ctx, "POST", "/api/v1/posts", f.fields(), f.files(), &p); err != nil {
		return market.Post{}, err
	}
	return p, nil
}

// UpdatePost edits an existing post.
func (c *Client) UpdatePost(ctx context.Context, id int64, f PostForm) (market.Post, error) {
	if err := f.Validate(); err != nil {
		return market.Post{}, err
	}

	var p market.Post
	path := fmt.Sprintf("/api/v1/posts/%d", id)
	if err := c.submitMultipart(ctx, "PUT", path, f.fields(), f.files(), &p); err != nil {
		return market.Post{}, err
	}
	return p, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/v1/posts/%d", id), nil)
}

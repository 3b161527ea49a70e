package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyeonlog/jangteo/internal/core/auth"
)

type staticCreds struct {
	creds auth.Credentials
	err   error
}

func (s staticCreds) Load(ctx context.Context) (auth.Credentials, error) {
	return s.creds, s.err
}

// writeEnvelope writes a success envelope with the given data payload.
func writeEnvelope(t *testing.T, w http.ResponseWriter, resultCode string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	err = json.NewEncoder(w).Encode(map[string]any{
		"resultCode": resultCode,
		"msg":        "",
		"data":       json.RawMessage(raw),
	})
	require.NoError(t, err)
}

func TestClient_EnvelopeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/members/me", r.URL.Path)
		writeEnvelope(t, w, "200-1", map[string]any{"id": 7, "username": "hana"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), me.ID)
	assert.Equal(t, "hana", me.Username)
}

func TestClient_ResultCodeGate(t *testing.T) {
	// HTTP 200 but a failure resultCode must be treated as an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewEncoder(w).Encode(map[string]any{
			"resultCode": "400-1",
			"msg":        "closed auction",
		})
		require.NoError(t, err)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Auction(context.Background(), 5)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "400-1", apiErr.ResultCode)
	assert.Contains(t, apiErr.Error(), "closed auction")
}

func TestClient_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Msg, "bad gateway")
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestClient_AttachesCredentials(t *testing.T) {
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-Api-Key")
		writeEnvelope(t, w, "200-1", map[string]any{})
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithCredentials(staticCreds{
		creds: auth.Credentials{AccessToken: "tok", APIKey: "key"},
	}))
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "key", gotKey)
}

func TestClient_AnonymousWhenNotLoggedIn(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(t, w, "200-1", map[string]any{})
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithCredentials(staticCreds{err: auth.ErrNotLoggedIn}))
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hana", body["username"])
		writeEnvelope(t, w, "200-1", map[string]string{
			"apiKey":      "key",
			"accessToken": "tok",
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	creds, err := c.Login(context.Background(), "hana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", creds.AccessToken)
	assert.Equal(t, "key", creds.APIKey)
	assert.Equal(t, "hana", creds.Username)
	assert.False(t, creds.SavedAt.IsZero())
}

func TestClient_LoginValidatesLocally(t *testing.T) {
	c, err := New("http://unused.invalid")
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "", "")
	var fields FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Len(t, fields, 2)
}

func TestClient_Signup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/members", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hana", body["username"])
		assert.Equal(t, "Hana", body["nickname"])
		writeEnvelope(t, w, "201-1", map[string]any{"id": 12, "username": "hana"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	m, err := c.Signup(context.Background(), SignupForm{
		Username: "hana",
		Password: "secret",
		Nickname: "Hana",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), m.ID)
	assert.Equal(t, "hana", m.Username)
}

func TestSignupForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		form      SignupForm
		wantField string
	}{
		{
			name: "complete form is valid",
			form: SignupForm{Username: "hana", Password: "secret", Nickname: "Hana"},
		},
		{
			name:      "missing username",
			form:      SignupForm{Password: "secret", Nickname: "Hana"},
			wantField: "username",
		},
		{
			name:      "missing password",
			form:      SignupForm{Username: "hana", Nickname: "Hana"},
			wantField: "password",
		},
		{
			name:      "blank nickname",
			form:      SignupForm{Username: "hana", Password: "secret", Nickname: "  "},
			wantField: "nickname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var fields FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Equal(t, tt.wantField, fields[0].Field)
		})
	}
}

func TestClient_MyListings(t *testing.T) {
	var gotPath, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStatus = r.URL.Query().Get("status")
		writeEnvelope(t, w, "200-1", map[string]any{
			"content": []map[string]any{}, "page": 0, "size": 20,
			"totalElements": 0, "totalPages": 0,
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.MyPosts(context.Background(), PostQuery{Size: 20, Status: "SOLD"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/members/me/posts", gotPath)
	assert.Equal(t, "SOLD", gotStatus)

	_, err = c.MyAuctions(context.Background(), AuctionQuery{Size: 20, Status: "OPEN"})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/members/me/auctions", gotPath)
	assert.Equal(t, "OPEN", gotStatus)
}

func TestClient_UpdateAuction(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "new.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpeg-bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/auctions/9", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Vintage camera", r.FormValue("name"))
		assert.Equal(t, "50000", r.FormValue("startPrice"))
		assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"},
			r.MultipartForm.Value["keepImageUrls"])

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 1)
		assert.Equal(t, "new.jpg", files[0].Filename)

		writeEnvelope(t, w, "200-1", map[string]any{"id": 9, "name": "Vintage camera"})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	a, err := c.UpdateAuction(context.Background(), 9, AuctionForm{
		Name:          "Vintage camera",
		StartPrice:    50000,
		ImagePaths:    []string{img},
		KeepImageURLs: []string{"/uploads/a.jpg", "/uploads/b.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), a.ID)
}

func TestClient_AuctionBidsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auctions/9/bids", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		writeEnvelope(t, w, "200-1", map[string]any{
			"content":       []map[string]any{{"bidId": 3, "price": 1500}},
			"page":          1,
			"size":          10,
			"totalElements": 11,
			"totalPages":    2,
		})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	page, err := c.AuctionBids(context.Background(), 9, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(1500), page.Content[0].Price)
	assert.Equal(t, int64(11), page.TotalElements)
}

func TestClient_SendMessageMultipart(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpeg-bytes"), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "room-1", r.FormValue("roomId"))
		assert.Equal(t, "hello", r.FormValue("message"))

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 1)
		assert.Equal(t, "photo.jpg", files[0].Filename)

		writeEnvelope(t, w, "201-1", map[string]any{})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	err = c.SendMessage(context.Background(), SendMessageForm{
		RoomID:     "room-1",
		Text:       "hello",
		ImagePaths: []string{img},
	})
	assert.NoError(t, err)
}

func TestSendMessageForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		form      SendMessageForm
		wantField string
	}{
		{
			name:      "missing room",
			form:      SendMessageForm{Text: "hi"},
			wantField: "roomId",
		},
		{
			name:      "empty body",
			form:      SendMessageForm{RoomID: "r1", Text: "   "},
			wantField: "message",
		},
		{
			name: "image only is valid",
			form: SendMessageForm{RoomID: "r1", ImagePaths: []string{"a.jpg"}},
		},
		{
			name: "too many images",
			form: SendMessageForm{RoomID: "r1", ImagePaths: []string{
				"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg",
			}},
			wantField: "images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var fields FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Equal(t, tt.wantField, fields[0].Field)
		})
	}
}

func TestParseFieldErrors(t *testing.T) {
	msg := "title-NotBlank-title is required\nprice-Min-price must be at least 0\nmalformed line\nprice-Max-ignored duplicate field"

	fields := ParseFieldErrors(msg)
	require.Len(t, fields, 2)
	assert.Equal(t, FieldError{Field: "title", Code: "NotBlank", Message: "title is required"}, fields[0])
	assert.Equal(t, FieldError{Field: "price", Code: "Min", Message: "price must be at least 0"}, fields[1])
}

func TestClient_RoomMessagesCursorParam(t *testing.T) {
	var gotLastChatID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLastChatID = r.URL.Query().Get("lastChatId")
		writeEnvelope(t, w, "200-1", []map[string]any{})
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.RoomMessages(context.Background(), "room-1", 0)
	require.NoError(t, err)
	assert.Empty(t, gotLastChatID)

	_, err = c.RoomMessages(context.Background(), "room-1", 42)
	require.NoError(t, err)
	assert.Equal(t, "42", gotLastChatID)
}

func TestClient_BuildURL(t *testing.T) {
	c, err := New("https://market.example.com")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "relative path", in: "/uploads/a.jpg", want: "https://market.example.com/uploads/a.jpg"},
		{name: "absolute url untouched", in: "https://cdn.example.com/a.jpg", want: "https://cdn.example.com/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.BuildURL(tt.in))
		})
	}
}

func TestError_Fields(t *testing.T) {
	apiErr := &Error{
		StatusCode: 400,
		ResultCode: "400-2",
		Msg:        "name-NotBlank-name is required",
	}
	fields := apiErr.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Field)
}

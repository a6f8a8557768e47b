package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(Config{
		BaseURL: srv.URL,
		AppID:   "test-app",
		Tokens:  staticToken(token),
	})
	return client, srv
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "test-app", r.Header.Get("X-Application-Id"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		assert.Equal(t, "pw1", req.Password)

		json.NewEncoder(w).Encode(Credentials{
			User:         User{ID: "u1", Username: "alice"},
			SessionToken: "tok-123",
		})
	}, "")

	creds, err := client.Login(context.Background(), "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "u1", creds.User.ID)
	assert.Equal(t, "tok-123", creds.SessionToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errorResponse{Code: 101, Error: "invalid username or password"})
	}, "")

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, KindUnauthorized, KindOf(err))

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 101, be.Code)
	assert.Equal(t, "invalid username or password", be.Message)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/signup", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Code: 202, Error: "username already taken"})
	}, "")

	_, err := client.Signup(context.Background(), "alice", "pw1")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestLogout_SendsSessionToken(t *testing.T) {
	var gotToken string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Session-Token")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}, "tok-123")

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, "tok-123", gotToken)
}

func TestUploadFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		assert.Equal(t, "image.jpg", r.Header.Get("X-File-Name"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, body)

		json.NewEncoder(w).Encode(FileRef{Name: "abc-image.jpg", URL: "/files/abc-image.jpg"})
	}, "tok")

	ref, err := client.UploadFile(context.Background(), "image.jpg", []byte{0xff, 0xd8, 0xff}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "abc-image.jpg", ref.Name)
}

func TestCreatePost(t *testing.T) {
	created := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/objects/Post", r.URL.Path)

		var draft PostDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		assert.Equal(t, "hello", draft.Caption)
		assert.Equal(t, "u1", draft.UserID)
		require.NotNil(t, draft.Location)
		assert.InDelta(t, 40.7, draft.Location.Latitude, 0.001)

		json.NewEncoder(w).Encode(Post{
			ID:        "p1",
			Caption:   draft.Caption,
			User:      User{ID: "u1", Username: "alice"},
			ImageFile: draft.ImageFile,
			Location:  draft.Location,
			CreatedAt: created,
		})
	}, "tok")

	post, err := client.CreatePost(context.Background(), PostDraft{
		Caption:   "hello",
		ImageFile: FileRef{Name: "abc-image.jpg", URL: "/files/abc-image.jpg"},
		UserID:    "u1",
		Location:  &GeoPoint{Latitude: 40.7, Longitude: -74.0},
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.True(t, post.CreatedAt.Equal(created))
}

func TestRecentPosts_QueryParameters(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/objects/Post", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "-createdAt", q.Get("order"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "20", q.Get("skip"))
		assert.Equal(t, "user", q.Get("include"))

		json.NewEncoder(w).Encode([]Post{{ID: "p1"}, {ID: "p2"}})
	}, "tok")

	posts, err := client.RecentPosts(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
}

func TestUserPosts_FiltersByUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("user"))
		json.NewEncoder(w).Encode([]Post{{ID: "p1"}})
	}, "tok")

	posts, err := client.UserPosts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestUnreachableBackendIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(Config{BaseURL: base, AppID: "test-app"})
	_, err := client.RecentPosts(context.Background(), 10, 0)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestMalformedResponseBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}, "tok")

	_, err := client.RecentPosts(context.Background(), 10, 0)
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

package backend

import (
	"fmt"
	"time"
)

// User represents an account on the backend. The password field is
// write-only: it is sent on signup/login and never returned by the server.
type User struct {
	ID        string    `json:"id,omitempty"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// DisplayName returns the name shown next to a post.
func (u User) DisplayName() string {
	if u.Username == "" {
		return "Unknown"
	}
	return u.Username
}

// Credentials is the result of a successful login or signup.
type Credentials struct {
	User         User   `json:"user"`
	SessionToken string `json:"sessionToken"`
}

// GeoPoint is a latitude/longitude pair attached to a post.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FileRef is an opaque handle to an uploaded file, resolvable to a
// downloadable URL.
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Post is a single feed entry. ID and CreatedAt are server-assigned and
// absent until the post has been persisted.
type Post struct {
	ID        string    `json:"id,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	User      User      `json:"user"`
	ImageFile FileRef   `json:"imageFile"`
	Location  *GeoPoint `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// PostDraft is the client-side shape of a post before it is persisted.
// The image must already be uploaded; ImageFile carries its reference.
type PostDraft struct {
	Caption   string    `json:"caption,omitempty"`
	ImageFile FileRef   `json:"imageFile"`
	UserID    string    `json:"userId"`
	Location  *GeoPoint `json:"location,omitempty"`
}

// TimeAgo formats the post's age for display ("2d ago", "3hr late",
// "5min late", "Just now").
func (p Post) TimeAgo() string {
	return timeAgo(p.CreatedAt, time.Now())
}

func timeAgo(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}

	elapsed := now.Sub(createdAt)
	switch {
	case elapsed >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours())/24)
	case elapsed >= time.Hour:
		return fmt.Sprintf("%dhr late", int(elapsed.Hours()))
	case elapsed >= time.Minute:
		return fmt.Sprintf("%dmin late", int(elapsed.Minutes()))
	default:
		return "Just now"
	}
}

// loginRequest is the request body for POST /login and POST /signup.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// errorResponse is the backend's uniform error body.
type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

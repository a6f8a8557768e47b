package devserver

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"snapfeed/internal/backend"
)

var (
	// ErrUsernameTaken is returned when signing up with an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnknownUser is returned when a post references a user that does not exist.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnknownFile is returned when a post references a file that was never uploaded.
	ErrUnknownFile = errors.New("unknown file")
)

type storedFile struct {
	data        []byte
	contentType string
}

type storedPost struct {
	post backend.Post
	// seq breaks creation-timestamp ties so feed order stays stable.
	seq int64
}

// Store is the in-memory state behind the dev server: users, sessions,
// uploaded files, and posts. All access is serialized by a single mutex;
// this is a development harness, not a storage engine.
type Store struct {
	mu        sync.Mutex
	users     map[string]backend.User // by id
	passwords map[string]string       // username -> password
	ids       map[string]string       // username -> id
	sessions  map[string]string       // token -> user id
	files     map[string]storedFile   // key -> file
	posts     []storedPost
	seq       int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]backend.User),
		passwords: make(map[string]string),
		ids:       make(map[string]string),
		sessions:  make(map[string]string),
		files:     make(map[string]storedFile),
	}
}

// CreateUser registers a new user. The username must be unused.
func (s *Store) CreateUser(username, password string) (backend.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[username]; exists {
		return backend.User{}, ErrUsernameTaken
	}

	user := backend.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.ids[username] = user.ID
	s.passwords[username] = password
	return user, nil
}

// Authenticate checks a username/password pair.
func (s *Store) Authenticate(username, password string) (backend.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.passwords[username]
	if !ok || stored != password {
		return backend.User{}, ErrInvalidCredentials
	}
	return s.users[s.ids[username]], nil
}

// CreateSession issues a fresh session token for a user.
func (s *Store) CreateSession(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.New().String()
	s.sessions[token] = userID
	return token
}

// DeleteSession tears down a session. Unknown tokens are ignored.
func (s *Store) DeleteSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// UserForToken resolves a session token to its user.
func (s *Store) UserForToken(token string) (backend.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.sessions[token]
	if !ok {
		return backend.User{}, false
	}
	user, ok := s.users[userID]
	return user, ok
}

// SaveFile stores uploaded bytes under a unique key and returns the
// file reference handed back to the client.
func (s *Store) SaveFile(name string, data []byte, contentType string) backend.FileRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s-%s", uuid.New().String(), name)
	s.files[key] = storedFile{data: data, contentType: contentType}
	return backend.FileRef{
		Name: key,
		URL:  "/files/" + key,
	}
}

// File returns the stored bytes for a file key.
func (s *Store) File(key string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[key]
	return f.data, f.contentType, ok
}

// CreatePost persists a post record. The author and the referenced file
// must both exist.
func (s *Store) CreatePost(draft backend.PostDraft) (backend.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[draft.UserID]
	if !ok {
		return backend.Post{}, ErrUnknownUser
	}
	if _, ok := s.files[draft.ImageFile.Name]; !ok {
		return backend.Post{}, ErrUnknownFile
	}

	s.seq++
	post := backend.Post{
		ID:        uuid.New().String(),
		Caption:   draft.Caption,
		User:      user,
		ImageFile: draft.ImageFile,
		Location:  draft.Location,
		CreatedAt: time.Now().UTC(),
	}
	s.posts = append(s.posts, storedPost{post: post, seq: s.seq})
	return post, nil
}

// Posts returns one feed page ordered by creation timestamp descending,
// author embedded. An empty userID returns the global feed; a non-empty
// one filters to that author. A limit of 0 means no limit.
func (s *Store) Posts(limit, skip int, userID string) []backend.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]storedPost, 0, len(s.posts))
	for _, sp := range s.posts {
		if userID != "" && sp.post.User.ID != userID {
			continue
		}
		matched = append(matched, sp)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].post.CreatedAt.Equal(matched[j].post.CreatedAt) {
			return matched[i].post.CreatedAt.After(matched[j].post.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	if skip >= len(matched) {
		return []backend.Post{}
	}
	matched = matched[skip:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	page := make([]backend.Post, len(matched))
	for i, sp := range matched {
		page[i] = sp.post
	}
	return page
}

package devserver

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"snapfeed/internal/backend"
)

// Backend error codes, mirrored by the hosted service.
const (
	codeInvalidCredentials  = 101
	codeUsernameTaken       = 202
	codeInvalidSessionToken = 209
	codeInvalidRequest      = 400
)

// MaxUploadSize caps a single file upload.
const MaxUploadSize = 10 * 1024 * 1024

// allowedContentTypes is the whitelist for file uploads.
var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type errorBody struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

func fail(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, errorBody{Code: code, Error: message})
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type geoPointRequest struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

type createPostRequest struct {
	Caption   string           `json:"caption" binding:"omitempty,max=1000"`
	ImageFile fileRefRequest   `json:"imageFile" binding:"required"`
	UserID    string           `json:"userId" binding:"required"`
	Location  *geoPointRequest `json:"location" binding:"omitempty"`
}

type fileRefRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url"`
}

// sessionAuth rejects requests without a valid session token and stores
// the resolved user in the gin context.
func (s *Server) sessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		if token == "" {
			fail(c, http.StatusUnauthorized, codeInvalidSessionToken, "session token required")
			return
		}
		user, ok := s.store.UserForToken(token)
		if !ok {
			fail(c, http.StatusUnauthorized, codeInvalidSessionToken, "invalid session token")
			return
		}
		c.Set("user", user)
		c.Set("token", token)
		c.Next()
	}
}

func currentUser(c *gin.Context) backend.User {
	user, _ := c.Get("user")
	return user.(backend.User)
}

// loginHandler handles POST /login.
func (s *Server) loginHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "username and password are required")
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		fail(c, http.StatusUnauthorized, codeInvalidCredentials, "invalid username or password")
		return
	}

	c.JSON(http.StatusOK, backend.Credentials{
		User:         user,
		SessionToken: s.store.CreateSession(user.ID),
	})
}

// signupHandler handles POST /signup.
func (s *Server) signupHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "username and password are required")
		return
	}

	user, err := s.store.CreateUser(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			fail(c, http.StatusBadRequest, codeUsernameTaken, "username already taken")
			return
		}
		fail(c, http.StatusInternalServerError, 0, "failed to create user")
		return
	}

	c.JSON(http.StatusOK, backend.Credentials{
		User:         user,
		SessionToken: s.store.CreateSession(user.ID),
	})
}

// logoutHandler handles POST /logout.
func (s *Server) logoutHandler(c *gin.Context) {
	token := c.GetString("token")
	s.store.DeleteSession(token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// uploadFileHandler handles POST /files: the raw request body is stored
// as an opaque file object named by the X-File-Name header.
func (s *Server) uploadFileHandler(c *gin.Context) {
	contentType := c.ContentType()
	if !allowedContentTypes[contentType] {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "content type "+contentType+" is not allowed")
		return
	}

	name := c.GetHeader("X-File-Name")
	if name == "" {
		name = "file"
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxUploadSize+1))
	if err != nil {
		fail(c, http.StatusInternalServerError, 0, "failed to read upload")
		return
	}
	if len(data) == 0 {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "empty upload")
		return
	}
	if len(data) > MaxUploadSize {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "upload exceeds size limit")
		return
	}

	c.JSON(http.StatusOK, s.store.SaveFile(name, data, contentType))
}

// downloadFileHandler handles GET /files/:key.
func (s *Server) downloadFileHandler(c *gin.Context) {
	key := c.Param("key")
	data, contentType, ok := s.store.File(key)
	if !ok {
		fail(c, http.StatusNotFound, 0, "file not found")
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// createPostHandler handles POST /objects/Post.
func (s *Server) createPostHandler(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "invalid post body: "+err.Error())
		return
	}

	if req.UserID != currentUser(c).ID {
		fail(c, http.StatusForbidden, 0, "cannot post as another user")
		return
	}

	draft := backend.PostDraft{
		Caption:   req.Caption,
		ImageFile: backend.FileRef{Name: req.ImageFile.Name, URL: req.ImageFile.URL},
		UserID:    req.UserID,
	}
	if req.Location != nil {
		draft.Location = &backend.GeoPoint{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		}
	}

	post, err := s.store.CreatePost(draft)
	if err != nil {
		if errors.Is(err, ErrUnknownFile) || errors.Is(err, ErrUnknownUser) {
			fail(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, 0, "failed to create post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// listPostsHandler handles GET /objects/Post with order, limit, skip,
// include, and an optional user filter.
func (s *Server) listPostsHandler(c *gin.Context) {
	if order := c.DefaultQuery("order", "-createdAt"); order != "-createdAt" {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "unsupported order: "+order)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "invalid limit")
		return
	}
	if limit == 0 || limit > 100 {
		limit = 100
	}

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		fail(c, http.StatusBadRequest, codeInvalidRequest, "invalid skip")
		return
	}

	c.JSON(http.StatusOK, s.store.Posts(limit, skip, c.Query("user")))
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "devserver"})
}

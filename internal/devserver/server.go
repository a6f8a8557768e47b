// Package devserver is an in-memory emulation of the photo-sharing
// backend's REST contract. It exists for local development and for
// integration tests that run the real client against a live server; it
// keeps everything in memory and needs no external services.
package devserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Config holds HTTP server configuration.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// LoadConfigFromEnv loads server configuration from environment variables.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "1337"))

	return &Config{
		Port:         port,
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
	}
}

// Server holds the dependencies for the dev backend.
type Server struct {
	store *Store
	log   *slog.Logger
}

// NewServer creates a dev backend over a fresh store.
func NewServer(log *slog.Logger) *Server {
	return &Server{
		store: NewStore(),
		log:   log,
	}
}

// Store exposes the backing store, used by tests to seed state.
func (s *Server) Store() *Store {
	return s.store
}

// NewHTTPServer wraps the dev backend in a configured http.Server.
func NewHTTPServer(log *slog.Logger) *http.Server {
	cfg := LoadConfigFromEnv()
	appServer := NewServer(log)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           appServer.RegisterRoutes(),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// RegisterRoutes wires the REST contract onto a gin engine.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Application-Id", "X-Session-Token", "X-Request-Id", "X-File-Name"},
		AllowCredentials: false,
	}))

	r.GET("/health", s.healthHandler)

	r.POST("/login", s.loginHandler)
	r.POST("/signup", s.signupHandler)
	r.GET("/files/:key", s.downloadFileHandler)

	authed := r.Group("/", s.sessionAuth())
	{
		authed.POST("/logout", s.logoutHandler)
		authed.POST("/files", s.uploadFileHandler)
		authed.POST("/objects/Post", s.createPostHandler)
		authed.GET("/objects/Post", s.listPostsHandler)
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/config"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/server/handlers"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/store"
)

// Server is the HTTP server.
type Server struct {
	router   *gin.Engine
	store    *store.Store
	handlers *handlers.Handlers
}

// NewServer wires the store and API handlers onto a gin engine.
func NewServer(cfg *config.AppConfig) *Server {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "dashboard.db")

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	s := &Server{
		router:   gin.Default(),
		store:    st,
		handlers: handlers.New(cfg, st, filepath.Join(dataDir, "uploads")),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.handlers.RegisterRoutes(api)
	}

	// The dashboard frontend is a separate consumer of this API; anything
	// else is a 404.
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Run starts the server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close releases the underlying store.
func (s *Server) Close() error {
	return s.store.Close()
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

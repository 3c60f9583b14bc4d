package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/config"
	"github.com/emilythestrangee/feedback-board/backend/internal/database"
	"github.com/emilythestrangee/feedback-board/backend/internal/handlers"
	"github.com/emilythestrangee/feedback-board/backend/internal/middleware"
)

type Server struct {
	cfg          *config.Config
	db           database.Service
	handler      *handlers.Handler
	authenticate gin.HandlerFunc
}

// NewServer wires the router into an http.Server listening on cfg.Port.
func NewServer(cfg *config.Config, db database.Service, handler *handlers.Handler, authenticate gin.HandlerFunc) *http.Server {
	s := &Server{
		cfg:          cfg,
		db:           db,
		handler:      handler,
		authenticate: authenticate,
	}

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS configuration
	r.Use(cors.New(s.corsConfig()))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		health := s.db.Health(c.Request.Context())
		if health["status"] != "up" {
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		c.JSON(http.StatusOK, health)
	})

	// API routes
	api := r.Group("/api")
	api.Use(s.authenticate)
	{
		// Public reads; a signed-in caller also gets has_voted
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/roadmap", s.handler.Post.GetRoadmap)
		api.GET("/categories", s.handler.Post.GetCategories)
		api.GET("/stats", s.handler.Post.GetStats)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.RequireUser())
		{
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.POST("/votes", s.handler.Vote.Toggle)
			protected.POST("/posts/:id/vote", s.handler.Vote.VotePost)
		}

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.PATCH("/posts/:id/status", s.handler.Admin.UpdateStatus)
			admin.GET("/admin/posts", s.handler.Admin.GetPosts)
		}
	}

	return r
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	origins := s.cfg.CORSAllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

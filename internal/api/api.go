// Package api serves the skillswap HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap/internal/api/handler"
	"github.com/skillswap/skillswap/internal/auth"
	"github.com/skillswap/skillswap/internal/cache"
	"github.com/skillswap/skillswap/internal/config"
	"github.com/skillswap/skillswap/internal/database"
	"github.com/skillswap/skillswap/internal/policy"
	"github.com/skillswap/skillswap/internal/profile"
	"github.com/skillswap/skillswap/internal/workshop"
)

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	db           database.DB
	authProvider *auth.Provider
	profiles     *profile.Service
	workshops    *workshop.Service
}

// New builds the server and registers all routes.
func New(ctx context.Context, cfg *config.Config, db database.DB, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	authProvider, err := auth.NewProvider(ctx, cfg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	profileCache := cache.NewProfileCache(cfg.Cache)

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:          cfg,
		ginEngine:    gin.New(),
		db:           db,
		authProvider: authProvider,
		profiles:     profile.New(db, profileCache, cfg),
		workshops:    workshop.New(db),
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) setupSession() {
	maxAge := s.cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = 3600
	}
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions("skillswap_session", store))
}

func (s *Server) setupRoutes() {
	s.ginEngine.Use(gin.Recovery(), requestLogger(), gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()
	s.ginEngine.Use(ErrorHandler())

	mw := s.authProvider.Middleware
	s.ginEngine.Use(mw.Authenticate())

	s.ginEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handler.New(s.profiles, s.workshops)
	v1 := s.ginEngine.Group("/api/v1")

	s.setupAuthRoutes(v1.Group("/auth"))

	// public
	v1.GET("/users/:id", h.GetUser)
	v1.GET("/workshops", h.ListWorkshops)
	v1.GET("/workshops/:id", h.GetWorkshop)

	protected := v1.Group("/")
	protected.Use(mw.RequireAuth())
	protected.GET("/users/me", h.Me)
	protected.PATCH("/users/me", h.UpdateMe)
	protected.POST("/users/me/skills", h.AddSkill)
	protected.POST("/users/me/skills/delete", h.RemoveSkill)
	protected.POST("/workshops", h.CreateWorkshop)
	protected.DELETE("/workshops/:id", h.DeleteWorkshop)

	s.setupAdminRoutes(v1.Group("/admin"))
}

func (s *Server) setupAuthRoutes(g *gin.RouterGroup) {
	g.POST("/logout", auth.Logout)
	if s.authProvider.Local != nil {
		g.POST("/login", s.authProvider.Local.Login)
	}
	if s.authProvider.OIDC != nil {
		g.GET("/oidc/login", s.authProvider.OIDC.Login)
		g.GET("/oidc/callback", s.authProvider.OIDC.Callback)
	}
}

func (s *Server) setupAdminRoutes(g *gin.RouterGroup) {
	g.Use(s.authProvider.Middleware.RequireRole(policy.RoleAdmin))

	h := handler.NewAdmin(s.db, s.profiles)
	g.GET("/hello", h.Hello)
	g.GET("/audit", h.GetAuditLogs)
	g.GET("/stats", h.Stats)
	g.DELETE("/users/:id", h.DeleteUser)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := log.WithPrefix("api")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", "listen", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	logger := log.WithPrefix("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

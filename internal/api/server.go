// Package api exposes the show library and caches over HTTP.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/enrichman/httpgrace"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/showtrack/internal/app"
	applog "github.com/mmcdole/showtrack/internal/log"
)

// Server holds the HTTP handlers. Each handler reads from the shared App.
type Server struct {
	app    *app.App
	logger *slog.Logger
}

func NewServer(a *app.App) *Server {
	return &Server{app: a, logger: applog.For(a.Logger, "api")}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "UP"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("")
	api.Use(RequestTimeout(s.app.Config.Server.WriteTimeout))

	shows := api.Group("/shows")
	shows.GET("", s.listShows)
	shows.POST("", s.addShow)
	shows.GET("/search", s.searchShows)
	shows.GET("/:id", s.getShow)
	shows.DELETE("/:id", s.removeShow)
	shows.GET("/:id/images", s.getImages)
	shows.DELETE("/:id/images", s.clearImages)
	shows.GET("/:id/seasons", s.getSeasons)

	api.GET("/discover/popular", s.popular)
	api.GET("/discover/search", s.searchRemote)

	return r
}

// ListenAndServe serves until SIGINT or SIGTERM, then drains in-flight
// requests within the configured shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	cfg := s.app.Config.Server
	gin.SetMode(cfg.GinMode)

	srv := httpgrace.NewServer(s.Router(),
		httpgrace.WithTimeout(cfg.ShutdownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(s.logger),
		httpgrace.WithBeforeShutdown(func() {
			s.logger.Info("shutting down http server")
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(cfg.ReadTimeout),
			httpgrace.WithWriteTimeout(cfg.WriteTimeout),
			httpgrace.WithIdleTimeout(cfg.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = slog.NewLogLogger(s.logger.Handler(), slog.LevelError)
			},
		),
	)

	s.logger.Info("http server listening", "addr", cfg.Addr)
	return srv.ListenAndServe(cfg.Addr)
}

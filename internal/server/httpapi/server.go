// Package httpapi exposes the note store over HTTP/JSON:
//
//	GET    /ping
//	GET    /notes
//	GET    /notes/:id
//	PUT    /notes
//	DELETE /notes/:id
//
// Errors are returned as {"error": "..."}. When a secret key is set every
// /notes route requires an HS256 bearer token.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/devnotes/internal/logging"
	"github.com/dmitrijs2005/devnotes/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address   string
	notes     *services.NoteService
	logger    logging.Logger
	jwtSecret []byte
	engine    *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, ns *services.NoteService, secretKey string) *HTTPServer {
	s := &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		notes:   ns,
	}
	if secretKey != "" {
		s.jwtSecret = []byte(secretKey)
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	notes := r.Group("/notes")
	if s.jwtSecret != nil {
		notes.Use(s.bearerAuth())
	}
	{
		notes.GET("", s.listNotes)
		notes.GET("/:id", s.getNote)
		notes.PUT("", s.upsertNote)
		notes.DELETE("/:id", s.deleteNote)
	}
	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

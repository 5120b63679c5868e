package siteindex

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rcliao/scratchpad/internal/logging"
)

// Server previews the indexed directory over HTTP.
type Server struct {
	opts   Options
	log    *zap.Logger
	engine *gin.Engine
}

// NewServer wires the preview routes. Static files are served from opts.Dir.
func NewServer(opts Options, log *zap.Logger) *Server {
	s := &Server{opts: opts, log: logging.OrNop(log).Named("serve")}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET("/healthz", s.handleHealth)
	r.POST("/rebuild", s.handleRebuild)
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.Dir))))
	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("serving", zap.String("addr", addr), zap.String("dir", s.opts.Dir))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleRebuild(c *gin.Context) {
	res, err := Build(s.opts, s.log)
	if errors.Is(err, ErrNoEntries) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "entries": 0, "written": false})
		return
	}
	if err != nil {
		s.log.Error("rebuild failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"entries":  len(res.Entries),
		"failures": len(res.Failures),
		"written":  res.Written,
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

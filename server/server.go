package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/logging"
)

// TurnRunner runs one turn. *runner.Runner implements it.
type TurnRunner interface {
	Run(ctx context.Context, threadID string, input any) (*agent.Response, error)
}

// HistoryReader reads a thread's stored history. *agent.Agent implements it.
type HistoryReader interface {
	History(ctx context.Context, threadID string) ([]core.Message, error)
}

// Options configures the server.
type Options struct {
	// CORSOrigins enables CORS for the listed origins.
	CORSOrigins []string
	// ReadTimeout and WriteTimeout bound HTTP exchanges in ListenAndServe.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Logger receives request and error events.
	Logger logging.Logger
}

// Server is the HTTP host of an agent.
type Server struct {
	engine  *gin.Engine
	turns   TurnRunner
	history HistoryReader
	opts    Options
	logger  logging.Logger
}

// New builds the gin engine and attaches the routes.
func New(turns TurnRunner, history HistoryReader, optFns ...func(o *Options)) *Server {
	opts := Options{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	g := gin.New()
	g.Use(gin.Recovery())

	s := &Server{
		engine:  g,
		turns:   turns,
		history: history,
		opts:    opts,
		logger:  opts.Logger,
	}

	g.Use(s.requestLogger())

	if len(opts.CORSOrigins) > 0 {
		g.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
		}))
	}

	s.attachRoutes()

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.logger.Info("server.shutdown", "addr", addr)

		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) attachRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/v1")
	{
		v1.POST("/threads", s.createThread)
		v1.POST("/threads/:id/turns", s.runTurn)
		v1.GET("/threads/:id/history", s.getHistory)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("server.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

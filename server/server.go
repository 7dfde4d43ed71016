package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/brettbedarf/webterm/internal/util"
	"github.com/brettbedarf/webterm/shell"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/puzpuzpuz/xsync/v4"
)

var ErrSessionNotFound = errors.New("session not found")

// session is one browser terminal with its own tree
type session struct {
	id      string
	term    *shell.Terminal
	created time.Time
}

// Server hosts terminal sessions over HTTP for the browser front end
type Server struct {
	cfg      *config.Config
	registry *shell.Registry
	sessions *xsync.Map[string, *session]
	echo     *echo.Echo
}

// New creates a Server with its routes registered. Every session shares
// registry but gets a freshly seeded tree.
func New(cfg *config.Config, registry *shell.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		registry: registry,
		sessions: xsync.NewMap[string, *session](),
	}
	s.echo = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestLogger())

	e.GET("/health", s.HandleHealth)

	api := e.Group("/api/sessions")
	api.POST("", s.HandleCreate)
	api.GET("/:id", s.HandleGet)
	api.POST("/:id/input", s.HandleInput)
	api.POST("/:id/exec", s.HandleExec)
	api.DELETE("/:id", s.HandleDelete)

	return e
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address and blocks until Shutdown.
func (s *Server) Start() error {
	logger := util.GetLogger("Server.Start")
	logger.Info().Str("addr", s.cfg.Addr).Msg("Serving terminal API")

	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync runs Start in a goroutine and reports its result on the channel
func (s *Server) StartAsync() <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- s.Start()
		close(done)
	}()

	return done
}

// Shutdown stops accepting requests and drops every session
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.Clear()
	return s.echo.Shutdown(ctx)
}

func (s *Server) newSession() (*session, error) {
	logger := util.GetLogger("Server.newSession")

	tree, err := filesystem.NewTree(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}
	if err := tree.Seed(s.cfg.Seed); err != nil {
		// partial seeds are still usable
		logger.Warn().Err(err).Msg("Seeding incomplete")
	}

	sess := &session{
		id:      uuid.NewString(),
		term:    shell.NewTerminal(s.cfg, tree, s.registry),
		created: time.Now(),
	}
	s.sessions.Store(sess.id, sess)
	logger.Debug().Str("id", sess.id).Msg("Created session")
	return sess, nil
}

func (s *Server) getSession(id string) (*session, error) {
	sess, ok := s.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// SessionCount returns the number of live sessions
func (s *Server) SessionCount() int {
	return s.sessions.Size()
}

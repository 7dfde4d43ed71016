package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/brettbedarf/webterm/internal/util"
	"github.com/labstack/echo/v4"
)

// SessionResponse describes the terminal surface of a session
type SessionResponse struct {
	ID      string    `json:"id"`
	Buffer  string    `json:"buffer"`
	Prompt  string    `json:"prompt"`
	Created time.Time `json:"created"`
}

// InputRequest carries the whole terminal buffer after an edit
type InputRequest struct {
	Buffer string `json:"buffer"`
}

// ExecRequest carries a single command line
type ExecRequest struct {
	Line string `json:"line"`
}

// ExecResponse is the output of one command and the prompt that follows it
type ExecResponse struct {
	Output string `json:"output"`
	Prompt string `json:"prompt"`
	Error  string `json:"error,omitempty"`
}

func sessionResponse(sess *session) SessionResponse {
	return SessionResponse{
		ID:      sess.id,
		Buffer:  sess.term.Buffer(),
		Prompt:  sess.term.Prompt(),
		Created: sess.created,
	}
}

// HandleCreate handles POST /api/sessions.
func (s *Server) HandleCreate(c echo.Context) error {
	sess, err := s.newSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, sessionResponse(sess))
}

// HandleGet handles GET /api/sessions/:id.
func (s *Server) HandleGet(c echo.Context) error {
	sess, err := s.getSession(c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

// HandleInput handles POST /api/sessions/:id/input.
// The body holds the edited buffer; the response holds what the browser must
// show instead.
func (s *Server) HandleInput(c echo.Context) error {
	sess, err := s.getSession(c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	var req InputRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	buffer := sess.term.OnInput(req.Buffer)
	resp := sessionResponse(sess)
	resp.Buffer = buffer
	return c.JSON(http.StatusOK, resp)
}

// HandleExec handles POST /api/sessions/:id/exec.
// A failing command still answers 200; the session lives on.
func (s *Server) HandleExec(c echo.Context) error {
	logger := util.GetLogger("Server.HandleExec")

	sess, err := s.getSession(c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	var req ExecRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	output, err := sess.term.Submit(req.Line)
	resp := ExecResponse{Output: output, Prompt: sess.term.Prompt()}
	if err != nil {
		logger.Warn().Err(err).Str("id", sess.id).Str("line", req.Line).Msg("Command failed")
		resp.Error = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/sessions/:id.
func (s *Server) HandleDelete(c echo.Context) error {
	id := c.Param("id")
	if _, ok := s.sessions.LoadAndDelete(id); !ok {
		return mapError(c, ErrSessionNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleHealth handles GET /health.
func (s *Server) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "healthy",
		"sessions": s.SessionCount(),
	})
}

func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": ErrSessionNotFound.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

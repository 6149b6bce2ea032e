package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/agentloop/core"
)

type turnRequest struct {
	Input any `json:"input"`
}

type turnResponse struct {
	ThreadID        string                `json:"thread_id"`
	Payload         any                   `json:"payload"`
	TurnsUsed       int                   `json:"turns_used"`
	ToolInvocations []core.ToolInvocation `json:"tool_invocations"`
}

type historyResponse struct {
	ThreadID string          `json:"thread_id"`
	Messages []core.Envelope `json:"messages"`
}

func (s *Server) createThread(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"thread_id": core.NewID()})
}

func (s *Server) runTurn(c *gin.Context) {
	threadID := c.Param("id")

	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	resp, err := s.turns.Run(c.Request.Context(), threadID, req.Input)
	if err != nil {
		s.abort(c, threadID, err)
		return
	}

	out := turnResponse{
		ThreadID:        threadID,
		Payload:         resp.Payload,
		ToolInvocations: []core.ToolInvocation{},
	}
	if resp.Result != nil {
		out.TurnsUsed = resp.Result.TurnsUsed
		if len(resp.Result.ToolInvocations) > 0 {
			out.ToolInvocations = resp.Result.ToolInvocations
		}
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) getHistory(c *gin.Context) {
	threadID := c.Param("id")

	msgs, err := s.history.History(c.Request.Context(), threadID)
	if err != nil {
		s.abort(c, threadID, err)
		return
	}

	envs := make([]core.Envelope, len(msgs))
	for i, m := range msgs {
		envs[i] = core.ToEnvelope(m)
	}

	c.JSON(http.StatusOK, historyResponse{ThreadID: threadID, Messages: envs})
}

func (s *Server) abort(c *gin.Context, threadID string, err error) {
	status := statusFor(err)

	s.logger.Warn("server.turn.failed", "thread", threadID, "status", status, "error", err.Error())

	c.JSON(status, gin.H{"error": err.Error()})
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTransport), errors.Is(err, core.ErrToolResolution):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Package handler exposes the threat engine over HTTP for the vault
// application: assessment runs, score history, and action validation.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vaultsentry/vaultsentry/internal/engine"
	"github.com/vaultsentry/vaultsentry/internal/remediation"
	"github.com/vaultsentry/vaultsentry/internal/triage"
)

// AssessmentPublisher is an optional event sink for completed
// assessments.
type AssessmentPublisher interface {
	PublishAssessment(a *engine.Assessment) error
}

// Server wires the engine into Gin handlers.
type Server struct {
	engine    *engine.Engine
	publisher AssessmentPublisher
	logger    *zap.Logger
}

// New creates a Server around the given engine.
func New(eng *engine.Engine, logger *zap.Logger) *Server {
	return &Server{engine: eng, logger: logger}
}

// SetPublisher configures the optional assessment event sink. Publish
// failures are logged, never surfaced to HTTP clients.
func (s *Server) SetPublisher(p AssessmentPublisher) {
	s.publisher = p
}

// Register mounts all routes on the router group.
func (s *Server) Register(r *gin.RouterGroup) {
	r.POST("/vaults/:id/analyze", s.analyze)
	r.GET("/vaults/:id/history", s.history)
	r.POST("/actions/validate", s.validateAction)
}

func (s *Server) analyze(c *gin.Context) {
	vaultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vault id"})
		return
	}

	assessment, err := s.engine.Analyze(c.Request.Context(), vaultID)
	if err != nil {
		if errors.Is(err, engine.ErrFetchFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("analyze failed", zap.String("vault_id", vaultID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assessment failed"})
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishAssessment(assessment); err != nil {
			s.logger.Warn("publish assessment failed",
				zap.String("vault_id", vaultID.String()), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) history(c *gin.Context) {
	vaultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vault id"})
		return
	}
	snapshots := s.engine.History(vaultID)
	c.JSON(http.StatusOK, gin.H{
		"vault_id":  vaultID,
		"count":     len(snapshots),
		"snapshots": snapshots,
	})
}

// validateRequest is the wire form of a validation query: the action to
// check plus the live vault state it should be checked against.
type validateRequest struct {
	Action remediation.RemediationAction `json:"action" binding:"required"`
	State  struct {
		VaultID         uuid.UUID   `json:"vault_id"`
		Status          string      `json:"status"`
		OwnerID         uuid.UUID   `json:"owner_id"`
		CallerID        uuid.UUID   `json:"caller_id"`
		SessionToken    string      `json:"session_token"`
		DocumentIDs     []uuid.UUID `json:"document_ids"`
		RevokedNominees []uuid.UUID `json:"revoked_nominees"`
		RevokedSessions []uuid.UUID `json:"revoked_sessions"`
	} `json:"state"`
}

func (s *Server) validateAction(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := triage.VaultState{
		VaultID:         req.State.VaultID,
		Status:          req.State.Status,
		OwnerID:         req.State.OwnerID,
		CallerID:        req.State.CallerID,
		SessionToken:    req.State.SessionToken,
		DocumentIDs:     idSet(req.State.DocumentIDs),
		RevokedNominees: idSet(req.State.RevokedNominees),
		RevokedSessions: idSet(req.State.RevokedSessions),
	}

	ok, reason := s.engine.ValidateAction(req.Action, state)
	resp := gin.H{"can_execute": ok}
	if reason != "" {
		resp["reason"] = reason
	}
	c.JSON(http.StatusOK, resp)
}

func idSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

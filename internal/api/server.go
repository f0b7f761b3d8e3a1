// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg          *domain.Config
	logger       *logrus.Logger
	orchestrator *service.Orchestrator
	store        domain.ReportStore
	router       *gin.Engine
	server       *http.Server
}

// AnalyzeRequest is the analysis endpoint payload.
type AnalyzeRequest struct {
	VCFText string   `json:"vcf_text"`
	Drugs   []string `json:"drugs" binding:"required"`
}

// NewServer creates a new HTTP server instance. The store may be nil, in
// which case reports are returned but not persisted.
func NewServer(cfg *domain.Config, logger *logrus.Logger, orchestrator *service.Orchestrator, store domain.ReportStore) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		orchestrator: orchestrator,
		store:        store,
		router:       router,
	}
	s.setupRoutes()
	return s
}

// Router exposes the configured gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.GET("/reports/:patient_id", s.handleGetReports)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"guideline": "pgx-risk-engine",
	})
}

// handleAnalyze runs one analysis over the submitted variant text and drug
// list and returns the full result, persisting validated reports when a
// store is configured.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid request body", err.Error())
		return
	}

	result := s.orchestrator.Run(c.Request.Context(), req.VCFText, req.Drugs)

	if s.store != nil {
		for i := range result.Reports {
			if err := s.store.Save(c.Request.Context(), &result.Reports[i]); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"patient_id": result.PatientID,
					"drug":       result.Reports[i].Drug,
				}).Warn("Failed to persist report")
			}
		}
	}

	c.JSON(http.StatusOK, result)
}

// handleGetReports returns the stored reports for one patient ID.
func (s *Server) handleGetReports(c *gin.Context) {
	if s.store == nil {
		errorResponse(c, http.StatusNotFound, domain.ErrDatabaseError, "report persistence is not configured", "")
		return
	}

	patientID := c.Param("patient_id")
	reports, err := s.store.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		s.logger.WithError(err).WithField("patient_id", patientID).Error("Failed to load reports")
		errorResponse(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to load reports", "")
		return
	}
	if len(reports) == 0 {
		errorResponse(c, http.StatusNotFound, domain.ErrInvalidInput, fmt.Sprintf("no reports found for patient %s", patientID), "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient_id": patientID, "reports": reports})
}

// errorResponse writes a standardized error body carrying the request ID set
// by the middleware.
func errorResponse(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, domain.NewEngineError(code, message, details, c.GetString("request_id")))
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// Package api exposes scan submission and job polling over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/selimozcann/infoprobe/internal/job"
	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/model"
)

// Jobs submits scans and reports on them. *job.Runner satisfies it.
type Jobs interface {
	Submit(ctx context.Context, cfg model.ScanConfig) (string, error)
	Status(ctx context.Context, id string) (*model.Job, error)
}

// ScanRequest is the body accepted by the submit endpoints. Field names
// match the form posted by the browser front-end.
type ScanRequest struct {
	IgnoreSSL         bool   `json:"ignore_ssl"`
	CheckSubdomains   bool   `json:"check_subdomains"`
	FollowRedirects   bool   `json:"follow_redirects"`
	WebhookURLEnabled bool   `json:"webhook_url_enabled"`
	WebhookURL        string `json:"webhook_url"`
}

// Handler serves the HTTP API.
type Handler struct {
	jobs     Jobs
	defaults model.ScanConfig
	log      logger.Logger
}

// NewHandler creates a Handler. defaults supplies the domain list paths and
// the fallback webhook URL; request flags override the rest.
func NewHandler(jobs Jobs, defaults model.ScanConfig, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{jobs: jobs, defaults: defaults, log: log}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())

	router.GET("/health", h.Health)
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/scans", h.Submit(http.StatusAccepted))
	v1.GET("/jobs/:id", h.Status)

	// paths used by the original browser front-end
	router.POST("/run_script", h.Submit(http.StatusOK))
	router.GET("/job_status/:id", h.Status)

	return router
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Submit starts a scan job and responds with its id using status.
func (h *Handler) Submit(status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScanRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
				return
			}
		}

		id, err := h.jobs.Submit(c.Request.Context(), h.scanConfig(req))
		if err != nil {
			h.log.Error("Failed to submit scan", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit scan"})
			return
		}
		c.JSON(status, gin.H{"job_id": id})
	}
}

// Status returns the job as JSON with the webhook URL redacted.
func (h *Handler) Status(c *gin.Context) {
	j, err := h.jobs.Status(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, job.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "not found"})
	case err != nil:
		h.log.Error("Failed to load job", logger.String("job_id", c.Param("id")), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
	default:
		c.JSON(http.StatusOK, j.Redacted())
	}
}

func (h *Handler) scanConfig(req ScanRequest) model.ScanConfig {
	cfg := model.ScanConfig{
		DomainFile:      h.defaults.DomainFile,
		SubdomainFile:   h.defaults.SubdomainFile,
		IgnoreSSL:       req.IgnoreSSL,
		FollowRedirects: req.FollowRedirects,
		CheckSubdomains: req.CheckSubdomains,
	}
	if req.WebhookURLEnabled {
		cfg.WebhookURL = req.WebhookURL
		if cfg.WebhookURL == "" {
			cfg.WebhookURL = h.defaults.WebhookURL
		}
	}
	return cfg
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)))
	}
}

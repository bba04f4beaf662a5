package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravin1100/Zoop-FNOL-Agent/internal/cache"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/llm"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/model"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/pipeline"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/store"
	"github.com/ravin1100/Zoop-FNOL-Agent/internal/validate"
)

// Handler serves the claim processing HTTP surface
type Handler struct {
	processor *pipeline.Processor
	store     *store.Store
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewHandler creates a handler with injected collaborators. cache may be
// nil to disable dashboard caching.
func NewHandler(processor *pipeline.Processor, st *store.Store, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		processor: processor,
		store:     st,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.RegisterRoutes(router)
	return router
}

// RegisterRoutes binds handler methods to the route tree
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	claims := router.Group("/claims")
	{
		claims.POST("/process", h.ProcessClaim)
		claims.POST("/process-claim-live", h.ProcessClaimLive)
		claims.GET("/assessments", h.ListAssessments)
		claims.GET("/processed/:claim_id", h.GetAssessment)
		claims.GET("/dashboard", h.Dashboard)
	}

	router.GET("/sys/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	var nferr *store.NotFoundError
	if errors.As(err, &nferr) {
		return http.StatusNotFound
	}

	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		if perr.Duplicate {
			return http.StatusConflict
		}
		return http.StatusInternalServerError
	}

	var derr *llm.DecisionError
	if errors.As(err, &derr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ProcessClaim runs the synchronous transactional pipeline
func (h *Handler) ProcessClaim(c *gin.Context) {
	var claim model.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim payload: " + err.Error()})
		return
	}

	result, err := h.processor.Process(c.Request.Context(), claim)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Claim processed successfully",
		"claim":   result.Claim,
	})
}

// ProcessClaimLive runs the pipeline while streaming per-stage progress
// as server-sent events. Failures after the stream has started arrive as
// an in-band error event; the stream then ends.
func (h *Handler) ProcessClaimLive(c *gin.Context) {
	var claim model.Claim
	if err := c.ShouldBindJSON(&claim); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim payload: " + err.Error()})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	events := h.processor.ProcessStream(c.Request.Context(), claim)
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("message", ev)
		return true
	})
}

// GetAssessment returns the combined assessment for a public claim id
func (h *Handler) GetAssessment(c *gin.Context) {
	claimID := c.Param("claim_id")

	assessment, err := h.store.GetAssessmentByClaimID(c.Request.Context(), claimID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// ListAssessments returns one page of assessments
func (h *Handler) ListAssessments(c *gin.Context) {
	pageNo, err := strconv.Atoi(c.DefaultQuery("page_no", "1"))
	if err != nil || pageNo < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_no must be a positive integer"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if err != nil || pageSize < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page_size must be a positive integer"})
		return
	}

	page, err := h.store.ListAssessments(c.Request.Context(), pageNo, pageSize)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Dashboard returns aggregate metrics, cached for a short TTL
func (h *Handler) Dashboard(c *gin.Context) {
	key := cache.Key("dashboard")
	if h.cache != nil {
		if cached, found := h.cache.Get(key); found {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	dash, err := h.store.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	if h.cache != nil {
		if payload, err := json.Marshal(dash); err == nil {
			_ = h.cache.Set(key, payload, h.cacheTTL)
		}
	}

	c.JSON(http.StatusOK, dash)
}

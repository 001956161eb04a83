package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"classifieds-service/internal/service"
	"classifieds-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SignatureHeader carries the webhook payload signature.
const SignatureHeader = "Payment-Signature"

// Handler contains HTTP handlers
type Handler struct {
	checkout   *service.CheckoutService
	webhook    *service.WebhookService
	moderation *service.ModerationService
	listing    *service.ListingService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	checkout *service.CheckoutService,
	webhook *service.WebhookService,
	moderation *service.ModerationService,
	listing *service.ListingService,
) *Handler {
	return &Handler{
		checkout:   checkout,
		webhook:    webhook,
		moderation: moderation,
		listing:    listing,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/ads/checkout", h.createCheckout)
		v1.GET("/ads", h.listApproved)
		v1.POST("/webhooks/payment", h.paymentWebhook)

		admin := v1.Group("/admin")
		{
			admin.GET("/ads/pending", h.listPending)
			admin.POST("/ads/:id/moderate", h.moderate)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createCheckout persists a draft and returns the hosted checkout URL
func (h *Handler) createCheckout(c *gin.Context) {
	var draft service.AdDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.checkout.Checkout(c.Request.Context(), &draft)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// listApproved is the public read path
func (h *Handler) listApproved(c *gin.Context) {
	state := c.Query("state")
	county := c.Query("county")

	ads, err := h.listing.ListApproved(c.Request.Context(), state, county)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

// paymentWebhook receives signed gateway events. The body is passed raw to
// the service; signature verification happens before any decoding.
func (h *Handler) paymentWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable payload"})
		return
	}

	if err := h.webhook.HandleEvent(c.Request.Context(), payload, c.GetHeader(SignatureHeader)); err != nil {
		var gatewayErr *service.GatewayError
		if errors.As(err, &gatewayErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": gatewayErr.Error()})
			return
		}
		// Non-ack: the gateway will redeliver.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// listPending returns the moderation queue
func (h *Handler) listPending(c *gin.Context) {
	ads, err := h.moderation.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

type moderateRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment,omitempty"`
}

// moderate applies an approve/reject decision
func (h *Handler) moderate(c *gin.Context) {
	adID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ad ID"})
		return
	}

	var req moderateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	ad, err := h.moderation.Moderate(c.Request.Context(), adID, req.Action, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ad": ad})
}

// respondError maps service errors onto HTTP statuses: malformed input is
// 400, unknown records 404, no-longer-actionable records 409, upstream
// gateway failures 502.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	var notFoundErr *service.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
		return
	}

	var preconditionErr *service.PreconditionError
	if errors.As(err, &preconditionErr) {
		c.JSON(http.StatusConflict, gin.H{"error": preconditionErr.Error()})
		return
	}

	var gatewayErr *service.GatewayError
	if errors.As(err, &gatewayErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": gatewayErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

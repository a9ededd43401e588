package transport

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anime-shed/qr-decoder-go/internal/config"
	"github.com/anime-shed/qr-decoder-go/internal/decoder"
	apperrors "github.com/anime-shed/qr-decoder-go/internal/errors"
	"github.com/anime-shed/qr-decoder-go/internal/logger"
	"github.com/anime-shed/qr-decoder-go/internal/observer"
	"github.com/anime-shed/qr-decoder-go/internal/service"
	"github.com/anime-shed/qr-decoder-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	version         = "1.0.0"
)

// Handler serves the QR decoding API
type Handler struct {
	svc     service.QRCodeService
	cfg     *config.Config
	metrics *observer.MetricsObserver
	pool    *decoder.WorkerPool
}

// NewHandler builds the router. metrics and pool may be nil; /stats then
// reports what is available.
func NewHandler(svc service.QRCodeService, cfg *config.Config, metrics *observer.MetricsObserver, pool *decoder.WorkerPool) http.Handler {
	h := &Handler{svc: svc, cfg: cfg, metrics: metrics, pool: pool}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
	)

	r.GET("/", index)
	r.GET("/health", healthCheck)
	r.GET("/stats", h.stats)
	r.GET("/process-qrcode/", h.processQuery)
	r.POST("/process-qrcode/", h.processBody)

	return r
}

func index(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: "hello world"})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) stats(c *gin.Context) {
	body := gin.H{}
	if h.metrics != nil {
		body["pipeline"] = h.metrics.Snapshot()
	}
	if h.pool != nil {
		body["decode_pool"] = h.pool.Stats()
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) processQuery(c *gin.Context) {
	var req models.QueryDecodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	result, err := h.run(c, models.DecodeRequest{ImageURL: req.ImageURL})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Found() {
		text := result.FirstText()
		c.JSON(http.StatusOK, models.QueryDecodeResponse{Success: true, DecodedText: &text})
		return
	}

	if h.cfg.QueryNotFoundPolicy == config.NotFoundStatus {
		respondNotFound(c)
		return
	}
	c.JSON(http.StatusOK, models.QueryDecodeResponse{Success: false, Message: models.NoQRCodeMessage})
}

func (h *Handler) processBody(c *gin.Context) {
	var req models.BodyDecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	result, err := h.run(c, models.DecodeRequest{
		ImageURL:     req.ImageURL,
		ExpectedText: req.ExpectedText,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Found() {
		text := result.FirstText()
		resp := models.BodyDecodeResponse{QRText: &text}
		if cmp := result.Comparison; cmp != nil {
			resp.MatchScore = &cmp.MatchScore
			resp.Matched = &cmp.Matched
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	if h.cfg.BodyNotFoundPolicy == config.NotFoundFlag {
		success := false
		c.JSON(http.StatusOK, models.BodyDecodeResponse{Success: &success, Message: models.NoQRCodeMessage})
		return
	}
	respondNotFound(c)
}

func (h *Handler) run(c *gin.Context, req models.DecodeRequest) (*models.DecodeResult, error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	req.RequestID = c.GetString(requestIDKey)
	return h.svc.Process(ctx, req)
}

// bindError classifies a binding failure as a client error.
func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeValidation,
			Message:    "Request body too large",
			StatusCode: http.StatusRequestEntityTooLarge,
			Cause:      err,
		}
	}
	return apperrors.NewValidationError("Invalid request", err)
}

// Middleware and helper functions
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id":  c.GetString(requestIDKey),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func respondNotFound(c *gin.Context) {
	respondError(c, apperrors.NewNotFoundError(models.NoQRCodeMessage, nil))
}

func respondError(c *gin.Context, err error) {
	code := apperrors.GetStatusCode(err)

	detail := "Internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = appErr.Detail()
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"request_id":  c.GetString(requestIDKey),
		"status_code": code,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{Detail: detail})
}

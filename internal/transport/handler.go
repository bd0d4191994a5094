package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anime-shed/image-ocr-go/internal/config"
	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/internal/logger"
	"github.com/anime-shed/image-ocr-go/internal/service"
	"github.com/anime-shed/image-ocr-go/internal/textmetrics"
	"github.com/anime-shed/image-ocr-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	serviceVersion = "1.0.0"
	usageText      = "To read an image, submit POST to /api/image-to-text with a JSON body containing image URL"
)

// NewHandler builds the HTTP router over the OCR service. engineVersion is
// reported by /health.
func NewHandler(svc service.OCRService, cfg *config.Config, engineVersion string) http.Handler {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		requestLogger(),
		cors(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/", usage)
	r.GET("/health", healthCheck(engineVersion))

	extract := extractText(svc)
	r.POST("/ocr", extract)
	r.Group("/api").POST("/image-to-text", extract)

	return r
}

func extractText(svc service.OCRService) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		var req models.HTTPOCRRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"url": req.URL,
			"ip":  c.ClientIP(),
		}).Info("Processing OCR request")

		text, err := svc.ExtractText(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, determineStatusCode(err), "failed to extract text", err)
			return
		}

		resp := models.OCRResponse{Contents: text}
		if req.ExpectedText != "" {
			match := textmetrics.Compare(req.ExpectedText, text)
			resp.Match = &match
		}

		logger.WithFields(logrus.Fields{
			"url":                req.URL,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
			"text_length":        len(text),
		}).Info("OCR request completed successfully")

		c.JSON(http.StatusOK, resp)
	}
}

func usage(c *gin.Context) {
	c.String(http.StatusOK, usageText)
}

func healthCheck(engineVersion string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "available",
			"version": serviceVersion,
			"engine":  engineVersion,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"user_agent":  c.Request.UserAgent(),
		}).Debug("Request handled")
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, GET, PATCH, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}

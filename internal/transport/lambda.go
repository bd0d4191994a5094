package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/internal/logger"
	"github.com/anime-shed/image-ocr-go/internal/service"
	"github.com/anime-shed/image-ocr-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// responseHeaders returns a new header map for every response.
func responseHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin": "*",
	}
}

// LambdaHandler adapts OCRService to the serverless invocation contract
type LambdaHandler struct {
	service          service.OCRService
	structuredErrors bool
}

// NewLambdaHandler builds the invocation handler. With structuredErrors
// false, failures are returned as errors and the platform reports a failed
// invocation; with it true they become status-coded responses.
func NewLambdaHandler(svc service.OCRService, structuredErrors bool) *LambdaHandler {
	return &LambdaHandler{service: svc, structuredErrors: structuredErrors}
}

func (h *LambdaHandler) Handle(ctx context.Context, event models.LambdaEvent) (models.LambdaResponse, error) {
	req, err := parseEventBody(event.Body)
	if err != nil {
		return h.fail(err)
	}

	logger.WithField("url", req.URL).Info("Processing OCR invocation")

	text, err := h.service.ExtractText(ctx, req.URL)
	if err != nil {
		return h.fail(err)
	}

	return models.LambdaResponse{
		StatusCode: http.StatusOK,
		Headers:    responseHeaders(),
		Body:       text,
	}, nil
}

func (h *LambdaHandler) fail(err error) (models.LambdaResponse, error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.NewInternalError("OCR invocation failed", err)
	}
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": appErr.StatusCode,
		"error_type":  appErr.Type,
		"structured":  h.structuredErrors,
	}).Error("OCR invocation failed")

	if !h.structuredErrors {
		return models.LambdaResponse{}, err
	}
	return models.LambdaResponse{
		StatusCode: appErr.StatusCode,
		Headers:    responseHeaders(),
		Body:       appErr.Error(),
	}, nil
}

// parseEventBody accepts {"url": ...} directly or as a JSON-encoded string,
// which is how API Gateway proxy events carry it.
func parseEventBody(body json.RawMessage) (models.OCRRequest, error) {
	var req models.OCRRequest

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return req, apperrors.NewValidationError("invalid request, you are missing the parameter body", nil)
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return req, apperrors.NewValidationError("invalid request body", err)
		}
		body = []byte(inner)
	}

	if err := json.Unmarshal(body, &req); err != nil {
		return req, apperrors.NewValidationError("invalid request body", err)
	}
	if req.URL == "" {
		return req, apperrors.NewValidationError("invalid request, missing url", nil)
	}
	return req, nil
}

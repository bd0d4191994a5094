package models

import "encoding/json"

// OCRRequest is the JSON body accepted by both the Lambda and HTTP surfaces
type OCRRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// HTTPOCRRequest extends OCRRequest with optional expected text for scoring
type HTTPOCRRequest struct {
	URL          string `json:"url" binding:"required,url"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// OCRResponse is returned by the HTTP surface
type OCRResponse struct {
	Contents string     `json:"contents"`
	Match    *TextMatch `json:"match,omitempty"`
}

// TextMatch compares recognized text against what the caller expected
type TextMatch struct {
	ExpectedText string  `json:"expected_text"`
	ExactMatch   bool    `json:"exact_match"`
	MatchScore   float64 `json:"match_score"`
	CER          float64 `json:"character_error_rate"`
	WER          float64 `json:"word_error_rate"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// LambdaEvent is the platform event. Body holds either a JSON object or a
// JSON string wrapping one, depending on how the function was invoked.
type LambdaEvent struct {
	Body json.RawMessage `json:"body"`
}

// LambdaResponse is the status-coded result handed back to the platform
type LambdaResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

package recognizer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/anime-shed/image-ocr-go/internal/errors"
	"github.com/anime-shed/image-ocr-go/pkg/models"

	"github.com/sashabaranov/go-openai"
)

// VisionPrompt accompanies every image sent to the vision model.
const VisionPrompt = "What is the text in this image? Reply with the text only."

const defaultVisionMaxTokens = 300

// ErrNoChoices is the cause of a recognition error for an empty completion
var ErrNoChoices = errors.New("vision model returned no choices")

// VisionOptions configure the OpenAI chat completion backend.
type VisionOptions struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Trim      bool

	// HTTPClient overrides the client used for API calls, e.g. in tests.
	HTTPClient *http.Client
}

// VisionRecognizer asks a vision-capable chat model to transcribe the image.
type VisionRecognizer struct {
	client *openai.Client
	opts   VisionOptions
}

func NewVisionRecognizer(opts VisionOptions) (*VisionRecognizer, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("an API key is required for the openai engine")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("a model name is required for the openai engine")
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultVisionMaxTokens
	}

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}
	if opts.HTTPClient != nil {
		clientConfig.HTTPClient = opts.HTTPClient
	}

	return &VisionRecognizer{
		client: openai.NewClientWithConfig(clientConfig),
		opts:   opts,
	}, nil
}

// Model returns the configured model name
func (r *VisionRecognizer) Model() string {
	return r.opts.Model
}

func (r *VisionRecognizer) Engine() string {
	return "openai " + r.opts.Model
}

// Recognize sends the decoded pixels as a PNG data URL together with
// VisionPrompt and returns the first choice. Whitespace-only answers become "".
func (r *VisionRecognizer) Recognize(ctx context.Context, img *models.DecodedImage) (string, error) {
	if img == nil || img.Image == nil {
		return "", apperrors.NewRecognitionError("failed to recognize text", ErrNoImage)
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", apperrors.NewRecognitionError("failed to prepare image for OCR", err)
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     r.opts.Model,
		MaxTokens: r.opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: VisionPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", apperrors.NewRecognitionError("vision model request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewRecognitionError("failed to recognize text", ErrNoChoices)
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if r.opts.Trim {
		text = strings.TrimSpace(text)
	}
	return text, nil
}

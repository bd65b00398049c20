package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BerylCAtieno/docvault-api/internal/media"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

const providerOpenRouter = "openrouter"

type openRouterModel struct {
	baseURL string
	apiKey  string
	model   string
	logger  *utils.Logger
	client  *http.Client
}

type OpenRouterRequest struct {
	Model    string           `json:"model"`
	Messages []RequestMessage `json:"messages"`
}

type RequestMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
	File     *FilePart `json:"file,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type FilePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenRouterResponse struct {
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

func NewOpenRouterModel(baseURL, apiKey, model string, timeout time.Duration, logger *utils.Logger) Model {
	return &openRouterModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (a *openRouterModel) Name() string {
	return providerOpenRouter + "/" + a.model
}

func (a *openRouterModel) Generate(ctx context.Context, instruction, mimeType string, data []byte) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	attachment := ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: dataURI}}
	if mimeType == media.MIMEPDF {
		attachment = ContentPart{Type: "file", File: &FilePart{Filename: "document.pdf", FileData: dataURI}}
	}

	reqBody := OpenRouterRequest{
		Model: a.model,
		Messages: []RequestMessage{
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: instruction},
					attachment,
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &TransportError{Provider: providerOpenRouter, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Provider: providerOpenRouter, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		a.logger.Error("OpenRouter API error", "status", resp.StatusCode, "body", truncate(string(body), 512))
		return "", &TransportError{
			Provider:   providerOpenRouter,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var openRouterResp OpenRouterResponse
	if err := json.Unmarshal(body, &openRouterResp); err != nil {
		return "", &ParseError{Raw: string(body), Err: err}
	}

	// OpenRouter can report upstream failures inside a 200 body.
	if openRouterResp.Error != nil {
		return "", &TransportError{
			Provider:   providerOpenRouter,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        errors.New(openRouterResp.Error.Message),
		}
	}

	if len(openRouterResp.Choices) == 0 {
		return "", &ParseError{Raw: string(body), Err: errors.New("no choices in response")}
	}

	return openRouterResp.Choices[0].Message.Content, nil
}

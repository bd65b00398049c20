package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/BerylCAtieno/docvault-api/internal/config"
	"github.com/BerylCAtieno/docvault-api/internal/media"
	"github.com/BerylCAtieno/docvault-api/internal/models"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

// Instruction is sent verbatim with every image.
const Instruction = `Extract the document details and answer with a single JSON object:
{"vendor": string, "date": "YYYY-MM-DD", "amount": string, "type": "Invoice"|"Receipt"|"Contract"|"Other", "confidence": number}.
Read the values from the text in the document. "amount" is the total as a plain number without currency symbols or codes (for example "1251.74", not "1251.74 EUR"); use null when no amount is present. "confidence" is between 0 and 1.
Return ONLY the JSON object, no markdown and no explanations.`

// Model is one multimodal model endpoint.
type Model interface {
	Name() string
	Generate(ctx context.Context, instruction, mimeType string, data []byte) (string, error)
}

// BlobReader re-reads the stored upload.
type BlobReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Extractor turns a stored image into an ExtractionResult.
type Extractor interface {
	Extract(ctx context.Context, key string) (*models.ExtractionResult, error)
}

type Client struct {
	blobs  BlobReader
	model  Model
	logger *utils.Logger
}

func NewClient(blobs BlobReader, model Model, logger *utils.Logger) *Client {
	return &Client{
		blobs:  blobs,
		model:  model,
		logger: logger,
	}
}

// NewModel builds the provider selected in cfg.
func NewModel(cfg *config.Config, logger *utils.Logger) (Model, error) {
	switch cfg.ExtractionProvider {
	case config.ProviderGemini:
		return NewGeminiModel(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ExtractionTimeout, logger), nil
	case config.ProviderOpenRouter:
		return NewOpenRouterModel(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.ExtractionTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.ExtractionProvider)
	}
}

// Extract makes exactly one model call; retries are the caller's business.
func (c *Client) Extract(ctx context.Context, key string) (*models.ExtractionResult, error) {
	data, err := c.blobs.Get(ctx, key)
	if err != nil {
		return nil, &FetchError{Key: key, Err: err}
	}

	mimeType := media.HintFromKey(key)

	c.logger.Debug("Requesting extraction",
		"model", c.model.Name(),
		"storage_key", key,
		"mime_type", mimeType,
		"bytes", len(data))

	content, err := c.model.Generate(ctx, Instruction, mimeType, data)
	if err != nil {
		return nil, err
	}

	return ParseResult(content)
}

// ParseResult decodes the model's answer. Fields of the wrong JSON type are
// dropped rather than failing the whole answer.
func ParseResult(content string) (*models.ExtractionResult, error) {
	content = stripCodeFences(content)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, &ParseError{Raw: content, Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Raw: content, Err: errors.New("response is not a JSON object")}
	}

	result := &models.ExtractionResult{
		Vendor: scalarString(raw["vendor"]),
		Date:   scalarString(raw["date"]),
		Amount: scalarString(raw["amount"]),
	}
	if t := scalarString(raw["type"]); t != nil {
		result.Type = *t
	}
	if c := scalarString(raw["confidence"]); c != nil {
		if f, err := strconv.ParseFloat(*c, 64); err == nil {
			result.Confidence = f
		}
	}

	return result, nil
}

// scalarString returns a JSON string or number as text, nil otherwise.
// Numbers are written in plain decimal notation, so 1e3 becomes "1000".
func scalarString(msg json.RawMessage) *string {
	if len(msg) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return &s
	}

	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil
		}
		s = d.String()
		return &s
	}

	return nil
}

// stripCodeFences removes markdown code fences around the JSON payload.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)

	start := strings.Index(content, "```")
	if start < 0 {
		return content
	}

	rest := content[start+3:]
	// Drop the language tag, e.g. ```json
	rest = strings.TrimLeftFunc(rest, unicode.IsLetter)

	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}

	return strings.TrimSpace(rest)
}

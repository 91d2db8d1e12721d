package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

// Gemini exposes an OpenAI-compatible surface, so the stock client works
// against it with a swapped base URL.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

const classifyPrompt = "Clasifica category y sentiment del ticket. " +
	"Usa category en {Tecnico, Facturacion, Comercial} y sentiment en " +
	"{Positivo, Neutral, Negativo}. Si dudas: sentiment=Neutral."

var (
	categories = []string{"Tecnico", "Facturacion", "Comercial"}
	sentiments = []string{"Positivo", "Neutral", "Negativo"}
)

var analysisSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"category":  {Type: jsonschema.String, Enum: categories},
		"sentiment": {Type: jsonschema.String, Enum: sentiments},
	},
	Required:             []string{"category", "sentiment"},
	AdditionalProperties: false,
}

type GeminiClient struct {
	client        *openai.Client
	model         string
	fallbackModel string
	logger        *zap.Logger
}

func NewGeminiClient(apiKey, model, fallbackModel string, logger *zap.Logger) *GeminiClient {
	return NewGeminiClientWithBaseURL(apiKey, model, fallbackModel, defaultBaseURL, logger)
}

func NewGeminiClientWithBaseURL(apiKey, model, fallbackModel, baseURL string, logger *zap.Logger) *GeminiClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return &GeminiClient{
		client:        openai.NewClientWithConfig(cfg),
		model:         model,
		fallbackModel: fallbackModel,
		logger:        logger,
	}
}

// Classify runs the two-axis recovery policy: a parse failure gets one retry
// on the same model and never reaches the fallback; an unauthorized/not-found
// model gets one attempt on the fallback model; everything else fails
// immediately. At most two provider calls happen per invocation.
func (c *GeminiClient) Classify(ctx context.Context, description string) (Classification, error) {
	model := c.model

	result, err := c.invokeStructured(ctx, description, model)
	if err == nil {
		return result, nil
	}

	var perr *ParseError
	if errors.As(err, &perr) {
		c.logFailure(err, "structured_output_parse")
		result, err2 := c.invokeStructured(ctx, description, model)
		if err2 == nil {
			return result, nil
		}
		c.logFailure(err2, "structured_output_parse_retry")
		return Classification{}, c.normalize(err2)
	}

	c.logFailure(err, "llm_call")
	if isModelError(err) && model != c.fallbackModel {
		result, err2 := c.invokeStructured(ctx, description, c.fallbackModel)
		if err2 == nil {
			return result, nil
		}
		c.logFailure(err2, "llm_call_fallback")
		return Classification{}, c.normalize(err2)
	}
	return Classification{}, c.normalize(err)
}

// Ping probes the provider with a plain prompt, nothing persisted. Same
// fallback rule as Classify for model errors.
func (c *GeminiClient) Ping(ctx context.Context) error {
	err := c.invokePlain(ctx, c.model)
	if err == nil {
		return nil
	}

	c.logFailure(err, "ping")
	if isModelError(err) && c.model != c.fallbackModel {
		if err2 := c.invokePlain(ctx, c.fallbackModel); err2 != nil {
			c.logFailure(err2, "ping_fallback")
			return c.normalize(err2)
		}
		return nil
	}
	return c.normalize(err)
}

func (c *GeminiClient) invokeStructured(ctx context.Context, description, model string) (Classification, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
			{Role: openai.ChatMessageRoleUser, Content: description},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "ticket_analysis",
				Schema: analysisSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return Classification{}, err
	}
	if len(resp.Choices) == 0 {
		return Classification{}, &ParseError{Reason: "empty choices"}
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)

	var out Classification
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Classification{}, &ParseError{Reason: err.Error(), Raw: raw}
	}
	if !contains(categories, out.Category) || !contains(sentiments, out.Sentiment) {
		return Classification{}, &ParseError{Reason: "value outside schema", Raw: raw}
	}
	return out, nil
}

func (c *GeminiClient) invokePlain(ctx context.Context, model string) error {
	_, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
	})
	return err
}

func (c *GeminiClient) normalize(err error) *LLMError {
	status, code, requestID := extractErrorFields(err)
	return &LLMError{
		ExcClass:   errorClass(err),
		Message:    truncate(err.Error()),
		StatusCode: status,
		ErrorCode:  code,
		RequestID:  requestID,
	}
}

// logFailure records full forensic detail before the error is flattened into
// the normalized form the caller sees.
func (c *GeminiClient) logFailure(err error, callContext string) {
	status, code, requestID := extractErrorFields(err)
	c.logger.Error("LLM call failed",
		zap.String("context", callContext),
		zap.String("class", errorClass(err)),
		zap.String("message", truncate(err.Error())),
		zap.Int("status_code", status),
		zap.String("error_code", code),
		zap.String("request_id", requestID),
	)
}

// isModelError reports whether the failure points at an unauthorized or
// unknown model, the only case worth a fallback-model attempt.
func isModelError(err error) bool {
	msg := strings.ToLower(err.Error())
	_, code, _ := extractErrorFields(err)
	code = strings.ToLower(code)

	return strings.Contains(msg, "model_not_found") ||
		strings.Contains(msg, "model not found") ||
		strings.Contains(msg, "not authorized") ||
		strings.Contains(msg, "not_authorized") ||
		strings.Contains(code, "model_not_found")
}

// extractErrorFields pulls whatever diagnostics the client error happens to
// carry. Every field is optional; missing ones stay zero.
func extractErrorFields(err error) (status int, code string, requestID string) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatusCode
		if apiErr.Code != nil {
			code = fmt.Sprintf("%v", apiErr.Code)
		}
		return status, code, requestID
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		status = reqErr.HTTPStatusCode
	}
	return status, code, requestID
}

// errorClass names the concrete error type, pointer and package stripped.
func errorClass(err error) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

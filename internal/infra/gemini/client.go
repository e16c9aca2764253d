// Package gemini generates sales insights with Google Gemini through its
// OpenAI-compatible chat completions endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/resilience"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const serviceName = "gemini"

var tracer = otel.Tracer("gemini")

// Client implements port.InsightGenerator.
type Client struct {
	api   *openai.Client
	model string
	keyed bool
	cb    *gobreaker.CircuitBreaker
	cfg   resilience.Config
}

// NewClient creates a Gemini client. An empty apiKey yields a client whose
// Generate always returns domain.ErrMissingCredentials.
func NewClient(httpClient *http.Client, apiKey, baseURL, model string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	oc := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		oc.BaseURL = baseURL
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: model,
		keyed: apiKey != "",
		cb:    cb,
		cfg:   cfg,
	}
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool { return c.keyed }

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// Generate asks the model for a summary, trend and recommendation over the
// request's transactions.
func (c *Client) Generate(ctx context.Context, req *domain.InsightRequest) (*domain.InsightResponse, error) {
	ctx, span := tracer.Start(ctx, "Client.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("insight.window", string(req.Window)),
		attribute.Int("insight.transactions", len(req.Transactions)),
	)

	if !c.keyed {
		return nil, domain.ErrMissingCredentials
	}

	prompt, err := buildPrompt(req.Transactions)
	if err != nil {
		return nil, err
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "sales_insight",
				Schema: insightSchema,
			},
		},
	}

	result, err := c.cb.Execute(func() (any, error) {
		var out *domain.InsightResponse
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			resp, err := c.api.CreateChatCompletion(ctx, chatReq)
			if err != nil {
				return classify(err)
			}
			if len(resp.Choices) == 0 {
				return resilience.Permanent(errors.New("no choices in response"))
			}
			insight, err := parseInsight(resp.Choices[0].Message.Content)
			if err != nil {
				return resilience.Permanent(err)
			}

			model := resp.Model
			if model == "" {
				model = c.model
			}
			out = &domain.InsightResponse{
				Insight: insight,
				Model:   model,
				TokensUsed: domain.TokenUsage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return out, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, wrapError(ctx, err)
	}

	resp := result.(*domain.InsightResponse)
	span.SetAttributes(attribute.Int("llm.tokens.total", resp.TokensUsed.TotalTokens))
	return resp, nil
}

// classify marks client-side HTTP failures as permanent. Rate limits and
// server errors stay retryable.
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status >= 400 && status < 500 && status != http.StatusTooManyRequests && status != http.StatusRequestTimeout {
		return resilience.Permanent(err)
	}
	return err
}

func wrapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: serviceName}
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: fmt.Sprintf("%s.generate", serviceName)}
	default:
		return &domain.ErrExternalService{Service: serviceName, Err: err}
	}
}

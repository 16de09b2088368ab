package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// ErrUnavailable matches every failure returned by Client.Complete.
var ErrUnavailable = errors.New("advisory service unavailable")

type Reason string

const (
	ReasonMissingKey Reason = "missing_key"
	ReasonTransport  Reason = "transport"
	ReasonStatus     Reason = "status"
	ReasonEnvelope   Reason = "envelope"
	ReasonEmpty      Reason = "empty"
)

// Failure describes why a completion produced no text. Callers treat all
// reasons the same; the reason only feeds logs and metrics.
type Failure struct {
	Reason Reason
	Status int
	Err    error
}

func (f *Failure) Error() string {
	msg := "advisory " + string(f.Reason)
	if f.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", f.Status)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

func (f *Failure) Is(target error) bool { return target == ErrUnavailable }

// ReasonOf returns the failure reason of err, or "" if err is not a Failure.
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}

// Prompt is the two-message exchange sent to the model.
type Prompt struct {
	System string
	User   string
}

// Completer is anything that can turn a prompt into raw model text.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	Tracer      trace.Tracer
}

// Client calls an OpenAI-compatible chat/completions endpoint. One round
// trip per call, no retry.
type Client struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int

	http   *http.Client
	tracer trace.Tracer
}

func New(opts Options) *Client {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("ai")
	}
	return &Client{
		APIKey:      opts.APIKey,
		Model:       opts.Model,
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		http:        &http.Client{Timeout: opts.Timeout},
		tracer:      tracer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ai.complete",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("llm.model", c.Model)),
	)
	defer span.End()

	text, err := c.complete(ctx, p)
	if err != nil {
		span.SetStatus(codes.Error, string(ReasonOf(err)))
		return "", err
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, p Prompt) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", &Failure{Reason: ReasonMissingKey}
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
	})
	if err != nil {
		return "", &Failure{Reason: ReasonTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &Failure{Reason: ReasonTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &Failure{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Failure{Reason: ReasonTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Failure{Reason: ReasonStatus, Status: resp.StatusCode}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &Failure{Reason: ReasonEnvelope, Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &Failure{Reason: ReasonEmpty}
	}

	return parsed.Choices[0].Message.Content, nil
}

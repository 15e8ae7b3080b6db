package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// Responder is the subset of the OpenAI Responses API used by the pipeline.
type Responder interface {
	New(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error)
}

// ClientResponder adapts an *openai.Client to Responder.
type ClientResponder struct {
	Client *openai.Client
}

func (c ClientResponder) New(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	if c.Client == nil {
		return nil, errors.New("ClientResponder: client is nil")
	}
	return c.Client.Responses.New(ctx, params)
}

// RetryPolicy sets the waits between attempts; its length plus one is the attempt budget.
type RetryPolicy struct {
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

// DefaultRetryPolicy waits past the per-minute rate-limit window on 429 and backs off
// quickly on 5xx.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		RateLimitWaits:   []time.Duration{65 * time.Second, 100 * time.Second},
		ServerErrorWaits: []time.Duration{5 * time.Second, 30 * time.Second},
	}
}

// CallWithRetry issues a Responses request, retrying rate-limit and server errors per policy.
func CallWithRetry(ctx context.Context, r Responder, params responses.ResponseNewParams, policy RetryPolicy) (*responses.Response, error) {
	var rateAttempt, serverAttempt int
	for {
		resp, err := r.New(ctx, params)
		if err == nil {
			return resp, nil
		}

		var wait time.Duration
		switch status := statusCode(err); {
		case status == http.StatusTooManyRequests && rateAttempt < len(policy.RateLimitWaits):
			wait = policy.RateLimitWaits[rateAttempt]
			rateAttempt++
		case status >= 500 && serverAttempt < len(policy.ServerErrorWaits):
			wait = policy.ServerErrorWaits[serverAttempt]
			serverAttempt++
		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GenerateSchema reflects T into a strict JSON schema accepted by structured outputs:
// every object closes additionalProperties and lists all of its properties as required.
func GenerateSchema[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("GenerateSchema: marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("GenerateSchema: unmarshal: %w", err)
	}
	makeStrict(m)
	return m, nil
}

// MustSchema is GenerateSchema for package-level schema variables.
func MustSchema[T any]() map[string]any {
	m, err := GenerateSchema[T]()
	if err != nil {
		panic(err)
	}
	return m
}

func makeStrict(schema map[string]any) {
	props, _ := schema["properties"].(map[string]any)
	if t, _ := schema["type"].(string); t == "object" {
		schema["additionalProperties"] = false
		if len(props) > 0 {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			schema["required"] = required
		}
	}
	for _, p := range props {
		if pm, ok := p.(map[string]any); ok {
			makeStrict(pm)
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		makeStrict(items)
	}
}

// JSONSchemaFormat builds the text format parameter for a strict structured output.
func JSONSchemaFormat(name, description string, schema map[string]any) responses.ResponseTextConfigParam {
	return responses.ResponseTextConfigParam{
		Format: responses.ResponseFormatTextConfigUnionParam{
			OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
				Name:        name,
				Schema:      schema,
				Strict:      openai.Bool(true),
				Description: openai.String(description),
				Type:        "json_schema",
			},
		},
	}
}

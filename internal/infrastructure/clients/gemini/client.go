package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kaayakalpa/healthfinder/pkg/config"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"

	// MaxConditions caps the number of conditions returned per query
	MaxConditions = 15
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Client extracts candidate conditions from symptom text with the Gemini
// generateContent API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Gemini client.
func NewClient(cfg *config.GeminiConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"topP"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type conditionsPayload struct {
	NormalizedQuery string        `json:"normalized_query"`
	Conditions      []interface{} `json:"conditions"`
}

// ExtractConditions returns up to MaxConditions likely condition names for query.
func (c *Client) ExtractConditions(ctx context.Context, query string) ([]string, error) {
	payload := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: buildConditionPrompt(query)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:      0.2,
			TopP:             0.9,
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordGeminiMetric(ctx, c.model, 0, time.Since(start), err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("gemini request failed with status %d", resp.StatusCode)
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, err
	}

	var text string
	if len(envelope.Candidates) > 0 && len(envelope.Candidates[0].Content.Parts) > 0 {
		text = envelope.Candidates[0].Content.Parts[0].Text
	}

	parsed, err := parseConditionsPayload(text)
	if err != nil {
		recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	recordGeminiMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return cleanConditions(parsed.Conditions), nil
}

// parseConditionsPayload accepts the model text as JSON, or failing that, the
// outermost {...} span within it.
func parseConditionsPayload(text string) (*conditionsPayload, error) {
	var parsed conditionsPayload
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		match := jsonObjectPattern.FindString(text)
		if match == "" {
			return nil, errors.New("no json object in response")
		}
		parsed = conditionsPayload{}
		if err := json.Unmarshal([]byte(match), &parsed); err != nil {
			return nil, err
		}
	}
	if parsed.Conditions == nil {
		return nil, errors.New("response missing conditions")
	}
	return &parsed, nil
}

func cleanConditions(items []interface{}) []string {
	conditions := make([]string, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(conditionString(item))
		if name == "" {
			continue
		}
		conditions = append(conditions, name)
		if len(conditions) == MaxConditions {
			break
		}
	}
	return conditions
}

func conditionString(item interface{}) string {
	switch v := item.(type) {
	case string:
		return v
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

type geminiMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

var (
	geminiMetricsOnce sync.Once
	geminiMetricsInit bool
	geminiMetricSet   geminiMetrics
)

func ensureGeminiMetrics() {
	geminiMetricsOnce.Do(func() {
		meter := otel.Meter("github.com/kaayakalpa/healthfinder/gemini")

		requestCount, err := meter.Int64Counter(
			"ai.gemini.request.count",
			metric.WithDescription("Number of Gemini requests"),
		)
		if err != nil {
			return
		}
		requestDuration, err := meter.Float64Histogram(
			"ai.gemini.request.duration",
			metric.WithDescription("Gemini request duration in milliseconds"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			return
		}
		requestErrors, err := meter.Int64Counter(
			"ai.gemini.request.errors",
			metric.WithDescription("Number of Gemini request errors"),
		)
		if err != nil {
			return
		}

		geminiMetricSet = geminiMetrics{
			requestCount:    requestCount,
			requestDuration: requestDuration,
			requestErrors:   requestErrors,
		}
		geminiMetricsInit = true
	})
}

func recordGeminiMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureGeminiMetrics()
	if !geminiMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	geminiMetricSet.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	geminiMetricSet.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		geminiMetricSet.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// Package oracle talks to the language model gateway that extracts food
// items, estimates nutrition and parses explicitly stated numbers.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"ai-calories/internal/models"
)

// ErrUnusable is returned when the model answered with something that is
// not the JSON object that was asked for.
var ErrUnusable = errors.New("unusable model response")

const (
	msgNotUnderstood = "I'm sorry, I had trouble understanding that. Could you rephrase?"
	defaultProxyURL  = "http://mcp-compose-http-proxy:9876"
	defaultModel     = "anthropic/claude-3.5-sonnet"
)

// Config holds gateway settings.
type Config struct {
	ProxyURL string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// ConfigFromEnv reads MCP_PROXY_URL, MCP_PROXY_API_KEY and OPENROUTER_MODEL.
func ConfigFromEnv() Config {
	cfg := Config{
		ProxyURL: os.Getenv("MCP_PROXY_URL"),
		APIKey:   os.Getenv("MCP_PROXY_API_KEY"),
		Model:    os.Getenv("OPENROUTER_MODEL"),
	}
	if cfg.ProxyURL == "" {
		cfg.ProxyURL = defaultProxyURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return cfg
}

type SamplingClient struct {
	httpClient *http.Client
	proxyURL   string
	apiKey     string
	model      string
}

func NewSamplingClient(cfg Config) *SamplingClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &SamplingClient{
		httpClient: &http.Client{Timeout: timeout},
		proxyURL:   strings.TrimRight(cfg.ProxyURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

// ExtractItems asks the model which foods text mentions. Output that is not
// valid JSON is turned into a clarification instead of an error.
func (s *SamplingClient) ExtractItems(ctx context.Context, text string) (*models.Extraction, error) {
	content, err := s.complete(ctx, extractItemsPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract items: %w", err)
	}
	log.Printf("AI: extraction response: %s", content)

	var ex models.Extraction
	if err := decodeObject(content, &ex); err != nil {
		log.Printf("AI: invalid extraction JSON: %v", err)
		return &models.Extraction{Clarification: msgNotUnderstood}, nil
	}
	return &ex, nil
}

type estimateResponse struct {
	Name     string          `json:"name"`
	Calories models.Quantity `json:"calories"`
	Protein  models.Quantity `json:"protein"`
	Fat      models.Quantity `json:"fat"`
	Carbs    models.Quantity `json:"carbs"`
}

// Estimate returns a best-guess record for foodName. Textual numbers such
// as "35 kcal" are cleaned; missing ones become 0.
func (s *SamplingClient) Estimate(ctx context.Context, foodName string) (*models.NutritionRecord, error) {
	log.Printf("AI: estimating nutrition for %q", foodName)
	content, err := s.complete(ctx, estimatePrompt, foodName)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate %q: %w", foodName, err)
	}

	var resp estimateResponse
	if err := decodeObject(content, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusable, err)
	}

	name := resp.Name
	if strings.TrimSpace(name) == "" {
		name = foodName
	}
	return &models.NutritionRecord{
		Name:     models.NormalizeName(name),
		Calories: resp.Calories.Float(),
		Protein:  resp.Protein.Float(),
		Fat:      resp.Fat.Float(),
		Carbs:    resp.Carbs.Float(),
		Source:   models.SourceEstimated,
	}, nil
}

type overrideResponse struct {
	Name            string           `json:"name"`
	Calories        *models.Quantity `json:"calories"`
	Protein         *models.Quantity `json:"protein"`
	Fat             *models.Quantity `json:"fat"`
	Carbs           *models.Quantity `json:"carbs"`
	PerUnitCalories *models.Quantity `json:"per_unit_calories"`
	PerUnitSize     *models.Quantity `json:"per_unit_size"`
	TotalSize       *models.Quantity `json:"total_size"`
}

// ExtractOverride parses explicitly stated nutrition out of text. Fields the
// model reports as null stay nil.
func (s *SamplingClient) ExtractOverride(ctx context.Context, text string) (*models.OverrideInput, error) {
	content, err := s.complete(ctx, overridePrompt, text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse override: %w", err)
	}
	log.Printf("AI: override response: %s", content)

	var resp overrideResponse
	if err := decodeObject(content, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnusable, err)
	}
	return &models.OverrideInput{
		Name:            strings.TrimSpace(resp.Name),
		Calories:        quantityPtr(resp.Calories),
		Protein:         quantityPtr(resp.Protein),
		Fat:             quantityPtr(resp.Fat),
		Carbs:           quantityPtr(resp.Carbs),
		PerUnitCalories: quantityPtr(resp.PerUnitCalories),
		PerUnitSize:     quantityPtr(resp.PerUnitSize),
		TotalSize:       quantityPtr(resp.TotalSize),
	}, nil
}

// Translate renders text in English.
func (s *SamplingClient) Translate(ctx context.Context, text string) (string, error) {
	content, err := s.complete(ctx, translatePrompt, text)
	if err != nil {
		return "", fmt.Errorf("failed to translate %q: %w", text, err)
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := decodeObject(content, &resp); err != nil || strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("%w: no translation for %q", ErrUnusable, text)
	}
	return strings.TrimSpace(resp.Text), nil
}

func quantityPtr(q *models.Quantity) *float64 {
	if q == nil {
		return nil
	}
	v := q.Float()
	return &v
}

// complete sends one system/user exchange to the gateway and returns the
// model's text.
func (s *SamplingClient) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	completionRequest := map[string]interface{}{
		"model":         s.model,
		"system_prompt": systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": userPrompt,
			},
		},
		"max_tokens":  1000,
		"temperature": 0.1,
	}

	text, err := s.callGateway(ctx, "create_completion", completionRequest)
	if err != nil {
		return "", err
	}
	return completionContent(text), nil
}

type gatewayResponse struct {
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *SamplingClient) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", s.proxyURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("request failed with status %d and couldn't read body: %v", resp.StatusCode, err)
		}
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if gw.Error != nil {
		return "", fmt.Errorf("gateway error %d: %s", gw.Error.Code, gw.Error.Message)
	}
	if gw.Result == nil || len(gw.Result.Content) == 0 {
		return "", fmt.Errorf("unexpected response format")
	}
	return gw.Result.Content[0].Text, nil
}

// completionContent unwraps the gateway's {"content": "..."} envelope when
// present.
func completionContent(text string) string {
	var envelope struct {
		Content *string `json:"content"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && envelope.Content != nil {
		return *envelope.Content
	}
	return text
}

// decodeObject decodes the JSON object embedded in content, ignoring any
// prose the model put around it.
func decodeObject(content string, dst interface{}) error {
	start := strings.Index(content, "{")
	if start == -1 {
		return errors.New("no JSON object in response")
	}
	end := strings.LastIndex(content, "}")
	if end == -1 || end <= start {
		return errors.New("unterminated JSON object in response")
	}
	return json.Unmarshal([]byte(content[start:end+1]), dst)
}

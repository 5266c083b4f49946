// Package openfoodfacts looks up packaged foods in the Open Food Facts
// product database.
package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"ai-calories/internal/models"
)

// ErrStatus is returned when the API answers with a non-200 status.
var ErrStatus = errors.New("unexpected open food facts status")

const (
	DefaultBaseURL   = "https://world.openfoodfacts.org"
	DefaultUserAgent = "AI_Calorie_Tracker/1.0"
)

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// ConfigFromEnv reads OFF_BASE_URL and OFF_USER_AGENT.
func ConfigFromEnv() Config {
	cfg := Config{
		BaseURL:   os.Getenv("OFF_BASE_URL"),
		UserAgent: os.Getenv("OFF_USER_AGENT"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  ua,
	}
}

type searchResponse struct {
	Count    int       `json:"count"`
	Products []product `json:"products"`
}

type product struct {
	ProductName string     `json:"product_name"`
	Nutriments  nutriments `json:"nutriments"`
}

// Values are per serving when the product states them, per 100g otherwise.
type nutriments struct {
	EnergyKcal        models.Quantity `json:"energy-kcal_value"`
	EnergyKcal100g    models.Quantity `json:"energy-kcal_100g"`
	Proteins          models.Quantity `json:"proteins_value"`
	Proteins100g      models.Quantity `json:"proteins_100g"`
	Fat               models.Quantity `json:"fat_value"`
	Fat100g           models.Quantity `json:"fat_100g"`
	Carbohydrates     models.Quantity `json:"carbohydrates_value"`
	Carbohydrates100g models.Quantity `json:"carbohydrates_100g"`
}

// Search returns the first product matching query. A nil record means no
// product was found or it carries no calorie value.
func (c *Client) Search(ctx context.Context, query string) (*models.NutritionRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	log.Printf("OFF: searching for %q", query)

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", "1")
	endpoint := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if sr.Count == 0 || len(sr.Products) == 0 {
		return nil, nil
	}

	p := sr.Products[0]
	n := p.Nutriments
	calories := firstPositive(n.EnergyKcal, n.EnergyKcal100g)
	if calories == 0 {
		return nil, nil
	}

	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = query
	}
	return &models.NutritionRecord{
		Name:     name,
		Calories: calories,
		Protein:  firstPositive(n.Proteins, n.Proteins100g),
		Fat:      firstPositive(n.Fat, n.Fat100g),
		Carbs:    firstPositive(n.Carbohydrates, n.Carbohydrates100g),
		Source:   models.SourceExternal,
	}, nil
}

func firstPositive(vals ...models.Quantity) float64 {
	for _, v := range vals {
		if v.Float() > 0 {
			return v.Float()
		}
	}
	return 0
}

// Package barcode looks products up in the OpenFoodFacts public database.
// Unlike the AI gateway it classifies locally from database tags, so a match
// always carries full confidence.
package barcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/halalsnap/halalsnap/internal/verdict"
)

// ErrNotFound means the barcode is not in the database. Callers fall back to
// another capture mode instead of guessing a verdict.
var ErrNotFound = errors.New("barcode: product not found")

// Config holds barcode lookup configuration from environment variables.
type Config struct {
	BaseURL string
}

// Client queries the OpenFoodFacts product API.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a barcode client. An empty BaseURL uses the public
// OpenFoodFacts endpoint.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://world.openfoodfacts.org/api/v0/product/"
	}
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

type apiResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     string   `json:"product_name"`
		LabelsTags      []string `json:"labels_tags"`
		IngredientsText string   `json:"ingredients_text"`
		Countries       string   `json:"countries"`
	} `json:"product"`
}

// Lookup fetches the product for the given barcode and classifies it from
// database labels and ingredient text.
func (c *Client) Lookup(ctx context.Context, code string) (verdict.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+code+".json", nil)
	if err != nil {
		return verdict.Record{}, fmt.Errorf("build barcode request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return verdict.Record{}, fmt.Errorf("barcode API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return verdict.Record{}, fmt.Errorf("barcode API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return verdict.Record{}, fmt.Errorf("decode barcode response: %w", err)
	}
	if apiResp.Status != 1 {
		return verdict.Record{}, ErrNotFound
	}

	return classify(apiResp), nil
}

func classify(apiResp apiResponse) verdict.Record {
	product := apiResp.Product
	labels := strings.ToLower(strings.Join(product.LabelsTags, " "))
	ingredients := strings.ToLower(product.IngredientsText)

	status := verdict.StatusQuestionable
	switch {
	case strings.Contains(labels, "halal"):
		status = verdict.StatusCompliant
	case strings.Contains(labels, "haram"),
		strings.Contains(labels, "pork"),
		strings.Contains(labels, "alcohol"):
		status = verdict.StatusNonCompliant
	case strings.Contains(ingredients, "pork"),
		strings.Contains(ingredients, "lard"),
		strings.Contains(ingredients, "wine"),
		strings.Contains(ingredients, "alcohol"):
		status = verdict.StatusNonCompliant
	}

	rec := verdict.Record{
		ProductName:     product.ProductName,
		Status:          status,
		ConfidenceScore: 100,
		ScholarNote:     "Data sourced from OpenFoodFacts public database.",
		Ingredients:     []string{},
		Alternatives:    []string{},
		Origin:          product.Countries,
	}
	if rec.ProductName == "" {
		rec.ProductName = "Unknown Product"
	}
	if rec.Origin == "" {
		rec.Origin = "Unknown"
	}

	switch status {
	case verdict.StatusCompliant:
		rec.Reason = "Product explicitly labeled as Halal in database."
		rec.Certification = "Database Verified"
	case verdict.StatusNonCompliant:
		rec.Reason = "Contains non-halal ingredients according to database."
	default:
		rec.Reason = "No explicit Halal certification found in database. Check ingredients."
	}

	if product.IngredientsText != "" {
		for _, part := range strings.Split(product.IngredientsText, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				rec.Ingredients = append(rec.Ingredients, trimmed)
			}
		}
	}

	return rec
}

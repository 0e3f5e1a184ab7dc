// Package food holds the contracts of the external food services and the
// clients that implement them. Every call is a single request: no retries, and
// failures surface as an empty result or not-found.
package food

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tableflip.dev/nourish/pkg/record"
)

const defaultTimeout = 10 * time.Second

var errNotFound = errors.New("not found")

// Searcher finds foods matching free text.
type Searcher interface {
	SearchFood(ctx context.Context, query string) []record.FoodItem
}

// BarcodeLookup resolves a product barcode.
type BarcodeLookup interface {
	LookupBarcode(ctx context.Context, code string) (record.FoodItem, bool)
}

// Estimate is the nutrition estimated from a meal photo.
type Estimate struct {
	Name     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
}

// PhotoAnalyzer estimates nutrition from an image.
type PhotoAnalyzer interface {
	AnalyzeMealPhoto(ctx context.Context, image []byte) (Estimate, bool)
}

// Unavailable is used when a service is not configured.
type Unavailable struct{}

func (Unavailable) SearchFood(context.Context, string) []record.FoodItem { return nil }

func (Unavailable) LookupBarcode(context.Context, string) (record.FoodItem, bool) {
	return record.FoodItem{}, false
}

func (Unavailable) AnalyzeMealPhoto(context.Context, []byte) (Estimate, bool) {
	return Estimate{}, false
}

func getJSON(ctx context.Context, client *http.Client, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nourish")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

package food

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
)

// DefaultOpenFoodFactsURL is the public Open Food Facts API.
const DefaultOpenFoodFactsURL = "https://world.openfoodfacts.org"

// OpenFoodFacts resolves barcodes against Open Food Facts.
type OpenFoodFacts struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

var _ BarcodeLookup = (*OpenFoodFacts)(nil)

func NewOpenFoodFacts(baseURL string, log *slog.Logger) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = DefaultOpenFoodFactsURL
	}
	return &OpenFoodFacts{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: defaultTimeout},
		Logger:  log,
	}
}

type productResponse struct {
	Status  int `json:"status"`
	Product struct {
		Name       string `json:"product_name"`
		ImageURL   string `json:"image_url"`
		Categories string `json:"categories"`
		Nutriments struct {
			Kcal    float64 `json:"energy-kcal_100g"`
			Protein float64 `json:"proteins_100g"`
			Carbs   float64 `json:"carbohydrates_100g"`
			Fat     float64 `json:"fat_100g"`
		} `json:"nutriments"`
	} `json:"product"`
}

// LookupBarcode returns the product per 100g, or false when it is unknown or
// the call failed.
func (o *OpenFoodFacts) LookupBarcode(ctx context.Context, code string) (record.FoodItem, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return record.FoodItem{}, false
	}
	log := logging.OrDiscard(o.Logger)
	client := o.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	u := strings.TrimRight(o.BaseURL, "/") + "/api/v2/product/" + url.PathEscape(code) + ".json"
	var pr productResponse
	if err := getJSON(ctx, client, u, &pr); err != nil {
		if !errors.Is(err, errNotFound) {
			log.Warn("food: barcode lookup failed", "code", code, "error", err)
		}
		return record.FoodItem{}, false
	}
	if pr.Status != 1 || pr.Product.Name == "" {
		return record.FoodItem{}, false
	}

	category := pr.Product.Categories
	if i := strings.Index(category, ","); i >= 0 {
		category = category[:i]
	}
	return record.FoodItem{
		Name:     pr.Product.Name,
		Calories: pr.Product.Nutriments.Kcal,
		Protein:  pr.Product.Nutriments.Protein,
		Carbs:    pr.Product.Nutriments.Carbs,
		Fats:     pr.Product.Nutriments.Fat,
		ImageURL: pr.Product.ImageURL,
		Category: strings.TrimSpace(category),
	}, true
}

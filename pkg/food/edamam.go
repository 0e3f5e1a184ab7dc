package food

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
)

// DefaultEdamamURL is the Edamam food database API.
const DefaultEdamamURL = "https://api.edamam.com"

// Edamam searches the Edamam food database parser.
type Edamam struct {
	BaseURL string
	AppID   string
	AppKey  string
	Client  *http.Client
	Logger  *slog.Logger
}

var _ Searcher = (*Edamam)(nil)

// NewEdamam builds a client with a request timeout.
func NewEdamam(appID, appKey string, log *slog.Logger) *Edamam {
	return &Edamam{
		BaseURL: DefaultEdamamURL,
		AppID:   appID,
		AppKey:  appKey,
		Client:  &http.Client{Timeout: defaultTimeout},
		Logger:  log,
	}
}

type parserResponse struct {
	Hints []struct {
		Food struct {
			FoodID    string `json:"foodId"`
			Label     string `json:"label"`
			Category  string `json:"category"`
			Image     string `json:"image"`
			Nutrients struct {
				Kcal    float64 `json:"ENERC_KCAL"`
				Protein float64 `json:"PROCNT"`
				Carbs   float64 `json:"CHOCDF"`
				Fat     float64 `json:"FAT"`
			} `json:"nutrients"`
		} `json:"food"`
	} `json:"hints"`
}

// SearchFood returns matches per 100g. Failures are logged and yield nil.
func (e *Edamam) SearchFood(ctx context.Context, query string) []record.FoodItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	log := logging.OrDiscard(e.Logger)

	q := url.Values{}
	q.Set("ingr", query)
	q.Set("app_id", e.AppID)
	q.Set("app_key", e.AppKey)
	u := strings.TrimRight(e.BaseURL, "/") + "/api/food-database/v2/parser?" + q.Encode()

	var pr parserResponse
	if err := getJSON(ctx, e.client(), u, &pr); err != nil {
		log.Warn("food: edamam search failed", "query", query, "error", err)
		return nil
	}

	seen := map[string]bool{}
	results := make([]record.FoodItem, 0, len(pr.Hints))
	for _, h := range pr.Hints {
		key := strings.ToLower(h.Food.Label)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, record.FoodItem{
			Name:     h.Food.Label,
			Calories: h.Food.Nutrients.Kcal,
			Protein:  h.Food.Nutrients.Protein,
			Carbs:    h.Food.Nutrients.Carbs,
			Fats:     h.Food.Nutrients.Fat,
			ImageURL: h.Food.Image,
			Category: h.Food.Category,
		})
	}
	return results
}

func (e *Edamam) client() *http.Client {
	if e.Client == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return e.Client
}

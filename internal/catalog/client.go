// Package catalog is the read-only client for the public meal lookup API.
// Every call is a single round trip: no retries, no caching. Failures wrap
// ErrUnavailable and are treated by callers as "no data", never as fatal.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mwozniak/mealvault/internal/model"
)

// ErrUnavailable indicates a transport or parse failure talking to the
// catalog. Callers degrade to local data instead of surfacing it.
var ErrUnavailable = errors.New("meal catalog unavailable")

const maxIngredientSlots = 20

// Client talks to a TheMealDB-style JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the common response shape: {"meals": [...]} with meals null
// when nothing matched.
type envelope struct {
	Meals []map[string]any `json:"meals"`
}

// FetchRandom returns one random meal from the catalog.
func (c *Client) FetchRandom(ctx context.Context) (*model.Meal, error) {
	meals, err := c.get(ctx, "random.php", nil)
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, fmt.Errorf("%w: empty random response", ErrUnavailable)
	}
	return &meals[0], nil
}

// Search returns all meals whose name matches the query. An empty result
// is a nil slice, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]model.Meal, error) {
	return c.get(ctx, "search.php", url.Values{"s": {query}})
}

// FetchByID looks up a single meal. A missing id returns (nil, nil).
func (c *Client) FetchByID(ctx context.Context, id string) (*model.Meal, error) {
	meals, err := c.get(ctx, "lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, nil
	}
	return &meals[0], nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]model.Meal, error) {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	meals := make([]model.Meal, 0, len(env.Meals))
	for _, raw := range env.Meals {
		meals = append(meals, parseMeal(raw))
	}
	return meals, nil
}

// parseMeal compacts the API's flattened strIngredient1..20/strMeasure1..20
// field pairs into an ordered ingredient list, skipping blank slots.
func parseMeal(raw map[string]any) model.Meal {
	meal := model.Meal{
		ID:           field(raw, "idMeal"),
		Name:         field(raw, "strMeal"),
		Thumbnail:    field(raw, "strMealThumb"),
		Instructions: field(raw, "strInstructions"),
	}
	for i := 1; i <= maxIngredientSlots; i++ {
		name := strings.TrimSpace(field(raw, fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		measure := strings.TrimSpace(field(raw, fmt.Sprintf("strMeasure%d", i)))
		meal.Ingredients = append(meal.Ingredients, model.Ingredient{Name: name, Measure: measure})
	}
	return meal
}

// field reads a string value, tolerating null and absent keys.
func field(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

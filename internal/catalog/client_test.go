package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwozniak/mealvault/internal/catalog"
	"github.com/mwozniak/mealvault/internal/model"
)

const teriyakiJSON = `{
	"idMeal": "52772",
	"strMeal": "Teriyaki Chicken Casserole",
	"strMealThumb": "https://example.com/teriyaki.jpg",
	"strInstructions": "Preheat oven to 350.",
	"strIngredient1": "soy sauce",
	"strMeasure1": "3/4 cup",
	"strIngredient2": "water",
	"strMeasure2": "1/2 cup",
	"strIngredient3": "",
	"strMeasure3": "",
	"strIngredient4": " ",
	"strMeasure4": " ",
	"strIngredient5": null,
	"strMeasure5": null
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *catalog.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return catalog.New(srv.URL, 2*time.Second)
}

func TestFetchRandom(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/random.php", r.URL.Path)
		w.Write([]byte(`{"meals": [` + teriyakiJSON + `]}`))
	})

	meal, err := client.FetchRandom(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "52772", meal.ID)
	assert.Equal(t, "Teriyaki Chicken Casserole", meal.Name)

	// Blank and null ingredient slots are compacted away, order preserved.
	assert.Equal(t, []model.Ingredient{
		{Name: "soy sauce", Measure: "3/4 cup"},
		{Name: "water", Measure: "1/2 cup"},
	}, meal.Ingredients)
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.php", r.URL.Path)
		assert.Equal(t, "pasta", r.URL.Query().Get("s"))
		w.Write([]byte(`{"meals": [` + teriyakiJSON + `, ` + teriyakiJSON + `]}`))
	})

	meals, err := client.Search(context.Background(), "pasta")
	require.NoError(t, err)
	assert.Len(t, meals, 2)
}

func TestSearchNoMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": null}`))
	})

	meals, err := client.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestFetchByIDMissing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup.php", r.URL.Path)
		assert.Equal(t, "99999", r.URL.Query().Get("i"))
		w.Write([]byte(`{"meals": null}`))
	})

	meal, err := client.FetchByID(context.Background(), "99999")
	require.NoError(t, err)
	assert.Nil(t, meal)
}

func TestServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchRandom(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)

	_, err = client.Search(context.Background(), "x")
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestMalformedJSONIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": [`))
	})

	_, err := client.FetchRandom(context.Background())
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestUnreachableHostIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := catalog.New(srv.URL, time.Second)

	_, err := client.FetchByID(context.Background(), "52772")
	assert.True(t, errors.Is(err, catalog.ErrUnavailable))
}

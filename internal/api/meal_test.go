package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwozniak/mealvault/internal/api"
	"github.com/mwozniak/mealvault/internal/model"
	"github.com/mwozniak/mealvault/internal/router"
	"github.com/mwozniak/mealvault/internal/service"
	"github.com/mwozniak/mealvault/internal/store"
	"github.com/mwozniak/mealvault/internal/testhelpers"
)

type fakeCatalog struct {
	meals map[string]model.Meal
}

func (c *fakeCatalog) FetchRandom(ctx context.Context) (*model.Meal, error) {
	for _, meal := range c.meals {
		return &meal, nil
	}
	return nil, nil
}

func (c *fakeCatalog) Search(ctx context.Context, query string) ([]model.Meal, error) {
	var out []model.Meal
	for _, meal := range c.meals {
		if strings.Contains(strings.ToLower(meal.Name), strings.ToLower(query)) {
			out = append(out, meal)
		}
	}
	return out, nil
}

func (c *fakeCatalog) FetchByID(ctx context.Context, id string) (*model.Meal, error) {
	if meal, ok := c.meals[id]; ok {
		return &meal, nil
	}
	return nil, nil
}

func setupAPITest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	cat := &fakeCatalog{meals: map[string]model.Meal{
		"52772": {
			ID:   "52772",
			Name: "Teriyaki Chicken",
			Ingredients: []model.Ingredient{
				{Name: "soy sauce", Measure: "3/4 cup"},
			},
		},
		"52854": {ID: "52854", Name: "Pancakes"},
	}}

	authService := service.NewAuthService(db, nil, "test-secret")
	mealService := service.NewMealService(cat, store.New(db), 2)
	shareService := service.NewShareService("", "", "", "", "noreply@test.local", "Test")

	authHandler := api.NewAuthHandler(authService)
	mealHandler := api.NewMealHandler(mealService, shareService, authService)

	return router.SetupRouter(authHandler, mealHandler, nil, nil)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func registerUser(t *testing.T, engine *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "",
		`{"email": "`+email+`", "password": "password123"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestToggleFavoriteRequiresAuth(t *testing.T) {
	engine := setupAPITest(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/meals/52772/favorite", "",
		`{"name": "Teriyaki Chicken"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFavoriteFlow(t *testing.T) {
	engine := setupAPITest(t)
	token := registerUser(t, engine, "t@example.com")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/meals/52772/favorite", token,
		`{"name": "Teriyaki Chicken", "ingredients": [{"name": "soy sauce", "measure": "3/4 cup"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/meals/favorites", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meals []service.FeedItem `json:"meals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Meals, 1)
	assert.Equal(t, "52772", resp.Meals[0].ID)
	assert.True(t, resp.Meals[0].IsFavorite)
	assert.True(t, resp.Meals[0].IsOffline)

	// Another user sees none of it.
	otherToken := registerUser(t, engine, "other@example.com")
	w = doJSON(t, engine, http.MethodGet, "/api/v1/meals/favorites", otherToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Meals)
}

func TestFeedMarksFavorites(t *testing.T) {
	engine := setupAPITest(t)
	token := registerUser(t, engine, "t@example.com")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/meals/52772/favorite", token,
		`{"name": "Teriyaki Chicken"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/feed?q=chicken", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meals []service.FeedItem `json:"meals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Meals, 1)
	assert.True(t, resp.Meals[0].IsFavorite)

	// Anonymous callers get the feed without flags.
	w = doJSON(t, engine, http.MethodGet, "/api/v1/feed?q=chicken", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Meals, 1)
	assert.False(t, resp.Meals[0].IsFavorite)
}

func TestOfflineFlow(t *testing.T) {
	engine := setupAPITest(t)
	token := registerUser(t, engine, "t@example.com")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/meals/52854/offline", token,
		`{"name": "Pancakes"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Meals []service.FeedItem `json:"meals"`
	}
	w = doJSON(t, engine, http.MethodGet, "/api/v1/meals/offline", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Meals, 1)
	assert.False(t, resp.Meals[0].IsFavorite)

	w = doJSON(t, engine, http.MethodDelete, "/api/v1/meals/52854/offline", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/meals/offline", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Meals)
}

func TestGetMealDetail(t *testing.T) {
	engine := setupAPITest(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/meals/52772", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var item service.FeedItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "Teriyaki Chicken", item.Name)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/meals/99999", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShareMeal(t *testing.T) {
	engine := setupAPITest(t)
	token := registerUser(t, engine, "t@example.com")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/meals/52772/share", token,
		`{"to": "friend@example.com"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/meals/52772/share", token,
		`{"to": "not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndLogout(t *testing.T) {
	engine := setupAPITest(t)
	registerUser(t, engine, "t@example.com")

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "",
		`{"email": "t@example.com", "password": "password123"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/logout", resp.Token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "",
		`{"email": "t@example.com", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShortWrongPasswordReadsAsBadCredentials(t *testing.T) {
	engine := setupAPITest(t)
	registerUser(t, engine, "t@example.com")

	// The minimum-length rule applies at registration only; a login
	// attempt shorter than it still reaches the credential check and
	// comes back unauthorized, not bad-request.
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/login", "",
		`{"email": "t@example.com", "password": "nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/register", "",
		`{"email": "short@example.com", "password": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamRequiresAuth(t *testing.T) {
	engine := setupAPITest(t)

	w := doJSON(t, engine, http.MethodGet, "/api/v1/feed/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

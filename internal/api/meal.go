package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwozniak/mealvault/internal/middleware"
	"github.com/mwozniak/mealvault/internal/model"
	"github.com/mwozniak/mealvault/internal/service"
	"github.com/mwozniak/mealvault/internal/store"
)

type MealHandler struct {
	meals *service.MealService
	share *service.ShareService
	auth  *service.AuthService
}

func NewMealHandler(meals *service.MealService, share *service.ShareService, auth *service.AuthService) *MealHandler {
	return &MealHandler{
		meals: meals,
		share: share,
		auth:  auth,
	}
}

func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup) {
	feed := router.Group("/feed")
	{
		feed.GET("", middleware.OptionalAuth(h.auth), h.GetFeed)
		// Snapshots are keyed by user id; anonymous subscribers would all
		// share one key and see each other's feeds, so the stream requires
		// a session.
		feed.GET("/stream", middleware.AuthMiddleware(h.auth), h.StreamFeed)
	}

	meals := router.Group("/meals")
	{
		meals.GET("/favorites", middleware.AuthMiddleware(h.auth), h.ListFavorites)
		meals.GET("/offline", middleware.AuthMiddleware(h.auth), h.ListOffline)
		meals.GET("/:id", middleware.OptionalAuth(h.auth), h.GetMeal)
		meals.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.ToggleFavorite)
		meals.POST("/:id/offline", middleware.AuthMiddleware(h.auth), h.SaveOffline)
		meals.DELETE("/:id/offline", middleware.AuthMiddleware(h.auth), h.RemoveOffline)
		meals.POST("/:id/share", middleware.AuthMiddleware(h.auth), h.ShareMeal)
	}
}

// GetFeed returns the merged feed: remote results annotated with the
// caller's favorite/offline flags, or the offline set when the catalog is
// unreachable.
func (h *MealHandler) GetFeed(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	feed, err := h.meals.SearchFeed(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": feed})
}

// StreamFeed pushes feed snapshots to the client as server-sent events
// until the client disconnects.
func (h *MealHandler) StreamFeed(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	snapshots, cancel := h.meals.Subscribe(userID)
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case feed, ok := <-snapshots:
			if !ok {
				return false
			}
			c.SSEvent("feed", feed)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *MealHandler) GetMeal(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	item, err := h.meals.Lookup(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load meal"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// mealRequest is the catalog snapshot the client sends along with flag
// mutations, so a row can be created for meals the server has never seen.
type mealRequest struct {
	Name         string             `json:"name" binding:"required"`
	Thumbnail    string             `json:"thumbnail"`
	Instructions string             `json:"instructions"`
	Ingredients  []model.Ingredient `json:"ingredients"`
}

func (r mealRequest) meal(id string) model.Meal {
	return model.Meal{
		ID:           id,
		Name:         r.Name,
		Thumbnail:    r.Thumbnail,
		Instructions: r.Instructions,
		Ingredients:  r.Ingredients,
	}
}

func (h *MealHandler) ToggleFavorite(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)
	if err := h.meals.ToggleFavorite(c.Request.Context(), userID, req.meal(c.Param("id"))); err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "favorite toggled"})
}

func (h *MealHandler) SaveOffline(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)
	if err := h.meals.SaveOffline(c.Request.Context(), userID, req.meal(c.Param("id"))); err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "meal saved offline"})
}

func (h *MealHandler) RemoveOffline(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if err := h.meals.RemoveOffline(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "meal removed from offline storage"})
}

func (h *MealHandler) ListFavorites(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	meals, err := h.meals.Favorites(c.Request.Context(), userID)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *MealHandler) ListOffline(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	meals, err := h.meals.Offline(c.Request.Context(), userID)
	if err != nil {
		h.writeMutationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

type shareRequest struct {
	To string `json:"to" binding:"required,email"`
}

// ShareMeal resolves the meal and hands its ingredient list off to the
// destination address. The handoff runs in the background; the response
// only confirms it was attempted.
func (h *MealHandler) ShareMeal(c *gin.Context) {
	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)
	item, err := h.meals.Lookup(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load meal"})
		return
	}

	go func(to string, meal model.Meal) {
		if err := h.share.ShareIngredients(to, meal); err != nil {
			log.Printf("share handoff to %s failed: %v", to, err)
		}
	}(req.To, item.Meal)

	c.JSON(http.StatusAccepted, gin.H{"message": "share attempted"})
}

func (h *MealHandler) writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
	default:
		log.Printf("meal mutation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure, nothing was changed"})
	}
}

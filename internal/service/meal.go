package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/mwozniak/mealvault/internal/model"
	"github.com/mwozniak/mealvault/internal/store"
)

// ErrUnauthenticated is returned when a mutation is attempted without an
// active session. No partial effect has happened when it is returned.
var ErrUnauthenticated = errors.New("authentication required")

// DefaultRandomFeedSize is how many random meals populate the default feed
// when no search query is given.
const DefaultRandomFeedSize = 10

// Catalog is the remote meal catalog contract consumed by MealService.
type Catalog interface {
	FetchRandom(ctx context.Context) (*model.Meal, error)
	Search(ctx context.Context, query string) ([]model.Meal, error)
	FetchByID(ctx context.Context, id string) (*model.Meal, error)
}

// PreferenceStore is the local per-user preference table contract.
type PreferenceStore interface {
	Upsert(ctx context.Context, meal model.SavedMeal) error
	GetByID(ctx context.Context, userID, mealID string) (*model.SavedMeal, error)
	ListFavorites(ctx context.Context, userID string) ([]model.SavedMeal, error)
	ListOffline(ctx context.Context, userID string) ([]model.SavedMeal, error)
	SetFavorite(ctx context.Context, userID, mealID string, favorite bool) error
	SetOffline(ctx context.Context, userID, mealID string, offline bool) error
}

// FeedItem is a catalog meal annotated with the active user's flags.
type FeedItem struct {
	model.Meal
	IsFavorite bool `json:"is_favorite"`
	IsOffline  bool `json:"is_offline"`
}

// MealService merges remote catalog results with the local preference
// table and mediates every flag mutation. Mutations for the same user are
// serialized through a per-user lock, so two simultaneous toggles on the
// same (user, meal) pair cannot interleave.
type MealService struct {
	catalog        Catalog
	store          PreferenceStore
	randomFeedSize int

	lockMu    sync.Mutex
	userLocks map[string]*sync.Mutex

	subMu sync.Mutex
	subs  map[string]map[chan []FeedItem]struct{}
}

func NewMealService(cat Catalog, st PreferenceStore, randomFeedSize int) *MealService {
	if randomFeedSize <= 0 {
		randomFeedSize = DefaultRandomFeedSize
	}
	return &MealService{
		catalog:        cat,
		store:          st,
		randomFeedSize: randomFeedSize,
		userLocks:      make(map[string]*sync.Mutex),
		subs:           make(map[string]map[chan []FeedItem]struct{}),
	}
}

// LoadRandomFeed assembles the default feed from N random catalog fetches.
// Individual fetch failures are skipped; if nothing at all comes back the
// feed degrades to the user's offline set.
func (s *MealService) LoadRandomFeed(ctx context.Context, userID string) ([]FeedItem, error) {
	var meals []model.Meal
	for i := 0; i < s.randomFeedSize; i++ {
		meal, err := s.catalog.FetchRandom(ctx)
		if err != nil {
			log.Printf("random meal fetch failed: %v", err)
			continue
		}
		meals = append(meals, *meal)
	}
	if len(meals) == 0 {
		return s.degradedFeed(ctx, userID)
	}
	return s.assembleFeed(ctx, userID, meals)
}

// SearchFeed assembles the feed from a catalog name search. An empty query
// routes to the random feed; the catalog is never asked to search for "".
// When the catalog is unreachable the feed degrades to the offline set.
func (s *MealService) SearchFeed(ctx context.Context, userID, query string) ([]FeedItem, error) {
	if query == "" {
		return s.LoadRandomFeed(ctx, userID)
	}
	meals, err := s.catalog.Search(ctx, query)
	if err != nil {
		log.Printf("meal search %q failed: %v", query, err)
		return s.degradedFeed(ctx, userID)
	}
	return s.assembleFeed(ctx, userID, meals)
}

// assembleFeed annotates remote meals with the user's favorite/offline
// flags and deduplicates by meal id, preserving order.
func (s *MealService) assembleFeed(ctx context.Context, userID string, meals []model.Meal) ([]FeedItem, error) {
	favorites, offline := s.flagSets(ctx, userID)

	seen := make(map[string]struct{}, len(meals))
	feed := make([]FeedItem, 0, len(meals))
	for _, meal := range meals {
		if _, dup := seen[meal.ID]; dup {
			continue
		}
		seen[meal.ID] = struct{}{}
		_, fav := favorites[meal.ID]
		_, off := offline[meal.ID]
		feed = append(feed, FeedItem{Meal: meal, IsFavorite: fav, IsOffline: off})
	}

	s.publish(userID, feed)
	return feed, nil
}

// degradedFeed substitutes the persisted offline set for the feed when the
// catalog yields nothing. Anonymous users get an empty feed.
func (s *MealService) degradedFeed(ctx context.Context, userID string) ([]FeedItem, error) {
	if userID == "" {
		return []FeedItem{}, nil
	}
	rows, err := s.store.ListOffline(ctx, userID)
	if err != nil {
		log.Printf("offline fallback failed for user %s: %v", userID, err)
		return []FeedItem{}, nil
	}
	feed := make([]FeedItem, 0, len(rows))
	for _, row := range rows {
		feed = append(feed, FeedItem{Meal: row.Meal(), IsFavorite: row.IsFavorite, IsOffline: row.IsOffline})
	}
	s.publish(userID, feed)
	return feed, nil
}

func (s *MealService) flagSets(ctx context.Context, userID string) (favorites, offline map[string]struct{}) {
	favorites = map[string]struct{}{}
	offline = map[string]struct{}{}
	if userID == "" {
		return favorites, offline
	}
	favRows, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		log.Printf("favorite flags unavailable for user %s: %v", userID, err)
	}
	offRows, err := s.store.ListOffline(ctx, userID)
	if err != nil {
		log.Printf("offline flags unavailable for user %s: %v", userID, err)
	}
	for _, row := range favRows {
		favorites[row.MealID] = struct{}{}
	}
	for _, row := range offRows {
		offline[row.MealID] = struct{}{}
	}
	return favorites, offline
}

// ToggleFavorite flips the favorite flag for (user, meal). The first toggle
// on a meal with no row creates one with favorite=true and offline=true;
// favoriting always forces offline retention. Unfavoriting leaves the
// offline flag untouched, so a second toggle lands on offline-only, not on
// an absent row.
func (s *MealService) ToggleFavorite(ctx context.Context, userID string, meal model.Meal) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	unlock := s.lockUser(userID)
	defer unlock()

	existing, err := s.store.GetByID(ctx, userID, meal.ID)
	if errors.Is(err, store.ErrNotFound) {
		return s.store.Upsert(ctx, model.NewSavedMeal(userID, meal, true, true))
	}
	if err != nil {
		return err
	}

	nowFavorite := !existing.IsFavorite
	if err := s.store.SetFavorite(ctx, userID, meal.ID, nowFavorite); err != nil {
		return err
	}
	if nowFavorite && !existing.IsOffline {
		return s.store.SetOffline(ctx, userID, meal.ID, true)
	}
	return nil
}

// SaveOffline marks a meal for offline retention, creating the row with
// favorite=false when it does not exist yet.
func (s *MealService) SaveOffline(ctx context.Context, userID string, meal model.Meal) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	unlock := s.lockUser(userID)
	defer unlock()

	_, err := s.store.GetByID(ctx, userID, meal.ID)
	if errors.Is(err, store.ErrNotFound) {
		return s.store.Upsert(ctx, model.NewSavedMeal(userID, meal, false, true))
	}
	if err != nil {
		return err
	}
	return s.store.SetOffline(ctx, userID, meal.ID, true)
}

// RemoveOffline clears the offline flag. The favorite flag is deliberately
// left alone, matching observed behavior: removing a favorited meal from
// offline storage leaves it favorite=true, offline=false. Removing a meal
// that has no row is a no-op.
func (s *MealService) RemoveOffline(ctx context.Context, userID, mealID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	unlock := s.lockUser(userID)
	defer unlock()

	err := s.store.SetOffline(ctx, userID, mealID, false)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Favorites returns the user's favorited meals as feed items.
func (s *MealService) Favorites(ctx context.Context, userID string) ([]FeedItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	rows, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rowsToFeed(rows), nil
}

// Offline returns the meals the user saved for offline viewing.
func (s *MealService) Offline(ctx context.Context, userID string) ([]FeedItem, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	rows, err := s.store.ListOffline(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rowsToFeed(rows), nil
}

// Lookup resolves a meal for the detail view: the local row wins when
// present (its ingredient list is decoded from the stored encoding),
// otherwise the catalog is asked. A meal known to neither side returns
// store.ErrNotFound; so does a catalog miss while offline.
func (s *MealService) Lookup(ctx context.Context, userID, mealID string) (*FeedItem, error) {
	if userID != "" {
		row, err := s.store.GetByID(ctx, userID, mealID)
		if err == nil {
			return &FeedItem{Meal: row.Meal(), IsFavorite: row.IsFavorite, IsOffline: row.IsOffline}, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	meal, err := s.catalog.FetchByID(ctx, mealID)
	if err != nil {
		log.Printf("meal lookup %s failed: %v", mealID, err)
		return nil, store.ErrNotFound
	}
	if meal == nil {
		return nil, store.ErrNotFound
	}
	return &FeedItem{Meal: *meal}, nil
}

func rowsToFeed(rows []model.SavedMeal) []FeedItem {
	feed := make([]FeedItem, 0, len(rows))
	for _, row := range rows {
		feed = append(feed, FeedItem{Meal: row.Meal(), IsFavorite: row.IsFavorite, IsOffline: row.IsOffline})
	}
	return feed
}

func (s *MealService) lockUser(userID string) func() {
	s.lockMu.Lock()
	mu, ok := s.userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userLocks[userID] = mu
	}
	s.lockMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

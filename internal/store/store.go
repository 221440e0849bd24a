// Package store is the durable per-user preference table: which meals a
// user has favorited or saved for offline viewing. Every operation is
// scoped by the caller-supplied user id; rows for other users are never
// visible. Writes are single-row and immediately visible to later reads.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mwozniak/mealvault/internal/model"
)

var (
	// ErrNotFound indicates a flag mutation or lookup on a row that does
	// not exist for that user.
	ErrNotFound = errors.New("saved meal not found")

	// ErrStorage wraps local write failures. The caller surfaces these;
	// no partial mutation has happened when one is returned.
	ErrStorage = errors.New("preference store failure")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts or fully replaces the row for (user, meal).
func (s *Store) Upsert(ctx context.Context, meal model.SavedMeal) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "meal_id"}},
			UpdateAll: true,
		}).
		Create(&meal).Error
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// GetByID returns the user's row for the given meal id, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, userID, mealID string) (*model.SavedMeal, error) {
	var meal model.SavedMeal
	err := s.db.WithContext(ctx).
		First(&meal, "user_id = ? AND meal_id = ?", userID, mealID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &meal, nil
}

// ListFavorites returns the user's favorited meals.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]model.SavedMeal, error) {
	return s.list(ctx, userID, "is_favorite")
}

// ListOffline returns the meals the user has saved for offline viewing.
func (s *Store) ListOffline(ctx context.Context, userID string) ([]model.SavedMeal, error) {
	return s.list(ctx, userID, "is_offline")
}

func (s *Store) list(ctx context.Context, userID, flag string) ([]model.SavedMeal, error) {
	var meals []model.SavedMeal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(flag+" = ?", true).
		Order("updated_at DESC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return meals, nil
}

// SetFavorite flips the favorite flag on an existing row.
func (s *Store) SetFavorite(ctx context.Context, userID, mealID string, favorite bool) error {
	return s.setFlag(ctx, userID, mealID, "is_favorite", favorite)
}

// SetOffline flips the offline flag on an existing row.
func (s *Store) SetOffline(ctx context.Context, userID, mealID string, offline bool) error {
	return s.setFlag(ctx, userID, mealID, "is_offline", offline)
}

func (s *Store) setFlag(ctx context.Context, userID, mealID, column string, value bool) error {
	result := s.db.WithContext(ctx).
		Model(&model.SavedMeal{}).
		Where("user_id = ? AND meal_id = ?", userID, mealID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", ErrStorage, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

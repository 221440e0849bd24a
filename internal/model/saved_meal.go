package model

import "time"

// SavedMeal is the durable per-user record of a meal the user has favorited
// or saved for offline viewing. Rows are created on the first favorite or
// offline action and mutated in place afterwards; removal flips a flag, it
// never deletes the row.
//
// A favorited meal is always retained offline (IsFavorite implies
// IsOffline on every favorite-setting path). The converse does not hold.
type SavedMeal struct {
	UserID       string    `gorm:"primaryKey;size:36" json:"user_id"`
	MealID       string    `gorm:"primaryKey;size:32" json:"meal_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Thumbnail    string    `gorm:"size:255" json:"thumbnail"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	Ingredients  string    `gorm:"type:text" json:"-"`
	IsFavorite   bool      `gorm:"not null" json:"is_favorite"`
	IsOffline    bool      `gorm:"not null" json:"is_offline"`
}

func (SavedMeal) TableName() string {
	return "saved_meals"
}

// Meal reconstructs the catalog value from the stored row, decoding the
// flat ingredient encoding.
func (m *SavedMeal) Meal() Meal {
	return Meal{
		ID:           m.MealID,
		Name:         m.Name,
		Thumbnail:    m.Thumbnail,
		Instructions: m.Instructions,
		Ingredients:  DecodeIngredients(m.Ingredients),
	}
}

// NewSavedMeal builds a row from a catalog meal with the given flags.
func NewSavedMeal(userID string, meal Meal, favorite, offline bool) SavedMeal {
	return SavedMeal{
		UserID:       userID,
		MealID:       meal.ID,
		Name:         meal.Name,
		Thumbnail:    meal.Thumbnail,
		Instructions: meal.Instructions,
		Ingredients:  EncodeIngredients(meal.Ingredients),
		IsFavorite:   favorite,
		IsOffline:    offline,
	}
}

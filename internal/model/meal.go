package model

// Meal is a recipe as returned by the remote catalog. Values are immutable
// once fetched; nothing in this struct is persisted verbatim.
type Meal struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Thumbnail    string       `json:"thumbnail"`
	Instructions string       `json:"instructions"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// Ingredient is a single (name, measure) pair. Order matters: the catalog
// lists ingredients in preparation order and the UI renders them as-is.
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

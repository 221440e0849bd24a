package model

import "strings"

const (
	ingredientPairSep  = "|"
	ingredientFieldSep = "::"
)

// EncodeIngredients flattens an ingredient list into a single string for
// row storage: pairs joined by "|", name and measure joined by "::".
//
// Known limitation: a name or measure containing either separator is
// corrupted by this encoding. The catalog never produces such values, so
// this is documented rather than escaped.
func EncodeIngredients(list []Ingredient) string {
	parts := make([]string, len(list))
	for i, ing := range list {
		parts[i] = ing.Name + ingredientFieldSep + ing.Measure
	}
	return strings.Join(parts, ingredientPairSep)
}

// DecodeIngredients reverses EncodeIngredients. Malformed pairs decode to
// an empty ingredient rather than failing the whole list.
func DecodeIngredients(s string) []Ingredient {
	if s == "" {
		return nil
	}
	pairs := strings.Split(s, ingredientPairSep)
	list := make([]Ingredient, 0, len(pairs))
	for _, p := range pairs {
		fields := strings.Split(p, ingredientFieldSep)
		if len(fields) == 2 {
			list = append(list, Ingredient{Name: fields[0], Measure: fields[1]})
		} else {
			list = append(list, Ingredient{})
		}
	}
	return list
}

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Field keys of a nutrition catalog record. They contain characters that
// encoding/json does not accept in struct tags, so records are decoded by hand.
const (
	KeyPrice    = "Precio (€/100g)"
	KeyEnergy   = "Energía (Kcal)"
	KeyCarbs    = "Hidratos de carbono (g)"
	KeyProtein  = "Proteínas (g)"
	KeyFat      = "Lípidos totales (g)"
	KeyCategory = "Categoría"
	KeyMaxGrams = "Máximo (g/día)"
	KeyExtra    = "Extra"
)

// DessertMarker is the Extra value that makes a food dessert-eligible.
const DessertMarker = "Postre"

// Numeric holds a numeric field as found in the file. Catalogs produced by the
// PDF extraction carry numbers as strings, hand-edited ones as JSON numbers;
// both are accepted and parsed later so that errors can name the field.
type Numeric struct {
	raw string
	set bool
}

// Num builds a Numeric from a float, for tests and programmatic catalogs.
func Num(v float64) Numeric {
	return Numeric{raw: strconv.FormatFloat(v, 'f', -1, 64), set: true}
}

// NumText builds a Numeric from raw text.
func NumText(s string) Numeric {
	return Numeric{raw: s, set: true}
}

func (n *Numeric) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = Numeric{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Numeric{raw: s, set: true}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return fmt.Errorf("expected number or numeric string, got %s", trimmed)
	}
	*n = Numeric{raw: num.String(), set: true}
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}

// IsSet reports whether the field was present.
func (n Numeric) IsSet() bool { return n.set }

// Float parses the value. A decimal comma is accepted; NaN and infinities
// are not.
func (n Numeric) Float() (float64, error) {
	if !n.set {
		return 0, fmt.Errorf("is required")
	}
	s := strings.ReplaceAll(strings.TrimSpace(n.raw), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number %q", n.raw)
	}
	return v, nil
}

// FoodRecord is one nutrition catalog entry as it appears in the file.
type FoodRecord struct {
	Price    Numeric
	Energy   Numeric
	Carbs    Numeric
	Protein  Numeric
	Fat      Numeric
	Category string
	MaxGrams Numeric
	Extra    string
}

func (r *FoodRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	numerics := []struct {
		key string
		dst *Numeric
	}{
		{KeyPrice, &r.Price},
		{KeyEnergy, &r.Energy},
		{KeyCarbs, &r.Carbs},
		{KeyProtein, &r.Protein},
		{KeyFat, &r.Fat},
		{KeyMaxGrams, &r.MaxGrams},
	}
	for _, f := range numerics {
		raw, ok := fields[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
	}
	if raw, ok := fields[KeyCategory]; ok {
		if err := json.Unmarshal(raw, &r.Category); err != nil {
			return fmt.Errorf("%s: %w", KeyCategory, err)
		}
	}
	if raw, ok := fields[KeyExtra]; ok {
		if err := json.Unmarshal(raw, &r.Extra); err != nil {
			return fmt.Errorf("%s: %w", KeyExtra, err)
		}
	}
	return nil
}

func (r FoodRecord) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		KeyPrice:    r.Price,
		KeyEnergy:   r.Energy,
		KeyCarbs:    r.Carbs,
		KeyProtein:  r.Protein,
		KeyFat:      r.Fat,
		KeyCategory: r.Category,
		KeyMaxGrams: r.MaxGrams,
	}
	if r.Extra != "" {
		out[KeyExtra] = r.Extra
	}
	return json.Marshal(out)
}

// FoodSchema is the nutrition catalog file: food identifier -> record.
type FoodSchema map[string]FoodRecord

// RecipeRecord is one recipe of the recipe catalog file.
type RecipeRecord struct {
	Name        string               `json:"receta,omitempty"`
	Ingredients map[string][]Numeric `json:"ingredientes"`
}

// RecipeSchema is the recipe catalog file: slot name -> ordered recipe list.
type RecipeSchema map[string][]RecipeRecord

// LoadFoodSchema reads and parses a nutrition catalog JSON file.
func LoadFoodSchema(path string) (FoodSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFoodSchema(data)
}

// ParseFoodSchema parses nutrition catalog JSON.
func ParseFoodSchema(data []byte) (FoodSchema, error) {
	var schema FoodSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing nutrition catalog: %w", err)
	}
	return schema, nil
}

// LoadRecipeSchema reads and parses a recipe catalog JSON file.
func LoadRecipeSchema(path string) (RecipeSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRecipeSchema(data)
}

// ParseRecipeSchema parses recipe catalog JSON.
func ParseRecipeSchema(data []byte) (RecipeSchema, error) {
	var schema RecipeSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing recipe catalog: %w", err)
	}
	return schema, nil
}

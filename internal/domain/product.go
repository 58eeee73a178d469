package domain

import "time"

// Unit kinds. A product is priced either by weight (per kilogram) or per
// piece, never both.
const (
	UnitKindWeight = "weight"
	UnitKindPiece  = "piece"
)

// Product categories.
const (
	CategoryRice       = "rice"
	CategoryFlour      = "flour"
	CategoryPulses     = "pulses"
	CategoryOil        = "oil"
	CategoryEssentials = "essentials"
)

// Product represents a catalog item. The catalog is read-only from this
// service's point of view.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Stock       int       `json:"stock"`
	Featured    bool      `json:"featured"`
	UnitKind    string    `json:"unit_kind"`
	UnitPrice   int64     `json:"unit_price"` // paise per kg or per piece
	CreatedAt   time.Time `json:"created_at"`
}

// ValidCategories returns all valid product categories.
func ValidCategories() []string {
	return []string{
		CategoryRice,
		CategoryFlour,
		CategoryPulses,
		CategoryOil,
		CategoryEssentials,
	}
}

// IsValidCategory checks if a category string is valid.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories() {
		if c == category {
			return true
		}
	}
	return false
}

// IsValidUnitKind checks if a unit kind string is valid.
func IsValidUnitKind(kind string) bool {
	return kind == UnitKindWeight || kind == UnitKindPiece
}

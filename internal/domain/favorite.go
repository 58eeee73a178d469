package domain

import "time"

// Favorite marks a product as a favorite of a user. The (UserID, ProductID)
// pair is unique.
type Favorite struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteProduct is a favorite joined with its catalog product, as returned
// by the favorites listing.
type FavoriteProduct struct {
	Product Product   `json:"product"`
	AddedAt time.Time `json:"added_at"`
}

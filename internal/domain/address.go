package domain

import "time"

// Address kinds.
const (
	AddressKindHome  = "home"
	AddressKindWork  = "work"
	AddressKindOther = "other"
)

// Address represents a shipping address belonging to a user. For any user at
// most one address has IsDefault set; when the user has at least one address,
// exactly one is default.
type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Kind       string    `json:"kind"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	Region     string    `json:"region"`
	PostalCode string    `json:"postal_code"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsValidAddressKind checks if a kind string is valid.
func IsValidAddressKind(kind string) bool {
	return kind == AddressKindHome || kind == AddressKindWork || kind == AddressKindOther
}

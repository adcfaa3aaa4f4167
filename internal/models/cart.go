package models

import "github.com/google/uuid"

// CartItem is one line in a user's cart. Product fields are a snapshot
// taken when the item was added; later product edits do not touch them.
// One row exists per (user, product) pair; re-adding increments quantity.
type CartItem struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID    uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductPrice float64   `json:"product_price"`
	Image        string    `json:"image"`
	Quantity     int       `json:"quantity"`
}

// TableName keeps the historical singular table name.
func (CartItem) TableName() string {
	return "cart"
}

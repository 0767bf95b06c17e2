package model

import "time"

// WishlistItem pairs a user with a saved product. The pair is unique.
type WishlistItem struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID uint      `gorm:"column:product_id;not null;uniqueIndex:idx_wishlist_user_product"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

package dto

import "time"

type AddWishlistRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

type WishlistItemResponse struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"productId"`
	Product   ProductResponse `json:"product"`
	AddedAt   time.Time       `json:"addedAt"`
}

type WishlistStatus struct {
	ProductID  uint `json:"productId"`
	InWishlist bool `json:"inWishlist"`
}

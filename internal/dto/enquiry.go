package dto

import "time"

type CreateEnquiryRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Company   string `json:"company" binding:"omitempty,max=100"`
	Subject   string `json:"subject" binding:"omitempty,max=200"`
	Message   string `json:"message" binding:"required,max=5000"`
	ProductID *uint  `json:"productId"`
}

type UpdateEnquiryRequest struct {
	Status   string  `json:"status" binding:"omitempty,oneof=new in_progress responded closed"`
	Response *string `json:"response" binding:"omitempty,max=5000"`
}

type EnquiryResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Company     string     `json:"company"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	UserID      *uint      `json:"userId"`
	ProductID   *uint      `json:"productId"`
	ProductName string     `json:"productName,omitempty"`
	Status      string     `json:"status"`
	Response    string     `json:"response"`
	RespondedAt *time.Time `json:"respondedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type EnquiryFilter struct {
	Status string
	UserID *uint
}

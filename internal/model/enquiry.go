package model

import (
	"time"

	"gorm.io/gorm"
)

type EnquiryStatus string

const (
	EnquiryStatusNew        EnquiryStatus = "new"
	EnquiryStatusInProgress EnquiryStatus = "in_progress"
	EnquiryStatusResponded  EnquiryStatus = "responded"
	EnquiryStatusClosed     EnquiryStatus = "closed"
)

func (s EnquiryStatus) Valid() bool {
	switch s {
	case EnquiryStatusNew, EnquiryStatusInProgress, EnquiryStatusResponded, EnquiryStatusClosed:
		return true
	}
	return false
}

// Enquiry is a lead captured from the contact form. UserID is set when the
// sender was signed in.
type Enquiry struct {
	gorm.Model
	Name        string        `gorm:"column:name;size:100;not null"`
	Email       string        `gorm:"column:email;size:255;not null"`
	Phone       string        `gorm:"column:phone;size:20"`
	Company     string        `gorm:"column:company;size:100"`
	Subject     string        `gorm:"column:subject;size:200"`
	Message     string        `gorm:"column:message;type:text;not null"`
	UserID      *uint         `gorm:"column:user_id;index:idx_enquiries_user_id"`
	ProductID   *uint         `gorm:"column:product_id"`
	Product     *Product      `gorm:"foreignKey:ProductID"`
	Status      EnquiryStatus `gorm:"column:status;size:20;not null;default:new;index:idx_enquiries_status"`
	Response    string        `gorm:"column:response;type:text"`
	RespondedAt *time.Time    `gorm:"column:responded_at"`
}

// OwnedBy reports whether userID created the enquiry while signed in.
func (e *Enquiry) OwnedBy(userID uint) bool {
	return e.UserID != nil && *e.UserID == userID
}

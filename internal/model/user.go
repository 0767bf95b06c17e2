package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Satisfies reports whether an identity holding r may pass a gate that
// requires the given role. Roles are flat: admin does not imply user.
func (r Role) Satisfies(required Role) bool {
	return r == required
}

type User struct {
	gorm.Model
	Username  string `gorm:"column:username;size:50;uniqueIndex:idx_users_username;not null"`
	Email     string `gorm:"column:email;size:255;uniqueIndex:idx_users_email;not null"`
	Password  string `gorm:"column:password;not null"`
	Role      Role   `gorm:"column:role;size:20;not null;default:user"`
	FirstName string `gorm:"column:first_name;size:50;not null;default:''"`
	LastName  string `gorm:"column:last_name;size:50;not null;default:''"`
	Company   string `gorm:"column:company;size:100;not null;default:''"`
	Phone     string `gorm:"column:phone;size:20;not null;default:''"`
	Address   string `gorm:"column:address;size:255;not null;default:''"`

	// Reset fields are written and cleared together, never one alone.
	PasswordResetToken   *string    `gorm:"column:password_reset_token;size:64;index:idx_users_reset_token"`
	PasswordResetExpires *time.Time `gorm:"column:password_reset_expires"`
}

// ResetPending reports whether a reset token is currently stored.
func (u *User) ResetPending() bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil
}

// DisplayName is the name used to greet the user in emails.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

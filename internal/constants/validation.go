package constants

import "time"

// Field Length Limits
const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxNameLength     = 50
	MaxPhoneLength    = 20
	MaxEmailLength    = 255
	MaxTitleLength    = 200
	MaxMessageLength  = 5000
)

// Password reset
const (
	ResetTokenBytes = 32 // 256 bits, rendered as 64 hex characters
	ResetTokenTTL   = time.Hour
)

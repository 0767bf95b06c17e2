package constants

// Application Information
const (
	AppName    = "Bizsite API"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Redis key prefixes
const (
	KeyPrefix          = "bizsite:"
	KeyRateLimit       = KeyPrefix + "ratelimit:"
	KeyRateLimitAuth   = KeyRateLimit + "auth:"
	KeyRateLimitGlobal = KeyRateLimit + "global:"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)

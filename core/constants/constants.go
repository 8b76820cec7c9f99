package constants

import "time"

// Context keys
const (
	ContextTokenData = "token_data"
	ContextRawToken  = "raw_token"
)

// Roles
const (
	RoleAdmin     = "ADMIN"
	RoleCore      = "CORE"
	RoleVolunteer = "VOLUNTEER"
)

// Database pool settings
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist = "blacklist:token:"
)

// Auth
const (
	TokenTTL      = 7 * 24 * time.Hour
	BcryptCost    = 12
	CookieToken   = "token"
	OAuthStateLen = 24
)

// Certificate template upload limits
const (
	TemplateMaxSizeBytes = 5 * 1024 * 1024
	TemplateContentType  = "application/pdf"
)

// Asynq task types
const (
	TaskGenerateCertificates = "certificate:generate"
)

package domain

import (
	"time"
)

// RateLimitPolicy - лимит запросов на ключ в окне
type RateLimitPolicy struct {
	Scope  string
	Limit  int
	Window time.Duration
}

const (
	RateLimitScopeAuth    = "auth"
	RateLimitScopeMessage = "message"
)

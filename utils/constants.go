package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for operator access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RequestTimeout bounds every API request context
	RequestTimeout = 30 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Queue defaults
const (
	// DefaultTimezone is used when neither an explicit zone nor a known region is given
	DefaultTimezone = "America/New_York"

	// DefaultWindowStart and DefaultWindowEnd bound the call window for titles matching no rule
	DefaultWindowStart = 9
	DefaultWindowEnd   = 16

	// OrderKeyStep is the spacing used when manual order keys are renumbered
	OrderKeyStep = 1024.0

	// MinOrderKeyGap is the smallest gap between neighbours that still admits a midpoint
	MinOrderKeyGap = 1e-6
)

// contextKey namespaces request-scoped values
type contextKey string

const (
	RequestIDKey  contextKey = "request_id"
	UserAgentKey  contextKey = "user_agent"
	IPAddressKey  contextKey = "ip_address"
	EndpointKey   contextKey = "endpoint"
	TimeoutKey    contextKey = "timeout"
	CancelFuncKey contextKey = "cancel_func"
	ScopeKey      contextKey = "operator_scope"
)

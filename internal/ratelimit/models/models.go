package models

import "time"

// EndpointClass groups endpoints that share a request budget.
type EndpointClass string

const (
	// ClassRead: form-data and status lookups.
	ClassRead EndpointClass = "read"
	// ClassWrite: submissions and auto-saves.
	ClassWrite EndpointClass = "write"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	return c == ClassRead || c == ClassWrite
}

// Limit is a budget of Requests per sliding Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Limits maps each class to its budget. A class without an entry is not limited.
type Limits map[EndpointClass]Limit

// DefaultLimits allow a person filling the form in a browser plenty of
// auto-saves while stopping scripted submission floods.
func DefaultLimits() Limits {
	return Limits{
		ClassRead:  {Requests: 300, Window: time.Minute},
		ClassWrite: {Requests: 60, Window: time.Minute},
	}
}

// RateLimitResult is the outcome of one bucket check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds; only set when not allowed
}

// RateLimitExceededResponse is the API response when rate limit is exceeded.
type RateLimitExceededResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"` // seconds
}

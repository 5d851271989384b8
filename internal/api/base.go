package api

import "time"

// DefaultBaseURL is the single source of truth for the console's API target.
const DefaultBaseURL = "http://localhost:5080/api"

// NewDefaultClient builds a client pointed at the default backend URL.
func NewDefaultClient(timeout ...time.Duration) *Client {
	return NewClient(DefaultBaseURL, timeout...)
}

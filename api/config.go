// Package api provides an HTTP API server for querying the meeting graph,
// asking questions, and analyzing decision changes.
package api

import (
	"github.com/papercomputeco/minutes/pkg/eventstream"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8082")
	ListenAddr string

	// Publisher receives ripple events after each analysis. Optional;
	// when nil, no events are emitted.
	Publisher eventstream.Publisher
}

// ErrorResponse is the uniform error body returned by all handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

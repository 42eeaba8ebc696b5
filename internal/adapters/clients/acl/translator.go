// Package acl is the anti-corruption layer between the portfolio domain and
// the third-party form relay. Relay wire types never leave this package.
package acl

import (
	"encoding/json"
	"fmt"
	"io"
)

// maxResponseBytes caps how much of a relay response is decoded.
const maxResponseBytes = 64 << 10

// relayRequest is the relay's submission body.
type relayRequest struct {
	AccessKey    string `json:"access_key"`
	Subject      string `json:"subject"`
	FromName     string `json:"from_name"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Message      string `json:"message"`
	Service      string `json:"service,omitempty"`
	SubmissionID string `json:"submission_id,omitempty"`
}

// relayResponse is the relay's reply. Only Success is required; Message is
// informational.
type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DecodeResponse decodes a JSON body into T, reading at most
// maxResponseBytes, and closes body.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, fmt.Errorf("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var out T
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}

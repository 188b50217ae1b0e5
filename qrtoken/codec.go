// Package qrtoken encodes and decodes the payload embedded in food token
// QR codes. The wire format is a small self-describing JSON object so
// additive fields never break older scanners.
package qrtoken

import (
	"encoding/json"
	"errors"
)

var (
	// ErrMalformed means the raw text is not parseable as a payload.
	// Camera noise routinely produces this; it is never fatal.
	ErrMalformed = errors.New("qr payload is not valid JSON")
	// ErrMissingFields means teamId or tokenId is absent.
	ErrMissingFields = errors.New("qr payload missing teamId or tokenId")
)

type Payload struct {
	TeamID     string `json:"teamId"`
	TokenID    string `json:"tokenId"`
	RegID      string `json:"regId,omitempty"`
	TokenCount int    `json:"tokenCount,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// Encode serializes a payload. TeamID and TokenID are mandatory.
func Encode(p Payload) (string, error) {
	if p.TeamID == "" || p.TokenID == "" {
		return "", ErrMissingFields
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses scanned text into a payload. It returns typed errors and
// never panics, whatever the camera produced.
func Decode(raw string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, ErrMalformed
	}
	if p.TeamID == "" || p.TokenID == "" {
		return nil, ErrMissingFields
	}
	return &p, nil
}

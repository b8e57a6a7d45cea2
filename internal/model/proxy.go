// Package model defines shared types for the proxy.
package model

import (
	"context"
	"encoding/json"
	"net/http"
)

// ProxyRequest represents one inbound call to be forwarded to a registered service.
type ProxyRequest struct {
	Ctx      context.Context
	Method   string
	Segments []string // path after the proxy prefix; Segments[0] is the service key
	RawQuery string   // without the leading '?'
	Header   http.Header
	Body     []byte
}

// ProxyResponse is the normalized upstream response returned to the client.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Payload    Payload
}

// PayloadKind tags which variant of Payload is populated.
type PayloadKind int

const (
	// PayloadText holds an upstream body that did not parse as JSON.
	PayloadText PayloadKind = iota
	// PayloadJSON holds a valid JSON document.
	PayloadJSON
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadJSON:
		return "json"
	default:
		return "text"
	}
}

// Payload is either a JSON value or raw text.
type Payload struct {
	Kind PayloadKind
	JSON json.RawMessage
	Text string
}

// ParsePayload classifies an upstream body. Valid JSON becomes a JSON payload;
// anything else, including an empty body, is kept verbatim as text.
func ParsePayload(body []byte) Payload {
	if len(body) > 0 && json.Valid(body) {
		return Payload{Kind: PayloadJSON, JSON: json.RawMessage(body)}
	}
	return Payload{Kind: PayloadText, Text: string(body)}
}

// Bytes returns the payload as it is written to the client.
func (p Payload) Bytes() []byte {
	if p.Kind == PayloadJSON {
		return p.JSON
	}
	return []byte(p.Text)
}

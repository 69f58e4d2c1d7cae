// Package transport implements the streaming exchange with the LLM
// backend. A single Exchanger contract is served by two implementations:
// a persistent websocket (primary) and a chunked HTTP stream (fallback).
// Callers receive the fully accumulated response text either way and
// cannot tell which path served them.
package transport

import "context"

// Message is a single turn in the conversation sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the exchange request body understood by the LLM backend.
type Request struct {
	RepoURL  string    `json:"repo_url"`
	Type     string    `json:"type"`
	Messages []Message `json:"messages"`
	Provider string    `json:"provider"`
	Model    string    `json:"model,omitempty"`
	Language string    `json:"language,omitempty"`
	Token    string    `json:"token,omitempty"`
}

// Exchanger opens a request/response exchange with the LLM backend and
// returns the accumulated response text. The exchange terminates in
// either a clean close (success) or an error; any open handle is closed
// before Exchange returns, including on context cancellation.
type Exchanger interface {
	Exchange(ctx context.Context, req Request) (string, error)
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

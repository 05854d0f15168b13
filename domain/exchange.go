package domain

import "context"

// ChatRequest is the body POSTed to the reply endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// ChatResponse is the success body of the reply endpoint.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ErrorResponse is the failure body of the reply endpoint. Details is
// diagnostic only.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Exchanger turns a conversation history into exactly one assistant reply.
// Implementations never fail from the caller's point of view.
type Exchanger interface {
	Send(ctx context.Context, history []Message) string
}

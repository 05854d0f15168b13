package domain

import "context"

// Replier abstracts whatever derives the assistant's reply on the server side
// (an LLM, a canned responder).
type Replier interface {
	// Reply receives the full history, newest user turn last.
	Reply(ctx context.Context, history []Message) (string, error)
}

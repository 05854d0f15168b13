package llm

import (
	"context"
	"fmt"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
)

// EchoReplier repeats the newest user turn back. It needs no credentials and
// is the default provider for local development.
type EchoReplier struct{}

func NewEchoReplier() EchoReplier { return EchoReplier{} }

func (EchoReplier) Reply(ctx context.Context, history []domain.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content := "(nothing)"
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.UserRole {
			content = history[i].Content
			break
		}
	}
	return fmt.Sprintf("You said: %s", content), nil
}

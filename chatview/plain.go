package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/satriahrh/cocoa-fruit/studychat/domain"
	"github.com/satriahrh/cocoa-fruit/studychat/usecase"
)

// runPlain reads one message per line until EOF, "exit" or ctx is done,
// printing each reply as it settles.
func runPlain(ctx context.Context, store *usecase.ConversationStore, in io.Reader, out io.Writer) error {
	for _, msg := range store.History() {
		printMessage(out, msg)
	}
	fmt.Fprintln(out, `Type a message and press enter ("exit" to quit).`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := scanner.Text()
		if strings.TrimSpace(text) == "exit" {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		if !store.Submit(ctx, text) {
			continue
		}
		history := store.History()
		printMessage(out, history[len(history)-1])
	}
}

func printMessage(out io.Writer, msg domain.Message) {
	label := "bot"
	if msg.Role == domain.UserRole {
		label = "you"
	}
	fmt.Fprintf(out, "%s: %s\n", label, msg.Content)
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmuk/convo/pkg/conversation"
	"github.com/jmuk/convo/pkg/parts"
)

const (
	wideRule   = 80
	narrowRule = 40
	historyLen = 100
)

func rule(r string, n int) string {
	return strings.Repeat(r, n)
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func (c *Chat) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Chat) printBanner() {
	a := c.assistant
	c.printf("\n%s\n", rule("=", wideRule))
	if a.Description != "" {
		c.printf("%s - %s\n", a.DisplayName(), a.Description)
	} else {
		c.printf("%s\n", a.DisplayName())
	}
	c.printf("%s\n", rule("=", wideRule))
	c.printf("\nReady for multi-turn conversations.\n")
	if len(a.Suggestions) > 0 {
		c.printf("\nExample questions:\n")
		for _, s := range a.Suggestions {
			c.printf("  - %s\n", s)
		}
	}
	c.printCommands()
	c.printf("\n%s\n", rule("-", wideRule))
}

func (c *Chat) printCommands() {
	c.printf(`
Commands:
  - exit, quit: exit the program
  - history: show the recent conversation
  - clear: clear the conversation
  - help: show help information
  - @path: attach a file to your question
`)
}

func (c *Chat) printRoundHeader() {
	c.printf("\nRound %d (History: %d messages)\n%s\n", c.mgr.Turns()+1, c.mgr.Len(), rule("-", narrowRule))
}

func (c *Chat) printHistory(msgs []parts.Message) {
	if len(msgs) == 0 {
		c.printf("\nNo conversation history yet.\n")
		return
	}
	c.printf("\nRecent Conversation History:\n%s\n", rule("=", 50))
	for _, msg := range msgs {
		text := truncate(msg.Content.Text(), historyLen)
		switch msg.Role {
		case parts.RoleUser:
			if files := msg.Content.Files(); len(files) > 0 {
				text = fmt.Sprintf("%s (%d attached)", text, len(files))
			}
			c.printf("User: %s\n", text)
		case parts.RoleAssistant:
			c.printf("Assistant: %s\n", text)
		}
	}
	c.printf("%s\n", rule("=", 50))
}

func (c *Chat) printHelp(help string) {
	c.printf("\n%s Help:\n", c.assistant.DisplayName())
	if help != "" {
		c.printf("\n%s\n", strings.TrimRight(help, "\n"))
	}
	c.printCommands()
}

func (c *Chat) printReply(msgs []parts.Message) {
	var texts []string
	for _, msg := range msgs {
		if t := msg.Content.Text(); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) > 0 {
		c.printf("\n%s\nAssistant Response:\n%s\n", rule("-", narrowRule), rule("-", narrowRule))
		c.printf("%s\n%s\n", strings.Join(texts, "\n\n"), rule("-", narrowRule))
	}
	c.printf("\nRound %d completed!\n", c.mgr.Turns())
	if n := c.mgr.Len(); n >= 4 {
		c.printf("Context: Remembering %d rounds of conversation\n", n/2)
	}
}

func (c *Chat) printFailure(err error) {
	if errors.Is(err, context.Canceled) {
		c.printf("\nCancelled. The question was discarded.\n")
		return
	}
	c.printf("\nExecution error: %v\n", err)
}

// render prints the outcome of an action and reports whether the loop
// should end.
func (c *Chat) render(act conversation.Action) bool {
	switch act.Kind {
	case conversation.ActionExit:
		c.printf("\nGoodbye! Thank you for using the %s!\n", c.assistant.DisplayName())
		return true
	case conversation.ActionShowHistory:
		c.printHistory(act.Messages)
	case conversation.ActionCleared:
		c.printf("\nConversation history cleared!\n")
	case conversation.ActionShowHelp:
		c.printHelp(act.Help)
	case conversation.ActionCommitted:
		c.printReply(act.Messages)
	case conversation.ActionRolledBack:
		c.printFailure(act.Err)
	}
	return false
}

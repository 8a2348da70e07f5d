package conversation

import (
	"strings"

	"github.com/jmuk/convo/pkg/parts"
)

type CommandKind int

const (
	CommandSubmit CommandKind = iota
	CommandExit
	CommandHistory
	CommandClear
	CommandHelp
)

func (k CommandKind) String() string {
	switch k {
	case CommandSubmit:
		return "submit"
	case CommandExit:
		return "exit"
	case CommandHistory:
		return "history"
	case CommandClear:
		return "clear"
	case CommandHelp:
		return "help"
	}
	return "unknown"
}

// Command is the interpretation of one line of user input.
type Command struct {
	Kind CommandKind
	// Text and Content are set for CommandSubmit only.
	Text    string
	Content parts.Content
}

// Words lists the control words recognized by Classify.
var Words = []string{"exit", "quit", "history", "clear", "help"}

// Classify interprets the raw input. Recognized control words win over
// submissions; comparison ignores case and surrounding spaces. Empty
// input returns ErrInvalidInput.
func Classify(raw string) (Command, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Command{}, ErrInvalidInput
	}
	switch strings.ToLower(text) {
	case "exit", "quit":
		return Command{Kind: CommandExit}, nil
	case "history":
		return Command{Kind: CommandHistory}, nil
	case "clear":
		return Command{Kind: CommandClear}, nil
	case "help":
		return Command{Kind: CommandHelp}, nil
	}
	return Command{
		Kind:    CommandSubmit,
		Text:    text,
		Content: parts.Text(text),
	}, nil
}

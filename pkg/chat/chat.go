// package chat runs the interactive loop of convo.
package chat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chzyer/readline"
	"github.com/jmuk/convo/pkg/config"
	"github.com/jmuk/convo/pkg/conversation"
)

// LineReader reads one line of user input. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

type Options struct {
	// Root is the directory @path attachments are resolved against.
	// Attachments are disabled when nil.
	Root   *os.Root
	Out    io.Writer
	Logger *slog.Logger
}

type Chat struct {
	mgr       *conversation.Manager
	assistant *config.Assistant
	rl        LineReader

	root   *os.Root
	out    io.Writer
	logger *slog.Logger
}

func New(mgr *conversation.Manager, assistant *config.Assistant, rl LineReader, opts Options) *Chat {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Chat{
		mgr:       mgr,
		assistant: assistant,
		rl:        rl,
		root:      opts.Root,
		out:       out,
		logger:    logger,
	}
}

// NewReadline creates the line editor with command and file completion.
func NewReadline(root *os.Root) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		AutoComplete:    newCombinedCompleter(root),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

func (c *Chat) Close() error {
	return c.rl.Close()
}

// handle runs one command. Submissions can be interrupted with Ctrl-C.
func (c *Chat) handle(ctx context.Context, cmd conversation.Command) conversation.Action {
	if cmd.Kind != conversation.CommandSubmit {
		return c.mgr.Handle(ctx, cmd)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return c.mgr.Handle(ctx, cmd)
}

// RunLoop reads questions until the user exits. EOF and Ctrl-C at the
// prompt count as exit.
func (c *Chat) RunLoop(ctx context.Context) error {
	c.printBanner()
	for {
		c.printRoundHeader()
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				c.render(conversation.Action{Kind: conversation.ActionExit})
				return nil
			}
			return err
		}
		cmd, err := conversation.Classify(line)
		if err != nil {
			c.printf("Question cannot be empty!\n")
			continue
		}
		c.logger.Info("Command", "kind", cmd.Kind, "round", c.mgr.Turns()+1)
		if cmd.Kind == conversation.CommandSubmit {
			content, skipped := c.attach(cmd.Text)
			for _, s := range skipped {
				c.printf("Not attaching %s\n", s)
			}
			cmd.Content = content
			c.printf("\nThinking... (based on the full conversation history)\n")
		}
		act := c.handle(ctx, cmd)
		if act.Err != nil {
			c.logger.Error("Round failed", "round", c.mgr.Turns(), "error", act.Err)
		}
		if c.render(act) {
			return nil
		}
	}
}

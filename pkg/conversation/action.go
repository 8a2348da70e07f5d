package conversation

import (
	"context"

	"github.com/jmuk/convo/pkg/parts"
)

type ActionKind int

const (
	ActionExit ActionKind = iota
	ActionShowHistory
	ActionCleared
	ActionShowHelp
	ActionCommitted
	ActionRolledBack
)

// Action is the outcome of handling one command.
type Action struct {
	Kind ActionKind
	// Messages holds the history view for ActionShowHistory and the
	// appended assistant messages for ActionCommitted.
	Messages []parts.Message
	Help     string
	// Err is a *ResponderError for ActionRolledBack.
	Err error
}

// Handle dispatches a classified command.
func (m *Manager) Handle(ctx context.Context, cmd Command) Action {
	switch cmd.Kind {
	case CommandExit:
		m.logger.Info("User requested exit")
		return Action{Kind: ActionExit}
	case CommandHistory:
		return Action{Kind: ActionShowHistory, Messages: m.History()}
	case CommandClear:
		m.Clear()
		return Action{Kind: ActionCleared}
	case CommandHelp:
		return Action{Kind: ActionShowHelp, Help: m.Help()}
	}
	content := cmd.Content
	if content.IsEmpty() {
		content = parts.Text(cmd.Text)
	}
	reply, err := m.SubmitContent(ctx, content)
	if err != nil {
		return Action{Kind: ActionRolledBack, Err: err}
	}
	return Action{Kind: ActionCommitted, Messages: reply}
}

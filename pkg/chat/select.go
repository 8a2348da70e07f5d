package chat

import (
	"errors"
	"fmt"

	"github.com/jmuk/convo/pkg/config"
	"github.com/manifoldco/promptui"
)

type selector interface {
	Run() (int, string, error)
}

var newSelector = func(label string, items []string, cursorPos int) selector {
	return &promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: cursorPos,
	}
}

// ChooseAssistant returns the configured profile, asking the user when
// none is set. The choice is remembered in the config file at path so
// that the next prompt starts from it.
func ChooseAssistant(c *config.Config, path string) (*config.Assistant, error) {
	if c.Assistant != "" {
		return c.FindAssistant(c.Assistant)
	}
	switch len(c.Assistants) {
	case 0:
		return nil, errors.New("no assistants configured")
	case 1:
		return &c.Assistants[0], nil
	}
	items := make([]string, 0, len(c.Assistants))
	cursorPos := 0
	for i, a := range c.Assistants {
		item := a.DisplayName()
		if a.Description != "" {
			item = fmt.Sprintf("%s: %s", item, a.Description)
		}
		if a.Name == c.LastAssistant {
			cursorPos = i
		}
		items = append(items, item)
	}
	idx, _, err := newSelector("Select the assistant", items, cursorPos).Run()
	if err != nil {
		return nil, err
	}
	selected := &c.Assistants[idx]
	if path != "" && selected.Name != c.LastAssistant {
		err := config.EditConfig(path, func(cfg *config.Config) (*config.Config, error) {
			cfg.LastAssistant = selected.Name
			return cfg, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return selected, nil
}

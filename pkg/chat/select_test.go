package chat

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jmuk/convo/pkg/config"
)

type fakeSelector struct {
	idx int
}

func (s *fakeSelector) Run() (int, string, error) {
	return s.idx, "", nil
}

func TestChooseAssistant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c := config.Default()
	c.Assistant = ""
	c.LastAssistant = "web3"

	var gotItems []string
	var gotCursor int
	orig := newSelector
	newSelector = func(label string, items []string, cursorPos int) selector {
		gotItems = items
		gotCursor = cursorPos
		return &fakeSelector{idx: 0}
	}
	t.Cleanup(func() { newSelector = orig })

	a, err := ChooseAssistant(c, path)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "database" {
		t.Errorf("got %s, want database", a.Name)
	}
	wantItems := []string{
		"Database Assistant: Database Query and Management",
		"Web3 Expert Assistant: Web3 research with real-time search",
	}
	if diff := cmp.Diff(wantItems, gotItems); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if gotCursor != 1 {
		t.Errorf("cursor = %d, want 1", gotCursor)
	}
	stored, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if stored.LastAssistant != "database" {
		t.Errorf("last assistant = %q, want database", stored.LastAssistant)
	}
}

func TestChooseAssistantWithoutPrompt(t *testing.T) {
	orig := newSelector
	newSelector = func(label string, items []string, cursorPos int) selector {
		t.Fatal("should not prompt")
		return nil
	}
	t.Cleanup(func() { newSelector = orig })

	c := config.Default()
	a, err := ChooseAssistant(c, "")
	if err != nil || a.Name != "database" {
		t.Errorf("got %v, %v", a, err)
	}

	c.Assistant = ""
	c.Assistants = c.Assistants[1:]
	a, err = ChooseAssistant(c, "")
	if err != nil || a.Name != "web3" {
		t.Errorf("got %v, %v", a, err)
	}

	c.Assistants = nil
	if _, err := ChooseAssistant(c, ""); err == nil {
		t.Error("expected an error without assistants")
	}
}

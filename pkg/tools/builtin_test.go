package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jmuk/convo/pkg/config"
)

func TestCurrentTime(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC) }
	defs, err := builtinsWithClock([]string{"get_current_time"}, now)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewToolRunner(defs, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := r.Run(context.Background(), "get_current_time", map[string]any{"timezone": "UTC"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"time": "2024-03-15T12:30:00Z", "weekday": "Friday", "timezone": "UTC"}
	if diff := cmp.Diff(want, result.Structured); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if got := result.String(); got != `{"time":"2024-03-15T12:30:00Z","weekday":"Friday","timezone":"UTC"}` {
		t.Errorf("String() = %s", got)
	}

	_, err = r.Run(context.Background(), "get_current_time", map[string]any{"timezone": "Nowhere/Atlantis"})
	var te *ToolError
	if !errors.As(err, &te) {
		t.Errorf("got %v, want a tool error for an unknown zone", err)
	}
}

func TestBuiltins(t *testing.T) {
	defs, err := Builtins([]string{"get_current_time"})
	if err != nil || len(defs) != 1 || defs[0].Name() != "get_current_time" {
		t.Fatalf("got %v, %v", defs, err)
	}
	if _, ok := defs[0].RequestSchema().Properties.Get("timezone"); !ok {
		t.Error("timezone is missing from the schema")
	}
	if _, err := Builtins([]string{"read_file"}); err == nil {
		t.Error("expected an error for an unknown builtin")
	}
	for _, a := range config.Default().Assistants {
		if _, err := Builtins(a.BuiltinTools); err != nil {
			t.Errorf("default assistant %s: %v", a.Name, err)
		}
	}
}

func TestCollectBuiltinsFirst(t *testing.T) {
	ctx := context.Background()
	mt := newMCPTool("sqlite", &inMemoryFactory{server: newSQLiteLikeServer()}, nil)
	defer mt.Close()
	builtin, err := Builtins([]string{"get_current_time"})
	if err != nil {
		t.Fatal(err)
	}
	r, err := Collect(ctx, builtin, []Manager{mt}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defs := r.Defs()
	if len(defs) < 2 || defs[0].Name() != "get_current_time" {
		t.Errorf("unexpected tool order %v", defs)
	}
}

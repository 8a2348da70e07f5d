package tools

import (
	"context"
	"fmt"
	"time"
)

type currentTimeRequest struct {
	Timezone string `json:"timezone" jsonschema:"description=an IANA time zone name such as America/New_York. The local time zone when empty"`
}

type currentTimeResponse struct {
	Time     string `json:"time" jsonschema:"description=the current time in RFC 3339"`
	Weekday  string `json:"weekday"`
	Timezone string `json:"timezone"`
}

func currentTime(now func() time.Time) ToolDefinition {
	return NewTool(
		"get_current_time",
		"Get the current date and time. Use it to resolve relative dates such as this week.",
		func(ctx context.Context, req currentTimeRequest) (currentTimeResponse, error) {
			loc := time.Local
			if req.Timezone != "" {
				var err error
				loc, err = time.LoadLocation(req.Timezone)
				if err != nil {
					return currentTimeResponse{}, err
				}
			}
			t := now().In(loc)
			return currentTimeResponse{
				Time:     t.Format(time.RFC3339),
				Weekday:  t.Weekday().String(),
				Timezone: loc.String(),
			}, nil
		})
}

var builtins = map[string]func(now func() time.Time) ToolDefinition{
	"get_current_time": currentTime,
}

// Builtins returns the in-process tools of the given names.
func Builtins(names []string) ([]ToolDefinition, error) {
	return builtinsWithClock(names, time.Now)
}

func builtinsWithClock(names []string, now func() time.Time) ([]ToolDefinition, error) {
	defs := make([]ToolDefinition, 0, len(names))
	for _, name := range names {
		f, ok := builtins[name]
		if !ok {
			return nil, fmt.Errorf("unknown builtin tool %q", name)
		}
		defs = append(defs, f(now))
	}
	return defs, nil
}

package chat

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func completions(c *combinedCompleter, line string) ([]string, int) {
	runes := []rune(line)
	newLine, length := c.Do(runes, len(runes))
	var results []string
	for _, l := range newLine {
		results = append(results, string(l))
	}
	slices.Sort(results)
	return results, length
}

func TestCommandCompletion(t *testing.T) {
	c := newCombinedCompleter(nil)
	for _, tc := range []struct {
		line       string
		want       []string
		wantLength int
	}{
		{"hi", []string{"story"}, 2},
		{"  cl", []string{"ear"}, 2},
		{"E", []string{"xit"}, 1},
		{"", []string{"clear", "exit", "help", "history", "quit"}, 0},
		{"show tables", nil, 0},
		{"zz", nil, 2},
	} {
		t.Run(tc.line, func(t *testing.T) {
			got, length := completions(c, tc.line)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("completions mismatch (-want +got):\n%s", diff)
			}
			if length != tc.wantLength {
				t.Errorf("length = %d, want %d", length, tc.wantLength)
			}
		})
	}
}

func TestFileCompletion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.txt", "numbers.csv", "my data.csv", ".hidden", "sub/inner.md"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close()
	c := newCombinedCompleter(root)
	for _, tc := range []struct {
		line       string
		want       []string
		wantLength int
	}{
		{"explain @n", []string{"otes.txt", "umbers.csv"}, 2},
		{"explain @", []string{"my\\ data.csv", "notes.txt", "numbers.csv", "sub/"}, 1},
		{"explain @.h", []string{"idden"}, 3},
		{"@sub/", []string{"inner.md"}, 5},
		{"@my\\ d", []string{"ata.csv"}, 6},
		{"mail a@n", nil, 0},
		{"@missing/", nil, 9},
	} {
		t.Run(tc.line, func(t *testing.T) {
			got, length := completions(c, tc.line)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("completions mismatch (-want +got):\n%s", diff)
			}
			if length != tc.wantLength {
				t.Errorf("length = %d, want %d", length, tc.wantLength)
			}
		})
	}
}

func TestAttachmentRefs(t *testing.T) {
	got := attachmentRefs(`compare @a.csv with @my\ data.csv, mail me@example.com @`)
	want := []string{"a.csv", "my data.csv,"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("refs mismatch (-want +got):\n%s", diff)
	}
}

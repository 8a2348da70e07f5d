package parts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string][]byte{
		"notes.txt":   []byte("hello"),
		"image":       []byte("\x89PNG\r\n\x1a\n0000"),
		"empty.txt":   nil,
		"sub/deep.md": []byte("# title"),
	} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close()

	for _, tc := range []struct {
		name     string
		mimeType string
		data     string
	}{
		{"notes.txt", "text/plain", "hello"},
		{"image", "image/png", "\x89PNG\r\n\x1a\n0000"},
		{"empty.txt", "text/plain", ""},
		{"sub/../notes.txt", "text/plain", "hello"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ReadFile(root, tc.name)
			if err != nil {
				t.Fatal(err)
			}
			if p.File != filepath.Join(dir, filepath.Clean(tc.name)) {
				t.Errorf("File = %q", p.File)
			}
			if p.MimeType != tc.mimeType || string(p.Data) != tc.data || !p.HasData() {
				t.Errorf("got %q %q, want %q %q", p.MimeType, p.Data, tc.mimeType, tc.data)
			}
		})
	}

	for _, name := range []string{"missing.pdf", "sub", "../outside.txt"} {
		if _, err := ReadFile(root, name); err == nil {
			t.Errorf("ReadFile(%q) should fail", name)
		}
	}
}

func TestReadFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "big.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(MaxFileSize + 1); err != nil {
		t.Fatal(err)
	}
	f.Close()
	root, err := os.OpenRoot(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Close()
	if _, err := ReadFile(root, "big.bin"); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("got %v, want a size error", err)
	}
}

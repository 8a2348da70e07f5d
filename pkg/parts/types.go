// package parts defines the messages exchanged in a conversation.
package parts

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Part is one element of a multi-part content. Exactly one of Text or
// File is set.
type Part struct {
	Text     string `json:"text,omitempty"`
	// File is the path of a local file.
	File     string `json:"file,omitempty"`
	// MimeType and Data hold the file content as it was when attached.
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func TextPart(text string) Part {
	return Part{Text: text}
}

// FilePart refers to a file without its content.
func FilePart(path string) Part {
	return Part{File: path}
}

// FileDataPart is a file part carrying its content.
func FileDataPart(path, mimeType string, data []byte) Part {
	return Part{File: path, MimeType: mimeType, Data: data}
}

// IsFile reports whether the part refers to a file.
func (p Part) IsFile() bool {
	return p.File != ""
}

// HasData reports whether the file content was captured.
func (p Part) HasData() bool {
	return p.Data != nil
}

func (p Part) Equal(o Part) bool {
	return p.Text == o.Text && p.File == o.File && p.MimeType == o.MimeType && bytes.Equal(p.Data, o.Data)
}

func (p Part) String() string {
	if p.IsFile() {
		return "@" + p.File
	}
	return p.Text
}

type ContentKind int

const (
	ContentText ContentKind = iota
	ContentParts
)

// Content is either a plain text or an ordered list of parts.
type Content struct {
	kind  ContentKind
	text  string
	parts []Part
}

// Text creates a plain text content.
func Text(s string) Content {
	return Content{kind: ContentText, text: s}
}

// Parts creates a multi-part content.
func Parts(ps ...Part) Content {
	return Content{kind: ContentParts, parts: append([]Part(nil), ps...)}
}

func (c Content) Kind() ContentKind {
	return c.kind
}

// Parts returns the parts of the content. A plain text content is
// returned as a single text part.
func (c Content) Parts() []Part {
	if c.kind == ContentText {
		if c.text == "" {
			return nil
		}
		return []Part{TextPart(c.text)}
	}
	return append([]Part(nil), c.parts...)
}

// Text returns the plain text, or the first text part.
func (c Content) Text() string {
	if c.kind == ContentText {
		return c.text
	}
	for _, p := range c.parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// Files returns the file references in order.
func (c Content) Files() []string {
	var files []string
	for _, p := range c.parts {
		if p.IsFile() {
			files = append(files, p.File)
		}
	}
	return files
}

func (c Content) IsEmpty() bool {
	if c.kind == ContentText {
		return c.text == ""
	}
	return len(c.parts) == 0
}

// Equal reports whether two contents have the same kind and payload.
func (c Content) Equal(o Content) bool {
	if c.kind != o.kind || c.text != o.text || len(c.parts) != len(o.parts) {
		return false
	}
	for i := range c.parts {
		if !c.parts[i].Equal(o.parts[i]) {
			return false
		}
	}
	return true
}

func (c Content) String() string {
	if c.kind == ContentText {
		return c.text
	}
	return fmt.Sprintf("%v", c.parts)
}

// MarshalJSON encodes a plain text as a JSON string and parts as an array.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.kind == ContentText {
		return json.Marshal(c.text)
	}
	return json.Marshal(c.parts)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Text(s)
		return nil
	}
	var ps []Part
	if err := json.Unmarshal(data, &ps); err != nil {
		return fmt.Errorf("content must be a string or a list of parts: %w", err)
	}
	*c = Parts(ps...)
	return nil
}

type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

func UserText(text string) Message {
	return Message{Role: RoleUser, Content: Text(text)}
}

func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: Text(text)}
}

package chat

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jmuk/convo/pkg/conversation"
)

type completer interface {
	triggerChar(line []rune, pos int) int
	complete(prefix string) []string
}

// commandCompleter completes the command words, which are only
// recognized as the whole line.
type commandCompleter struct {
}

func (cc *commandCompleter) triggerChar(line []rune, pos int) int {
	i := 0
	for ; i < pos && unicode.IsSpace(line[i]); i++ {
	}
	result := i
	for ; i < pos; i++ {
		if !unicode.IsLetter(line[i]) {
			return -1
		}
	}
	return result
}

func (cc *commandCompleter) complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	results := make([]string, 0, len(conversation.Words))
	for _, cmd := range conversation.Words {
		if strings.HasPrefix(cmd, prefix) {
			results = append(results, cmd[len(prefix):])
		}
	}
	return results
}

type fileCompleter struct {
	root *os.Root
}

func (fc *fileCompleter) triggerChar(line []rune, pos int) int {
	i := pos - 1
	for ; i >= 0; i-- {
		r := line[i]
		if r == '@' {
			if i == 0 || unicode.IsSpace(line[i-1]) {
				return i
			}
			return -1
		} else if unicode.IsSpace(r) {
			if i == 0 || line[i-1] != '\\' {
				return -1
			}
		} else if !unicode.IsGraphic(r) {
			return -1
		}
	}
	return -1
}

func (fc *fileCompleter) complete(prefix string) []string {
	// the prefix should start with '@'
	dir, file := filepath.Split(unescape(prefix[1:]))
	if dir == "" {
		dir = "."
	}
	for len(dir) > 1 && strings.HasSuffix(dir, "/") {
		dir = dir[:len(dir)-1]
	}
	ents, err := fs.ReadDir(fc.root.FS(), dir)
	if err != nil {
		return nil
	}
	var results []string
	for _, ent := range ents {
		name := ent.Name()
		if !strings.HasPrefix(name, file) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(file, ".") {
			continue
		}
		suffix := escape(name[len(file):])
		if ent.IsDir() {
			suffix += "/"
		}
		results = append(results, suffix)
	}
	return results
}

type combinedCompleter struct {
	comps []completer
}

// Do implements readline.AutoCompleter.
func (c *combinedCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	for _, cc := range c.comps {
		start := cc.triggerChar(line, pos)
		if start < 0 || start > pos {
			continue
		}
		length = pos - start
		prefix := string(line[start:pos])
		for _, result := range cc.complete(prefix) {
			newLine = append(newLine, []rune(result))
		}
		return newLine, length
	}
	return nil, 0
}

func newCombinedCompleter(root *os.Root) *combinedCompleter {
	comps := []completer{&commandCompleter{}}
	if root != nil {
		comps = append(comps, &fileCompleter{root})
	}
	return &combinedCompleter{comps: comps}
}

package agent

import (
	"fmt"
	"path/filepath"

	"github.com/jmuk/convo/pkg/parts"
)

// MissingFileText is sent in place of a file part whose content was not
// captured when it was attached.
func MissingFileText(p parts.Part) string {
	return fmt.Sprintf("[Attachment %s is not available]", filepath.Base(p.File))
}

package parts

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// MaxFileSize is the largest file ReadFile accepts.
const MaxFileSize = 20 << 20

// ReadFile reads the file at name under root and returns a file part with
// its content. The part's File is the path joined to the root directory.
func ReadFile(root *os.Root, name string) (Part, error) {
	name = filepath.Clean(name)
	f, err := root.Open(name)
	if err != nil {
		return Part{}, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return Part{}, err
	}
	if !st.Mode().IsRegular() {
		return Part{}, fmt.Errorf("not a regular file")
	}
	if st.Size() > MaxFileSize {
		return Part{}, fmt.Errorf("too large (%d bytes, limit %d)", st.Size(), MaxFileSize)
	}
	// The file may grow after Stat.
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return Part{}, err
	}
	if len(data) > MaxFileSize {
		return Part{}, fmt.Errorf("too large (limit %d bytes)", MaxFileSize)
	}
	if data == nil {
		data = []byte{}
	}
	return FileDataPart(filepath.Join(root.Name(), name), detectMimeType(name, data), data), nil
}

func detectMimeType(name string, data []byte) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	// Drop parameters such as charset.
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}
	return mimeType
}

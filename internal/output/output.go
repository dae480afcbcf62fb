// Package output opens the destination of the JSON document.
package output

import (
	"io"
	"os"

	"github.com/spf13/afero"
)

// Open returns stdout when path is empty and otherwise opens path for a
// truncating write. Closing the stdout sink is a no-op.
func Open(fsys afero.Fs, path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}

	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Package loader reads program source text for the engine. The text is
// passed through untouched apart from line endings.
package loader

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// MaxSourceSize bounds how much text is read from one source.
const MaxSourceSize = 1 << 20

// Source is program text together with where it came from.
type Source struct {
	// Path is the file the text was read from, or Stdin.
	Path string
	// Text is the program text with LF line endings.
	Text string
}

// LoadSource reads the source at path. The path "-" reads standard input.
func LoadSource(path string) (*Source, error) {
	if path == Stdin {
		text, err := ReadSource(os.Stdin)
		if err != nil {
			return nil, err
		}
		return &Source{Path: Stdin, Text: text}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer func() { _ = file.Close() }()

	text, err := ReadSource(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Source{Path: path, Text: text}, nil
}

// ReadSource reads all of r and normalizes CRLF and lone CR line endings to
// LF.
func ReadSource(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSourceSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}

	if len(data) > MaxSourceSize {
		return "", fmt.Errorf("source exceeds %d bytes", MaxSourceSize)
	}

	return normalizeNewlines(string(data)), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

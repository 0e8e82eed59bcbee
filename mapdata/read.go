package mapdata

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8bom = []byte{0xEF, 0xBB, 0xBF}

// readText reads a whole game text file. Paradox files are either UTF-8
// (optionally with a BOM) or Windows-1252.
func readText(path string) (string, error) {
	b, err := os.ReadFile(filepath.FromSlash(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIO, err)
	}
	return decodeText(b)
}

func decodeText(b []byte) (string, error) {
	b = bytes.TrimPrefix(b, utf8bom)
	if utf8.Valid(b) {
		return string(b), nil
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: decode windows-1252: %v", ErrParse, err)
	}
	return string(s), nil
}

// readLines returns the lines of a text file with line endings removed.
func readLines(path string) ([]string, error) {
	s, err := readText(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

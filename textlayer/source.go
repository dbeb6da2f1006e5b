package textlayer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Source is a text layer file format.
type Source int

const (
	// Unknown indicates an unrecognized format.
	Unknown Source = iota
	// JSON indicates a token dump.
	JSON
	// HOCR indicates hOCR markup.
	HOCR
	// PDF indicates a PDF document with an embedded text layer.
	PDF
)

// String returns the string representation of the source.
func (s Source) String() string {
	switch s {
	case JSON:
		return "JSON"
	case HOCR:
		return "hOCR"
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// DetectSource determines the format from the file name extension.
func DetectSource(filename string) Source {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return JSON
	case ".hocr", ".html", ".htm", ".xhtml":
		return HOCR
	case ".pdf":
		return PDF
	default:
		return Unknown
	}
}

// DetectSourceFromMagic checks the leading bytes of the content.
func DetectSourceFromMagic(data []byte) Source {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}
	if data[0] == '[' || data[0] == '{' {
		return JSON
	}

	head := strings.ToLower(string(data[:min(512, len(data))]))
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") ||
		(strings.HasPrefix(head, "<?xml") && strings.Contains(head, "<html")) {
		return HOCR
	}
	return Unknown
}

// Read loads the text layer at path, sniffing the content first and
// falling back to the extension.
func Read(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text layer %s: %w", path, err)
	}
	defer f.Close()

	magic := make([]byte, 512)
	n, err := io.ReadFull(f, magic)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read text layer %s: %w", path, err)
	}
	src := DetectSourceFromMagic(magic[:n])
	if src == Unknown {
		src = DetectSource(path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch src {
	case PDF:
		return ReadPDF(path)
	case HOCR:
		return ReadHOCR(f)
	case JSON:
		return ReadJSON(f)
	}
	return nil, fmt.Errorf("text layer %s: unrecognized format", path)
}

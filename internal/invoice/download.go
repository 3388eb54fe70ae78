package invoice

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrStream marks a failure while sending an already rendered document.
var ErrStream = errors.New("invoice: stream interrupted")

// Filename is the attachment name for data's document.
func Filename(data Data) string {
	return "Invoice_" + sanitize(data.InvoiceNumber) + ".pdf"
}

// Download renders data and streams it as a PDF attachment. Nothing is
// written to w when rendering fails.
func (g *Generator) Download(w http.ResponseWriter, data Data) error {
	var buf bytes.Buffer
	if err := g.Write(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename(data)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %v", ErrStream, err)
	}
	return nil
}

// SaveFile renders data into dir and returns the written path.
func (g *Generator) SaveFile(dir string, data Data) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("invoice: create %s: %w", dir, err)
	}
	path := filepath.Join(dir, Filename(data))
	var buf bytes.Buffer
	if err := g.Write(&buf, data); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("invoice: save %s: %w", path, err)
	}
	return path, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}

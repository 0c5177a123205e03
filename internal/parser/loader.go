package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
)

// Loader reads every PDF in a directory into per-page Documents.
// Parse is called once per matching file and may be replaced in tests.
type Loader struct {
	Parse func(filePath string) ([]models.Document, error)
}

func NewLoader() *Loader {
	return &Loader{Parse: ParsePDF}
}

// LoadPDFDirectory loads dir with the default PDF parser
func LoadPDFDirectory(dir string) ([]models.Document, error) {
	return NewLoader().Load(dir)
}

// Load returns the pages of all *.pdf files in dir, in directory-listing order.
// The first file that fails to parse aborts the whole load.
func (l *Loader) Load(dir string) ([]models.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: directory %q does not exist", models.ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", models.ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	parse := l.Parse
	if parse == nil {
		parse = ParsePDF
	}

	var docs []models.Document
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), models.PDFExtension) {
			continue
		}
		pages, err := parse(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files++
		docs = append(docs, pages...)
	}

	log.Debug().Str("dir", dir).Int("files", files).Int("pages", len(docs)).Msg("Loaded PDF directory")
	return docs, nil
}

// ParsePDF extracts the plain text of every page of a PDF file
func ParsePDF(filePath string) (docs []models.Document, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %q: %w", models.ErrParse, filePath, err)
	}
	defer f.Close()

	// the pdf package panics on some corrupt inputs
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("%w: failed to read %q: %v", models.ErrParse, filePath, r)
		}
	}()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat %q: %w", models.ErrParse, filePath, err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %q: %w", models.ErrParse, filePath, err)
	}

	numPages := reader.NumPage()
	filename := filepath.Base(filePath)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to extract page %d of %q: %w", models.ErrParse, i, filePath, err)
		}
		docs = append(docs, models.Document{
			Content:        pageText,
			SourceFilename: filename,
			SourcePath:     filePath,
			PageNumber:     i,
			TotalPages:     numPages,
		})
	}
	return docs, nil
}

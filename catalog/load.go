package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxDocumentBytes bounds remote catalog downloads.
const maxDocumentBytes = 32 << 20

type documentFile struct {
	Subjects []subjectRecord `json:"subjects" yaml:"subjects"`
	Notes    []Note          `json:"notes" yaml:"notes"`
}

type subjectRecord struct {
	ID       string          `json:"id" yaml:"id"`
	Name     string          `json:"name" yaml:"name"`
	Short    string          `json:"short" yaml:"short"`
	Programs []programRecord `json:"programs" yaml:"programs"`
}

type programRecord struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Problem  string   `json:"problem" yaml:"problem"`
	Language string   `json:"language" yaml:"language"`
	Code     string   `json:"code" yaml:"code"`
	HTML     string   `json:"html" yaml:"html"`
	CSS      string   `json:"css" yaml:"css"`
	JS       string   `json:"js" yaml:"js"`
	Tags     []string `json:"tags" yaml:"tags"`
}

// Format is the encoding of a catalog document.
type Format string

// Supported catalog formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the decoder from the source's extension. Unknown extensions are read as JSON.
func FormatFor(source string) Format {
	ext := filepath.Ext(source)
	if isRemote(source) {
		ext = path.Ext(strings.SplitN(source, "?", 2)[0])
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads the catalog from a file path or an http(s) URL.
func Load(ctx context.Context, source string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(source) {
		data, err = fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", source, err)
	}

	return Parse(data, FormatFor(source))
}

// Parse decodes a catalog document and resolves every program source.
func Parse(data []byte, format Format) (*Catalog, error) {
	var doc documentFile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml catalog: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", format)
	}

	subjects := make([]Subject, 0, len(doc.Subjects))
	for _, rec := range doc.Subjects {
		subj := Subject{
			ID:       rec.ID,
			Name:     rec.Name,
			Short:    rec.Short,
			Programs: make([]Program, 0, len(rec.Programs)),
		}
		for _, p := range rec.Programs {
			subj.Programs = append(subj.Programs, Program{
				ID:       p.ID,
				Title:    p.Title,
				Problem:  p.Problem,
				Language: p.Language,
				Tags:     p.Tags,
				Source:   NewSource(p.Code, p.HTML, p.CSS, p.JS),
			})
		}
		subjects = append(subjects, subj)
	}

	return New(subjects, doc.Notes), nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
}

// Package dataset loads labeled text rows from files or HTTP endpoints for
// offline evaluation and registry tooling.
package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"textclassd/internal/common/fsutil"
)

// Row is one labeled training or evaluation example.
type Row struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Source yields labeled rows from some backing store.
type Source interface {
	Load(ctx context.Context) ([]Row, error)
}

// Config selects and parameterizes a source.
type Config struct {
	// Type is one of "csv", "json", "api".
	Type string `yaml:"type" json:"type" toml:"type"`
	// Path is the file path for csv and json sources.
	Path string `yaml:"path" json:"path" toml:"path"`
	// URL is the endpoint for the api source.
	URL string `yaml:"url" json:"url" toml:"url"`
	// TextColumn and LabelColumn name the CSV header columns. Defaults are
	// "text" and "label".
	TextColumn  string `yaml:"text_column" json:"text_column" toml:"text_column"`
	LabelColumn string `yaml:"label_column" json:"label_column" toml:"label_column"`
}

// New builds a Source from cfg. The api source uses client, or
// http.DefaultClient when nil.
func New(cfg Config, client *http.Client) (Source, error) {
	switch strings.ToLower(cfg.Type) {
	case "csv":
		return &CSVSource{Path: cfg.Path, TextColumn: cfg.TextColumn, LabelColumn: cfg.LabelColumn}, nil
	case "json":
		return &JSONSource{Path: cfg.Path}, nil
	case "api":
		if client == nil {
			client = http.DefaultClient
		}
		return &APISource{URL: cfg.URL, Client: client}, nil
	default:
		return nil, unsupportedSourceError{kind: cfg.Type}
	}
}

// Validate checks that every row carries a non-empty text and label.
func Validate(rows []Row) error {
	for i, r := range rows {
		if strings.TrimSpace(r.Text) == "" {
			return invalidRowError{index: i, field: "text"}
		}
		if strings.TrimSpace(r.Label) == "" {
			return invalidRowError{index: i, field: "label"}
		}
	}
	return nil
}

// CSVSource reads rows from a headered CSV file.
type CSVSource struct {
	Path        string
	TextColumn  string
	LabelColumn string
}

func (s *CSVSource) Load(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := fsutil.ExpandHome(s.Path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	textCol := s.TextColumn
	if textCol == "" {
		textCol = "text"
	}
	labelCol := s.LabelColumn
	if labelCol == "" {
		labelCol = "label"
	}
	textIdx, labelIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case textCol:
			textIdx = i
		case labelCol:
			labelIdx = i
		}
	}
	if textIdx < 0 || labelIdx < 0 {
		return nil, fmt.Errorf("csv header missing %q or %q column", textCol, labelCol)
	}

	var rows []Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, Row{Text: rec[textIdx], Label: rec[labelIdx]})
	}
	return rows, nil
}

// JSONSource reads rows from a JSON file holding an array of objects.
type JSONSource struct {
	Path string
}

func (s *JSONSource) Load(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := fsutil.ExpandHome(s.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return rows, nil
}

// APISource fetches rows from an HTTP endpoint returning a JSON array.
type APISource struct {
	URL     string
	Client  *http.Client
	Headers map[string]string
}

func (s *APISource) Load(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range s.Headers {
		req.Header.Set(k, v)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rows: unexpected status %d", resp.StatusCode)
	}
	var rows []Row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return rows, nil
}

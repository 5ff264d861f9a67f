package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/and161185/movie-admin/internal/api"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON, or as a table of header/rows in text mode.
func (a *app) emit(v any, header []string, rows [][]string) error {
	if a.output == "json" {
		return printJSON(a.out, v)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(a.out, "(none)")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		Rows(rows...)
	_, err := fmt.Fprintln(a.out, t.Render())
	return err
}

func (a *app) done(format string, args ...any) error {
	if a.output == "json" {
		return printJSON(a.out, map[string]string{"status": "ok", "message": fmt.Sprintf(format, args...)})
	}
	_, err := fmt.Fprintf(a.out, format+"\n", args...)
	return err
}

// openUpload reads an optional upload; "-" is stdin.
func (a *app) openUpload(p string) (*api.File, func(), error) {
	if p == "" {
		return nil, func() {}, nil
	}
	if p == "-" {
		return &api.File{Name: "stdin", Reader: a.in}, func() {}, nil
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, nil, err
	}
	return &api.File{Name: filepath.Base(p), Reader: f}, func() { _ = f.Close() }, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

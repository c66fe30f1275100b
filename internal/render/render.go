// Package render turns projected tables into documents: Markdown, an HTML
// page, styled terminal tables, and JSON/YAML exports.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/statdeck/internal/dataset"
)

// Page is everything a renderer needs.
type Page struct {
	Title  string
	Tables []dataset.Table
}

// Supported output formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatPretty   = "pretty"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{FormatMarkdown, FormatHTML, FormatPretty, FormatJSON, FormatYAML}
}

// Normalize maps aliases ("md", "yml") to a canonical format name.
func Normalize(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "md", FormatMarkdown:
		return FormatMarkdown, nil
	case "htm", FormatHTML:
		return FormatHTML, nil
	case "term", "terminal", FormatPretty:
		return FormatPretty, nil
	case FormatJSON:
		return FormatJSON, nil
	case "yml", FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use %s)", format, strings.Join(Formats(), "|"))
	}
}

// Render writes page to w in the given format.
func Render(w io.Writer, format string, page Page) error {
	f, err := Normalize(format)
	if err != nil {
		return err
	}
	switch f {
	case FormatHTML:
		return HTML(w, page)
	case FormatPretty:
		_, err = io.WriteString(w, Pretty(page))
		return err
	case FormatJSON:
		return JSON(w, page)
	case FormatYAML:
		return YAML(w, page)
	default:
		_, err = io.WriteString(w, Markdown(page))
		return err
	}
}

// FormatForPath guesses the output format from a file extension.
func FormatForPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return FormatHTML
	case strings.HasSuffix(lower, ".json"):
		return FormatJSON
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	default:
		return FormatMarkdown
	}
}

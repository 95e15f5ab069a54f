// package formatter exports link summaries to JSON or YAML and loads them back for opening
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/scdig/internal/models"
	"github.com/desertthunder/scdig/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format is an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatNone Format = "none"
)

// DefaultBaseName is the file name used when no output path is given.
const DefaultBaseName = "soundcloud_links"

// ParseFormat validates an export format name ("yml" is accepted for YAML).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "none":
		return FormatNone, nil
	default:
		return "", fmt.Errorf("%w: %q (use json, yaml or none)", shared.ErrUnsupportedFormat, name)
	}
}

// DefaultPath returns soundcloud_links.<ext> for f.
func DefaultPath(f Format) string {
	return DefaultBaseName + "." + string(f)
}

// ExportToJSON renders the summary as a JSON object of category lists in display order.
func ExportToJSON(s *models.Summary) ([]byte, error) {
	doc := s.Document()

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, c := range models.Categories() {
		var entries bytes.Buffer
		enc := json.NewEncoder(&entries)
		enc.SetEscapeHTML(false)
		enc.SetIndent("  ", "  ")
		if err := enc.Encode(doc[c.String()]); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", c, err)
		}
		fmt.Fprintf(&buf, "  %q: %s", c.String(), bytes.TrimRight(entries.Bytes(), "\n"))
		if i < len(models.Categories())-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// ExportToYAML renders the summary as a YAML mapping of category lists in display order.
func ExportToYAML(s *models.Summary) ([]byte, error) {
	doc := s.Document()

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range models.Categories() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.String()}
		value := &yaml.Node{}
		if err := value.Encode(doc[c.String()]); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", c, err)
		}
		root.Content = append(root.Content, key, value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes the summary to path in the given format and returns the path written.
//
// An empty path defaults to [DefaultPath]; parent directories are created.
// [FormatNone] writes nothing and returns "".
func Export(s *models.Summary, f Format, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatNone:
		return "", nil
	case FormatJSON:
		data, err = ExportToJSON(s)
	case FormatYAML:
		data, err = ExportToYAML(s)
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnsupportedFormat, f)
	}
	if err != nil {
		return "", err
	}

	if path == "" {
		path = DefaultPath(f)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Output formats accepted by Formatter.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format string
}

// NewFormatter creates a new formatter. An empty format means JSON.
func NewFormatter(writer io.Writer, format string) (*Formatter, error) {
	switch format {
	case "", FormatJSON:
		format = FormatJSON
	case FormatTable:
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatJSON, FormatTable)
	}
	return &Formatter{writer: writer, format: format}, nil
}

// Format returns the output format in use.
func (f *Formatter) Format() string { return f.format }

// FormatArtifacts writes a list of artifacts.
func (f *Formatter) FormatArtifacts(artifacts []ArtifactDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(artifacts)
	}
	rows := make([][]string, len(artifacts))
	for i, a := range artifacts {
		rows[i] = []string{a.Role, a.Key, a.FullName, details(a)}
	}
	return f.writeTable([]string{"ROLE", "KEY", "TYPE", "DETAILS"}, rows)
}

// FormatArtifact writes a single artifact.
func (f *Formatter) FormatArtifact(artifact ArtifactDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(artifact)
	}
	rows := [][]string{
		{"role", artifact.Role},
		{"key", artifact.Key},
		{"name", artifact.Name},
		{"type", artifact.FullName},
		{"resource", artifact.Resource},
	}
	if d := details(artifact); d != "" {
		rows = append(rows, []string{"details", d})
	}
	return f.writeTable([]string{"FIELD", "VALUE"}, rows)
}

// FormatDispatch writes a dispatched URI and its handler.
func (f *Formatter) FormatDispatch(d DispatchDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(d)
	}
	rows := [][]string{
		{d.URI, d.Handler.FullName, d.Action, details(d.Handler)},
	}
	return f.writeTable([]string{"URI", "HANDLER", "ACTION", "DETAILS"}, rows)
}

// FormatBuilds writes catalog build history.
func (f *Formatter) FormatBuilds(builds []BuildDTO) error {
	if f.format == FormatJSON {
		return f.FormatJSON(builds)
	}
	rows := make([][]string, len(builds))
	for i, b := range builds {
		rows[i] = []string{
			b.ID,
			b.BuiltAt.Local().Format(time.DateTime),
			countsSummary(b.Counts),
			b.DataSource,
			strconv.Itoa(len(b.DualRegistered)),
		}
	}
	return f.writeTable([]string{"BUILD", "BUILT AT", "ARTIFACTS", "DATASOURCE", "DUAL"}, rows)
}

// FormatJSON writes any value as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *Formatter) writeTable(headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == len(headers)-1:
				return dimStyle
			default:
				return cellStyle
			}
		})
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

func details(a ArtifactDTO) string {
	var parts []string
	if len(a.URIs) > 0 {
		parts = append(parts, "uris="+strings.Join(a.URIs, ","))
	}
	if a.DefaultAction != "" {
		parts = append(parts, "default="+a.DefaultAction)
	}
	if len(a.Steps) > 0 {
		parts = append(parts, "steps="+strings.Join(a.Steps, ">"))
	}
	if a.Transactional != nil {
		parts = append(parts, "transactional="+strconv.FormatBool(*a.Transactional))
	}
	if len(a.Properties) > 0 {
		names := make([]string, len(a.Properties))
		for i, p := range a.Properties {
			names[i] = p.Name
		}
		parts = append(parts, "properties="+strings.Join(names, ","))
	}
	if a.DataSource != nil {
		parts = append(parts, "driver="+a.DataSource.Driver)
	}
	return strings.Join(parts, " ")
}

// countsSummary renders counts in role order, e.g. "domain=2 handler=1".
func countsSummary(counts map[string]int) string {
	var parts []string
	for _, role := range []string{"domain", "handler", "flow", "datasource", "service"} {
		if n := counts[role]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", role, n))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// Package render turns reconciliation results and monthly audits into
// markdown, HTML, terminal output and CSV.
//
// Markdown is the primary form. HTML and Terminal convert the markdown, so
// every output shows the same table.
package render

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// Options controls how amounts are shown.
type Options struct {
	// Currency is an ISO 4217 code. Empty means USD.
	Currency string
	// Width wraps terminal output. Zero disables wrapping.
	Width int
}

func (o Options) currency() string {
	if o.Currency == "" {
		return "USD"
	}
	return strings.ToUpper(o.Currency)
}

// Format names an output format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatTerminal Format = "term"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatMarkdown, FormatHTML, FormatCSV, FormatTerminal:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "":
		return FormatTerminal, nil
	default:
		return "", fmt.Errorf("unknown format %q (want md, html, csv or term)", name)
	}
}

// renderTemplate executes mainFile with the given partials defined.
func renderTemplate(name, mainFile string, partials map[string]string, data any) (string, error) {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", mainFile, err)
	}
	tmpl, err := template.New(name).Parse(string(mainContent))
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", mainFile, err)
	}
	for alias, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return "", fmt.Errorf("read partial %q: %w", file, err)
		}
		if _, err := tmpl.New(alias).Parse(string(content)); err != nil {
			return "", fmt.Errorf("parse partial %q for %q: %w", file, alias, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return b.String(), nil
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

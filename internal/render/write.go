package render

import (
	"fmt"
	"io"

	"github.com/eshaffer321/anvil/internal/domain/audit"
	"github.com/eshaffer321/anvil/internal/domain/reconcile"
)

// WriteReconcile renders result in format f to w.
func WriteReconcile(w io.Writer, f Format, result *reconcile.Result, opts Options) error {
	if f == FormatCSV {
		return CSV(w, result)
	}
	md, err := Markdown(result, opts)
	if err != nil {
		return err
	}
	return writeMarkdown(w, f, md, opts)
}

// WriteMonthly renders report in format f to w.
func WriteMonthly(w io.Writer, f Format, report audit.Report, opts Options) error {
	if f == FormatCSV {
		return MonthlyCSV(w, report)
	}
	md, err := MonthlyMarkdown(report, opts)
	if err != nil {
		return err
	}
	return writeMarkdown(w, f, md, opts)
}

func writeMarkdown(w io.Writer, f Format, md string, opts Options) error {
	out := md
	var err error
	switch f {
	case FormatMarkdown:
	case FormatHTML:
		out, err = HTML(md)
	case FormatTerminal:
		out, err = Terminal(md, opts.Width)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

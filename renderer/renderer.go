// Package renderer formats ledger views: the HTML dashboard published after each run
// and the markdown run summary printed in the terminal.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/etnz/commission"
	"github.com/yuin/goldmark"
)

//go:embed templates/*
var templates embed.FS

// DefaultTitle is the dashboard title when none is set.
const DefaultTitle = "Commission ledger"

// HTMLOptions holds configuration for rendering the dashboard.
type HTMLOptions struct {
	Title     string    // page title, DefaultTitle if empty
	Generated time.Time // generation time displayed in the page
	Notes     string    // optional run notes, in markdown
}

// htmlPage is the data of the dashboard template.
type htmlPage struct {
	Title     string
	Generated string
	View      *commission.View
	Notes     template.HTML
}

// rowClass returns the css class of a row, "" if it is not highlighted.
func rowClass(r commission.ViewRow) string {
	var classes []string
	if r.Changed {
		classes = append(classes, "changed")
	}
	if r.Complete {
		classes = append(classes, "complete")
	}
	return strings.Join(classes, " ")
}

// HTML writes the self-contained dashboard of v to w.
//
// The page is not meant to be indexed: it carries a robots noindex meta. Its output
// only depends on v and opts, so that rendering twice gives the same bytes.
func HTML(w io.Writer, v *commission.View, opts HTMLOptions) error {
	content, err := fs.ReadFile(templates, "templates/dashboard.html")
	if err != nil {
		return fmt.Errorf("error reading dashboard template: %w", err)
	}
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{"rowClass": rowClass}).Parse(string(content))
	if err != nil {
		return fmt.Errorf("error parsing dashboard template: %w", err)
	}

	page := htmlPage{
		Title:     opts.Title,
		Generated: opts.Generated.Format("02/01/2006 15:04"),
		View:      v,
	}
	if page.Title == "" {
		page.Title = DefaultTitle
	}
	if opts.Notes != "" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(opts.Notes), &buf); err != nil {
			return fmt.Errorf("error converting run notes: %w", err)
		}
		page.Notes = template.HTML(buf.String())
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return fmt.Errorf("error executing dashboard template: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Summary renders the markdown summary of run s, that produced view v.
func Summary(v *commission.View, s *commission.Summary) string {
	data := struct {
		View *commission.View
		Run  *commission.Summary
	}{v, s}
	partials := map[string]string{
		"summary_ledger": "summary_ledger.md",
	}
	return renderTemplate("summary", "summary.md", partials, data)
}

// Ledger renders the markdown table of view v.
func Ledger(v *commission.View) string {
	return renderTemplate("ledger", "ledger.md", nil, struct{ View *commission.View }{v})
}

// Documents renders the markdown table of the reconciled documents history.
func Documents(entries []commission.DocumentEntry) string {
	return renderTemplate("documents", "documents.md", nil, entries)
}

// markdownCell escapes s to fit in a markdown table cell.
func markdownCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, path.Join("templates", mainFile))
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := texttemplate.New(templateName).Funcs(texttemplate.FuncMap{"join": strings.Join, "cell": markdownCell}).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, path.Join("templates", file))
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

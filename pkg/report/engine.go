package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// SummaryTemplate is the name of the built-in Markdown summary template.
const SummaryTemplate = "summary.md"

// Option configures an Engine before construction.
type Option func(*config)

type config struct {
	templates fs.FS
	extension string
	global    map[string]any
}

// WithTemplatesFS replaces the built-in templates. Templates missing from
// fsys are not looked up elsewhere.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithExtension overrides the template extension appended to names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.global == nil {
			cfg.global = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.global[strings.TrimSpace(key)] = value
		}
	}
}

// Engine renders reports from a pongo2 template set.
type Engine struct {
	mu          sync.RWMutex
	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
	html        *bluemonday.Policy
}

// New constructs an Engine over the built-in templates unless overridden.
func New(options ...Option) (*Engine, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("report: open built-in templates: %w", err)
	}
	cfg := &config{templates: sub, extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("managed-report", pongo2.NewFSLoader(cfg.templates)),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		html:        bluemonday.UGCPolicy(),
	}
	if len(cfg.global) > 0 {
		globals, err := toContext(cfg.global)
		if err != nil {
			return nil, fmt.Errorf("report: apply global data: %w", err)
		}
		if engine.templateSet.Globals == nil {
			engine.templateSet.Globals = make(pongo2.Context)
		}
		engine.templateSet.Globals.Update(globals)
	}
	return engine, nil
}

// Render executes the named template with data and writes the result to
// every writer in out.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("report: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.template(templatePath)
	if err != nil {
		return "", err
	}
	viewContext, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("report: convert data: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", fmt.Errorf("report: execute template %q: %w", templatePath, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// Markdown renders summary with the built-in summary template.
func (e *Engine) Markdown(summary Summary, out ...io.Writer) (string, error) {
	return e.Render(SummaryTemplate, map[string]any{"summary": summary}, out...)
}

// HTML renders summary as Markdown and converts it to sanitised HTML.
func (e *Engine) HTML(summary Summary, out ...io.Writer) (string, error) {
	md, err := e.Markdown(summary)
	if err != nil {
		return "", err
	}
	rendered := string(e.ToHTML([]byte(md)))
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// ToHTML converts Markdown with tables into HTML and strips anything the
// UGC policy does not allow.
func (e *Engine) ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return e.html.SanitizeBytes(markdown.ToHTML(md, p, renderer))
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}

// toContext flattens data through JSON so templates address fields by
// their JSON names.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

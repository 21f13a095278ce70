// Package lint checks a template tree before a run uses it, so that
// malformed or dangling templates surface as findings instead of
// per-entity FileCreationErrors halfway through a run.
package lint

import (
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/cpcf/weftgen/lang"
	"github.com/cpcf/weftgen/render"
)

const templateExt = ".tmpl"

type Kind string

const (
	KindUnreadable        Kind = "unreadable"
	KindSyntax            Kind = "syntax_error"
	KindBraceMismatch     Kind = "brace_mismatch"
	KindUndefinedTemplate Kind = "undefined_template"
	KindTrailingSpace     Kind = "trailing_whitespace"
	KindMissingNamespace  Kind = "missing_namespace"
	KindStrayFile         Kind = "stray_file"
)

// Finding is one problem in one file. Line and Column are 1-based and zero
// when unknown.
type Finding struct {
	Kind       Kind
	Message    string
	File       string
	Line       int
	Column     int
	Suggestion string
}

func (f Finding) String() string {
	loc := f.File
	if f.Line > 0 {
		loc += ":" + strconv.Itoa(f.Line)
		if f.Column > 0 {
			loc += ":" + strconv.Itoa(f.Column)
		}
	}
	s := fmt.Sprintf("%s: %s: %s", loc, f.Kind, f.Message)
	if f.Suggestion != "" {
		s += " (" + f.Suggestion + ")"
	}
	return s
}

type Result struct {
	File     string
	Errors   []Finding
	Warnings []Finding
}

func (r Result) OK() bool {
	return len(r.Errors) == 0
}

func (r Result) Summary() string {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		return "ok"
	}
	var parts []string
	if len(r.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", len(r.Errors)))
	}
	if len(r.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", len(r.Warnings)))
	}
	return strings.Join(parts, ", ")
}

type Checker struct {
	fsys   fs.FS
	funcs  template.FuncMap
	strict bool
	logger *slog.Logger
}

type Option func(*Checker)

// WithFuncs adds functions on top of the render defaults, matching what the
// registry is given.
func WithFuncs(funcs template.FuncMap) Option {
	return func(c *Checker) {
		maps.Copy(c.funcs, funcs)
	}
}

// WithStrict reports trailing whitespace as a warning.
func WithStrict(strict bool) Option {
	return func(c *Checker) {
		c.strict = strict
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

func NewChecker(fsys fs.FS, opts ...Option) *Checker {
	c := &Checker{
		fsys:   fsys,
		funcs:  render.DefaultFuncMap(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAll checks every template under each language namespace and reports
// namespaces that are missing and files the registry would never load.
// Results are ordered by file.
func (c *Checker) CheckAll() []Result {
	var results []Result

	namespaces := make(map[string]bool)
	for _, l := range lang.All() {
		ns := l.Namespace()
		namespaces[ns] = true

		entries, err := fs.ReadDir(c.fsys, ns)
		if err != nil {
			results = append(results, Result{File: ns, Warnings: []Finding{{
				Kind:       KindMissingNamespace,
				Message:    fmt.Sprintf("no templates for %s", l),
				File:       ns,
				Suggestion: fmt.Sprintf("create %s/<name>%s", ns, templateExt),
			}}})
			continue
		}

		for _, entry := range entries {
			file := path.Join(ns, entry.Name())
			if entry.IsDir() || path.Ext(entry.Name()) != templateExt {
				results = append(results, strayFile(file))
				continue
			}
			results = append(results, c.CheckTemplate(file))
		}
	}

	if top, err := fs.ReadDir(c.fsys, "."); err == nil {
		for _, entry := range top {
			if !namespaces[entry.Name()] {
				results = append(results, strayFile(entry.Name()))
			}
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

func strayFile(file string) Result {
	return Result{File: file, Warnings: []Finding{{
		Kind:    KindStrayFile,
		Message: "not reachable as <language>/<name>" + templateExt,
		File:    file,
	}}}
}

// CheckTemplate checks a single template file.
func (c *Checker) CheckTemplate(file string) Result {
	result := Result{File: file}

	content, err := fs.ReadFile(c.fsys, file)
	if err != nil {
		result.Errors = append(result.Errors, Finding{
			Kind:    KindUnreadable,
			Message: err.Error(),
			File:    file,
		})
		return result
	}
	text := string(content)

	tmpl, err := template.New(strings.TrimSuffix(path.Base(file), templateExt)).Funcs(c.funcs).Parse(text)
	if err != nil {
		msg := err.Error()
		line, col := lineColumn(msg)
		result.Errors = append(result.Errors, Finding{
			Kind:       KindSyntax,
			Message:    msg,
			File:       file,
			Line:       line,
			Column:     col,
			Suggestion: suggestFix(msg),
		})
	} else {
		c.checkReferences(file, text, tmpl, &result)
	}

	checkBraces(file, text, &result)
	if c.strict {
		checkTrailingSpace(file, text, &result)
	}

	c.logger.Debug("checked template", "path", file, "summary", result.Summary())
	return result
}

var templateRef = regexp.MustCompile(`{{-?\s*template\s+"([^"]+)"`)

// checkReferences flags {{ template "x" }} calls whose target is not defined
// in the same file. Each file is parsed on its own, so such a call fails at
// render time after the output file has been created.
func (c *Checker) checkReferences(file, text string, tmpl *template.Template, result *Result) {
	for _, idx := range templateRef.FindAllStringSubmatchIndex(text, -1) {
		name := text[idx[2]:idx[3]]
		if tmpl.Lookup(name) != nil {
			continue
		}
		line, col := position(text, idx[0])
		result.Errors = append(result.Errors, Finding{
			Kind:       KindUndefinedTemplate,
			Message:    fmt.Sprintf("template %q is not defined", name),
			File:       file,
			Line:       line,
			Column:     col,
			Suggestion: fmt.Sprintf(`add {{ define %q }} to this file`, name),
		})
	}
}

func checkBraces(file, text string, result *Result) {
	open := 0
	for lineNum, line := range strings.Split(text, "\n") {
		for i := 0; i+1 < len(line); i++ {
			switch {
			case line[i] == '{' && line[i+1] == '{':
				open++
				i++
			case line[i] == '}' && line[i+1] == '}':
				open--
				if open < 0 {
					result.Errors = append(result.Errors, Finding{
						Kind:       KindBraceMismatch,
						Message:    "unmatched closing braces }}",
						File:       file,
						Line:       lineNum + 1,
						Column:     i + 1,
						Suggestion: "check for a missing {{",
					})
					open = 0
				}
				i++
			}
		}
	}

	if open > 0 {
		result.Errors = append(result.Errors, Finding{
			Kind:       KindBraceMismatch,
			Message:    fmt.Sprintf("%d unclosed {{", open),
			File:       file,
			Suggestion: "add the missing }}",
		})
	}
}

func checkTrailingSpace(file, text string, result *Result) {
	for lineNum, line := range strings.Split(text, "\n") {
		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			result.Warnings = append(result.Warnings, Finding{
				Kind:    KindTrailingSpace,
				Message: "line has trailing whitespace",
				File:    file,
				Line:    lineNum + 1,
			})
		}
	}
}

func position(text string, offset int) (int, int) {
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndex(before, "\n")
	return line, col
}

var (
	lineColPattern = regexp.MustCompile(`:(\d+):(\d+):`)
	linePattern    = regexp.MustCompile(`:(\d+):`)
)

func lineColumn(msg string) (int, int) {
	if m := lineColPattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		return line, col
	}
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return line, 0
	}
	return 0, 0
}

func suggestFix(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "not defined"):
		return "check the function name or register it with WithFuncs"
	case strings.Contains(msg, "unclosed action"), strings.Contains(msg, "unterminated"):
		return "check for missing closing braces or quotes"
	case strings.Contains(msg, "unexpected"):
		return "check template syntax near the error location"
	default:
		return ""
	}
}

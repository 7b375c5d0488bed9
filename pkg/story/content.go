package story

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Content is a value that is either fixed when the story is authored or
// derived from the story state each time a node is resolved.
// The zero Content is "absent" and resolves to the zero value of T.
type Content[T any] struct {
	value  T
	derive func(StateView) (T, error)
	set    bool
}

// Static wraps a literal value.
func Static[T any](v T) Content[T] {
	return Content[T]{value: v, set: true}
}

// Derived wraps a function of the story state. A nil fn yields absent content.
func Derived[T any](fn func(StateView) (T, error)) Content[T] {
	if fn == nil {
		return Content[T]{}
	}
	return Content[T]{derive: fn, set: true}
}

// IsSet reports whether the content was authored at all.
func (c Content[T]) IsSet() bool { return c.set }

// IsDerived reports whether resolving the content depends on state.
func (c Content[T]) IsDerived() bool { return c.derive != nil }

// StaticValue returns the literal value when the content is Static.
func (c Content[T]) StaticValue() (T, bool) {
	if !c.set || c.derive != nil {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Resolve evaluates the content against the given state view.
// A panicking derive function is reported as an error rather than
// unwinding through the interpreter.
func (c Content[T]) Resolve(view StateView) (v T, err error) {
	if c.derive == nil {
		return c.value, nil
	}
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("derived content panicked: %v", r)
		}
	}()
	return c.derive(view)
}

// Text is shorthand for a static string.
func Text(s string) Content[string] {
	return Static(s)
}

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"title": func(s string) string {
		return cases.Title(language.English, cases.NoLower).String(s)
	},
	"first": func(s string) string {
		if fields := strings.Fields(s); len(fields) > 0 {
			return fields[0]
		}
		return ""
	},
}

// templateData is what story templates see as dot.
type templateData struct {
	Player Player
	Flags  map[string]string
	Goal   string
	view   StateView
}

// Flag returns a flag value or "" when unset, for use as {{.Flag "name"}}.
func (d templateData) Flag(name string) string {
	v, _ := d.view.GetFlag(name)
	return v
}

// Completed reports whether a marker is set, for use as {{if .Completed "met_yara"}}.
func (d templateData) Completed(marker string) bool {
	return d.view.IsCompleted(marker)
}

// Template compiles src as a text/template evaluated against the state.
// Strings without template actions compile to static content.
func Template(src string) (Content[string], error) {
	if !strings.Contains(src, "{{") {
		return Static(src), nil
	}
	tmpl, err := template.New("content").
		Funcs(templateFuncs).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		return Content[string]{}, fmt.Errorf("failed to parse template %q: %w", src, err)
	}
	return Derived(func(view StateView) (string, error) {
		var buf bytes.Buffer
		data := templateData{
			Player: view.GetPlayer(),
			Flags:  view.GetFlags(),
			Goal:   view.GetGoal(),
			view:   view,
		}
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("failed to execute template: %w", err)
		}
		return buf.String(), nil
	}), nil
}

// MustTemplate is Template for content authored in Go source.
func MustTemplate(src string) Content[string] {
	c, err := Template(src)
	if err != nil {
		panic(err)
	}
	return c
}

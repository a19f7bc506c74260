package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/reflectsonar/reflectsonar/pkg/finding"
)

// DefaultSummary is the console summary printed after a run.
const DefaultSummary = `{{ .Project.Name | default .Project.Key }} ({{ .Mode.Title }} mode)
{{- range .Sections }}
  {{ .Title | printf "%-24s" }} {{ .Total | toString | printf "%5s" }}{{ if .Unknown }}  ({{ .Unknown }} unknown){{ end }}
{{- end }}
  {{ "Security Hotspots" | printf "%-24s" }} {{ .Hotspots | toString | printf "%5s" }}
{{- if .Unclassified }}
  {{ plural .Unclassified "issue" }} without a category
{{- end }}
{{- if .QualityGate }}
  Quality gate: {{ .QualityGate }}
{{- end }}
`

var (
	stringType = reflect.TypeFor[string]()
	anyType    = reflect.TypeFor[any]()
)

// summaryFuncs extends sprig with report helpers. Sprig's string
// parameters also accept named string types such as finding.Category.
func summaryFuncs() template.FuncMap {
	fm := sprig.TxtFuncMap()
	for name, fn := range fm {
		fm[name] = acceptStringKinds(name, fn)
	}
	fm["plural"] = func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	}
	fm["count"] = func(s SectionSummary, sev string) int {
		for _, c := range s.Counts {
			if c.Severity == finding.ParseSeverity(sev) {
				return c.Count
			}
		}
		return 0
	}
	return fm
}

// acceptStringKinds returns fn with every string parameter widened to any.
// Arguments of string kind are converted back before the call; anything
// else panics, which text/template reports as an execution error.
func acceptStringKinds(name string, fn any) any {
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return fn
	}
	in := make([]reflect.Type, t.NumIn())
	widened := false
	for i := range in {
		in[i] = t.In(i)
		if in[i] == stringType {
			in[i] = anyType
			widened = true
		}
	}
	if !widened {
		return fn
	}
	out := make([]reflect.Type, t.NumOut())
	for i := range out {
		out[i] = t.Out(i)
	}
	wrapped := reflect.MakeFunc(reflect.FuncOf(in, out, t.IsVariadic()), func(args []reflect.Value) []reflect.Value {
		for i, a := range args {
			if t.In(i) != stringType {
				continue
			}
			if a.Kind() == reflect.Interface {
				a = a.Elem()
			}
			if !a.IsValid() || a.Kind() != reflect.String {
				panic(fmt.Errorf("%s: argument %d: expected string; got %s", name, i+1, typeName(a)))
			}
			args[i] = reflect.ValueOf(a.String())
		}
		if t.IsVariadic() {
			return v.CallSlice(args)
		}
		return v.Call(args)
	})
	return wrapped.Interface()
}

func typeName(v reflect.Value) string {
	if !v.IsValid() {
		return "nil"
	}
	return v.Type().String()
}

// ParseSummary compiles a summary template. An empty text selects
// DefaultSummary.
func ParseSummary(text string) (*template.Template, error) {
	if text == "" {
		text = DefaultSummary
	}
	t, err := template.New("summary").Funcs(summaryFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse summary template: %w", err)
	}
	return t, nil
}

// LoadSummary reads and compiles the template at path. An empty path
// selects DefaultSummary.
func LoadSummary(path string) (*template.Template, error) {
	if path == "" {
		return ParseSummary("")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return ParseSummary(string(content))
}

// RenderSummary executes t against d and writes the result to w.
func RenderSummary(w io.Writer, t *template.Template, d *Document) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

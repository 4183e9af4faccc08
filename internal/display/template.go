package display

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var (
	templateFuncs = sprig.TxtFuncMap()

	// Parsed message templates keyed by source text.
	parsed sync.Map
)

// Expand renders tmplStr against data. Strings without template markers
// are returned untouched.
func Expand(tmplStr string, data any) (string, error) {
	if !strings.Contains(tmplStr, "{{") {
		return tmplStr, nil
	}

	tmpl, err := lookupTemplate(tmplStr)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return sb.String(), nil
}

func lookupTemplate(src string) (*template.Template, error) {
	if t, ok := parsed.Load(src); ok {
		return t.(*template.Template), nil
	}

	t, err := template.New("message").Funcs(templateFuncs).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	actual, _ := parsed.LoadOrStore(src, t)
	return actual.(*template.Template), nil
}

package content

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v2"

	"github.com/ruangkarya/ruangkarya/internal/model"
)

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// parseFrontMatter splits a source file into its metadata and markdown body.
func parseFrontMatter(file string, source []byte) (fields, []byte, error) {
	raw := map[string]interface{}{}
	body, err := frontmatter.MustParse(bytes.NewReader(source), &raw, yamlFormat)
	if err != nil {
		return fields{}, nil, newValidationError(file, "frontmatter", err.Error())
	}
	return fields{file: file, raw: raw}, body, nil
}

// fields reads typed values out of decoded front-matter. Absent keys yield
// zero values; present keys of the wrong type yield a ValidationError.
type fields struct {
	file string
	raw  map[string]interface{}
}

func (f fields) typeError(name, want string, got interface{}) error {
	return newValidationError(f.file, name, fmt.Sprintf("expected %s, got %T", want, got))
}

func (f fields) str(name string) (string, error) {
	v, ok := f.raw[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", f.typeError(name, "string", v)
	}
	return s, nil
}

func (f fields) boolean(name string, def bool) (bool, error) {
	v, ok := f.raw[name]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, f.typeError(name, "boolean", v)
	}
	return b, nil
}

func (f fields) strings(name string) ([]string, error) {
	v, ok := f.raw[name]
	if !ok || v == nil {
		return []string{}, nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, f.typeError(name, "list of strings", v)
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, f.typeError(fmt.Sprintf("%s[%d]", name, i), "string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// date returns an ISO-8601 string. YAML decoders that resolve timestamps
// hand us a time.Time, which is normalized back to its textual form.
func (f fields) date(name string) (string, error) {
	v, ok := f.raw[name]
	if !ok || v == nil {
		return "", nil
	}
	switch d := v.(type) {
	case string:
		return strings.TrimSpace(d), nil
	case time.Time:
		d = d.UTC()
		if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 && d.Nanosecond() == 0 {
			return d.Format(model.DateLayout), nil
		}
		return d.Format(time.RFC3339), nil
	}
	return "", f.typeError(name, "ISO-8601 date", v)
}

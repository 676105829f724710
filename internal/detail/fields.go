package detail

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const companyPlaceholder = "{company}"

//go:embed fields.yaml
var defaultFieldsYAML []byte

// Field is one attribute of the detail page and the search query that
// gathers evidence for it.
type Field struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Query string `yaml:"query"`
}

// QueryFor fills the company name into the query template.
func (f Field) QueryFor(companyName string) string {
	return strings.ReplaceAll(f.Query, companyPlaceholder, companyName)
}

// DefaultFields returns the built-in field list.
func DefaultFields() []Field {
	fields, err := ParseFields(defaultFieldsYAML)
	if err != nil {
		panic(err)
	}
	return fields
}

// LoadFields reads a field list from a YAML file. An empty path yields the
// built-in list.
func LoadFields(path string) ([]Field, error) {
	if path == "" {
		return DefaultFields(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "detail: read fields %s", path)
	}
	return ParseFields(data)
}

// ParseFields decodes a {fields: [...]} document. Names must be unique and
// every query must reference {company}.
func ParseFields(data []byte) ([]Field, error) {
	var doc struct {
		Fields []Field `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "detail: parse fields")
	}
	if len(doc.Fields) == 0 {
		return nil, eris.New("detail: no fields defined")
	}

	seen := make(map[string]bool, len(doc.Fields))
	for i, f := range doc.Fields {
		if f.Name == "" {
			return nil, eris.Errorf("detail: field %d has no name", i)
		}
		if seen[f.Name] {
			return nil, eris.Errorf("detail: duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if !strings.Contains(f.Query, companyPlaceholder) {
			return nil, eris.Errorf("detail: query for %q must contain %s", f.Name, companyPlaceholder)
		}
		if f.Label == "" {
			doc.Fields[i].Label = f.Name
		}
	}
	return doc.Fields, nil
}

package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/envtest/energy-planner/internal/estimation"
	"sigs.k8s.io/yaml"
)

// MethodColumn is the table column that always receives the canonical method value.
const MethodColumn = "Method"

//go:embed catalog.yaml
var defaultCatalog []byte

// Method ties a client facing alias to the table it selects and the value stored in
// that table's Method column.
type Method struct {
	Alias       string `json:"alias,omitempty"`
	Label       string `json:"label"`
	Dataset     string `json:"dataset,omitempty"`
	MethodValue string `json:"methodValue,omitempty"`
}

// FieldMapping maps a request field name to a literal table column.
type FieldMapping struct {
	Field  string `json:"field"`
	Column string `json:"column"`
}

type document struct {
	Methods []Method       `json:"methods"`
	Fields  []FieldMapping `json:"fields"`
}

// Catalog is immutable after construction and safe for concurrent use.
type Catalog struct {
	methods []Method
	fields  []FieldMapping
	aliases map[string]string
	labels  map[string]Method
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	c, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return c, nil
}

func Parse(content []byte) (*Catalog, error) {
	var doc document
	if err := yaml.UnmarshalStrict(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		methods: doc.Methods,
		fields:  doc.Fields,
		aliases: make(map[string]string, len(doc.Methods)),
		labels:  make(map[string]Method, len(doc.Methods)),
	}
	for i, m := range doc.Methods {
		if m.Label == "" {
			return nil, fmt.Errorf("method #%d: label is required", i+1)
		}
		if _, found := c.labels[m.Label]; found {
			return nil, fmt.Errorf("method %q declared twice", m.Label)
		}
		c.labels[m.Label] = m
		if m.Alias == "" {
			continue
		}
		key := normalize(m.Alias)
		if other, found := c.aliases[key]; found {
			return nil, fmt.Errorf("alias %q of %q collides with %q", m.Alias, m.Label, other)
		}
		c.aliases[key] = m.Label
	}
	for i, f := range doc.Fields {
		if f.Field == "" || f.Column == "" {
			return nil, fmt.Errorf("field mapping #%d: field and column are required", i+1)
		}
	}
	return c, nil
}

// ResolveMethod maps a client method label to its catalog entry. Aliases are compared
// with whitespace removed and case folded; an unknown alias is used verbatim as the
// label. Both the dataset and the in-table method value must be known.
func (c *Catalog) ResolveMethod(raw string) (Method, error) {
	if raw == "" {
		return Method{}, NewErrInvalidMethod("")
	}
	label, found := c.aliases[normalize(raw)]
	if !found {
		label = raw
	}
	m, found := c.labels[label]
	if !found || m.Dataset == "" {
		return Method{}, NewErrInvalidMethod(raw)
	}
	if m.MethodValue == "" {
		return Method{}, NewErrInvalidMethodMapping(m.Label)
	}
	return m, nil
}

// Criteria builds the search criteria for body against a table header. Fields are
// taken in mapping order and kept only when their column is in the header and their
// value is specified. The Method column, when present, is forced to methodValue.
func (c *Catalog) Criteria(body map[string]any, header []string, methodValue string) estimation.Criteria {
	columns := make(map[string]struct{}, len(header))
	for _, h := range header {
		columns[h] = struct{}{}
	}

	criteria := estimation.Criteria{}
	for _, f := range c.fields {
		if _, found := columns[f.Column]; !found {
			continue
		}
		v, specified := Stringify(body[f.Field])
		if !specified {
			continue
		}
		criteria = append(criteria, estimation.Criterion{Column: f.Column, Value: v})
	}

	if _, found := columns[MethodColumn]; found {
		forced := false
		for i := range criteria {
			if criteria[i].Column == MethodColumn {
				criteria[i].Value = methodValue
				forced = true
			}
		}
		if !forced {
			criteria = append(criteria, estimation.Criterion{Column: MethodColumn, Value: methodValue})
		}
	}
	return criteria
}

func (c *Catalog) Methods() []Method {
	return append([]Method(nil), c.methods...)
}

func (c *Catalog) Fields() []FieldMapping {
	return append([]FieldMapping(nil), c.fields...)
}

// Datasets returns the dataset of every resolvable method keyed by label.
func (c *Catalog) Datasets() map[string]string {
	res := make(map[string]string, len(c.methods))
	for _, m := range c.methods {
		if m.Dataset != "" {
			res[m.Label] = m.Dataset
		}
	}
	return res
}

// Stringify renders a decoded JSON value as a criterion value. Null, "" and
// "undefined" count as not specified.
func Stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		if t == "" || t == "undefined" {
			return "", false
		}
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t), true
		}
		return string(b), true
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

package transform

import (
	"fmt"
	"sort"

	"github.com/kezlya/solr2es/models"
	"github.com/kezlya/solr2es/schema"
)

// SetFields builds a Solr atomic update that sets each field.
func SetFields(id string, fields map[string]interface{}) models.Document {
	u := models.Document{"id": id}
	for name, v := range fields {
		u[name] = map[string]interface{}{"set": v}
	}
	return u
}

// UnsetFields builds a Solr atomic update that removes each field.
func UnsetFields(id string, names []string) models.Document {
	u := models.Document{"id": id}
	for _, name := range names {
		u[name] = map[string]interface{}{"set": nil}
	}
	return u
}

// Unset returns a transform producing an UnsetFields update from a record's id.
func Unset(names []string) func(models.Document) (string, models.Document, error) {
	return func(d models.Document) (string, models.Document, error) {
		id, ok := d.StringField("id")
		if !ok {
			return "", nil, ErrNoID
		}
		return id, UnsetFields(id, names), nil
	}
}

// CSVProfile maps CSV columns onto Solr fields.
type CSVProfile struct {
	IDColumn string            `yaml:"id_column"`
	Fields   map[string]string `yaml:"fields"`
	// Coerce converts numeric and boolean text before sending it.
	Coerce bool `yaml:"coerce"`
}

// BuiltinProfiles are the CSV layouts shipped with the tool.
func BuiltinProfiles() map[string]CSVProfile {
	return map[string]CSVProfile{
		"sha1sum": {
			IDColumn: "id",
			Fields:   map[string]string{"sha1sum": "sha1sum_s_md"},
		},
		"smqtk": {
			IDColumn: "path",
			Fields: map[string]string{
				"smqtk_sha1":        "smqtk_sha1_s_md",
				"smqtk_hg_semiauto": "smqtk_hg_semiauto_d_md",
				"smqtk_hg_revolver": "smqtk_hg_revolver_d_md",
				"smqtk_hg_long_gun": "smqtk_hg_long_gun_d_md",
			},
			Coerce: true,
		},
	}
}

// Columns lists the CSV columns the profile reads, id column first.
func (p CSVProfile) Columns() []string {
	cols := make([]string, 0, len(p.Fields)+1)
	cols = append(cols, p.IDColumn)
	for col := range p.Fields {
		cols = append(cols, col)
	}
	sort.Strings(cols[1:])
	return cols
}

// CheckHeader fails when header lacks a column the profile needs.
func (p CSVProfile) CheckHeader(header []string) error {
	if p.IDColumn == "" {
		return fmt.Errorf("csv profile has no id column")
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[h] = true
	}
	for _, col := range p.Columns() {
		if !have[col] {
			return fmt.Errorf("csv header is missing column %q", col)
		}
	}
	return nil
}

// Transform turns one CSV row into an atomic set update.
func (p CSVProfile) Transform(row models.Document) (string, models.Document, error) {
	id, ok := row.StringField(p.IDColumn)
	if !ok {
		return "", nil, fmt.Errorf("%w: column %q is empty", ErrNoID, p.IDColumn)
	}
	var e schema.Evaluator
	fields := make(map[string]interface{}, len(p.Fields))
	for col, field := range p.Fields {
		v, ok := row[col]
		if !ok {
			return "", nil, fmt.Errorf("row %s has no column %q", id, col)
		}
		if p.Coerce && e.CanEval(v) {
			v = e.Eval(v)
		}
		fields[field] = v
	}
	return id, SetFields(id, fields), nil
}

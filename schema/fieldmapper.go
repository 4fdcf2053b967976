package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// ErrUnmappedType is returned in strict mode for values with no configured suffix.
var ErrUnmappedType = errors.New("type is not mapped")

// Kind names the value types a suffix can be configured for.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindLong   Kind = "long"
	KindBool   Kind = "bool"
	KindFloat  Kind = "float"
	KindDouble Kind = "double"
	KindDate   Kind = "date"
)

// MapperConfig is the rule set of a FieldMapper.
type MapperConfig struct {
	// Overrides map a field name to a fixed output name, whatever its value.
	Overrides map[string]string `yaml:"overrides" json:"overrides"`
	// MultiValSuffix is appended to the type suffix for list values.
	MultiValSuffix string `yaml:"multi_val_suffix" json:"multiValSuffix"`
	// TypeSuffix maps a value kind to its dynamic-field suffix.
	TypeSuffix map[Kind]string `yaml:"type_suffix" json:"typeSuffix"`
	// Strict fails on values whose kind has no suffix instead of skipping them.
	Strict bool `yaml:"strict" json:"strict"`
}

// DefaultMapperConfig follows the stock Solr dynamic field names.
func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		Overrides:      map[string]string{"id": "id"},
		MultiValSuffix: "s",
		TypeSuffix: map[Kind]string{
			KindString: "_t",
			KindInt:    "_i",
			KindLong:   "_l",
			KindBool:   "_b",
			KindFloat:  "_f",
			KindDouble: "_d",
			KindDate:   "_dt",
		},
		Strict: true,
	}
}

// FieldMapper maps document field names to dynamic-field names based on
// the type of their values.
type FieldMapper struct {
	cfg       MapperConfig
	evaluator Evaluator
}

// NewFieldMapper creates a mapper; empty parts of cfg fall back to defaults.
func NewFieldMapper(cfg MapperConfig) *FieldMapper {
	def := DefaultMapperConfig()
	if cfg.Overrides == nil {
		cfg.Overrides = def.Overrides
	}
	if cfg.MultiValSuffix == "" {
		cfg.MultiValSuffix = def.MultiValSuffix
	}
	if len(cfg.TypeSuffix) == 0 {
		cfg.TypeSuffix = def.TypeSuffix
	}
	return &FieldMapper{cfg: cfg}
}

// MapField returns the output name for a field holding value. An empty name
// with a nil error means the value cannot be mapped (nil or an empty list).
func (m *FieldMapper) MapField(name string, value interface{}) (string, error) {
	if out, ok := m.cfg.Overrides[name]; ok {
		return out, nil
	}
	if value == nil {
		return "", nil
	}

	kind, multi, ok := kindOf(value)
	if !ok {
		return "", nil
	}
	suffix, found := m.cfg.TypeSuffix[kind]
	if kind == "" || !found {
		slog.Warn("type is not mapped", slog.String("type", fmt.Sprintf("%T", value)), slog.String("field", name))
		if m.cfg.Strict {
			return "", fmt.Errorf("%w: %T (field %s)", ErrUnmappedType, value, name)
		}
		return "", nil
	}
	if multi {
		suffix += m.cfg.MultiValSuffix
	}
	if strings.HasSuffix(name, suffix) {
		return name, nil
	}
	return normalize(name) + suffix, nil
}

// MapFields maps every field of fields. With eval set, string values are
// coerced first, except for overridden fields which keep their value as is.
// Fields that cannot be mapped are dropped.
func (m *FieldMapper) MapFields(fields map[string]interface{}, eval bool) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		_, fixed := m.cfg.Overrides[k]
		if eval && !fixed && m.evaluator.CanEval(v) {
			v = m.evaluator.Eval(v)
		}
		name, err := m.MapField(k, v)
		if err != nil {
			return nil, err
		}
		if name == "" {
			slog.Debug("field skipped", slog.String("field", k))
			continue
		}
		out[name] = v
	}
	return out, nil
}

func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(name))
}

var timeType = reflect.TypeOf(time.Time{})

// kindOf reports the kind of v and whether it is a list. ok is false for
// empty lists, whose element kind cannot be known.
func kindOf(v interface{}) (kind Kind, multi bool, ok bool) {
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		if rv.Len() == 0 {
			return "", true, false
		}
		first := rv.Index(0)
		if first.Kind() == reflect.Interface {
			if first.IsNil() {
				return "", true, false
			}
			first = first.Elem()
		}
		return scalarKind(first.Interface()), true, true
	}
	return scalarKind(v), false, true
}

func scalarKind(v interface{}) Kind {
	switch n := v.(type) {
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return KindLong
		}
		return KindDouble
	case string:
		return KindString
	case bool:
		return KindBool
	case int, int8, int16, int32, uint8, uint16:
		return KindInt
	case int64, uint32, uint64, uint:
		return KindLong
	case float32:
		return KindFloat
	case float64:
		return KindDouble
	}
	if reflect.TypeOf(v) == timeType {
		return KindDate
	}
	return ""
}

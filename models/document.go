package models

import (
	"encoding/json"
	"fmt"
)

// Document is a single record as read from or written to a store.
type Document map[string]interface{}

type doc struct {
	id     string
	object Document
}

// StringField returns the value of key as text. Non-empty strings,
// json.Number and fmt.Stringer values qualify.
func (d Document) StringField(key string) (string, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	case json.Number:
		return s.String(), true
	case fmt.Stringer:
		str := s.String()
		return str, str != ""
	}
	return "", false
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
